package user

import (
	"context"
	"time"
)

// 用户角色
const (
	RoleBuyer  = "buyer"
	RoleDealer = "dealer"
)

// User 用户模型
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email     string    `gorm:"size:254;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt 哈希
	Role      string    `gorm:"size:10;not null;default:buyer" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsBuyer() bool  { return u.Role == RoleBuyer }
func (u *User) IsDealer() bool { return u.Role == RoleDealer }

// DealerProfile 经销商资料，与 dealer 角色用户一一对应
type DealerProfile struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	CompanyName string    `gorm:"size:255" json:"company_name"`
	PhoneNumber string    `gorm:"size:32" json:"phone_number"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository 用户仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
	ListByIDs(ctx context.Context, ids []int64) ([]*User, error)

	GetDealerProfile(ctx context.Context, userID int64) (*DealerProfile, error)
	SaveDealerProfile(ctx context.Context, p *DealerProfile) error
}
