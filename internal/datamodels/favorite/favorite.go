package favorite

import (
	"context"
	"time"
)

// FavoriteCar 用户收藏的汽车，(user_id, car_id) 唯一
type FavoriteCar struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:idx_fav_user_car;not null" json:"user_id"`
	CarID     int64     `gorm:"uniqueIndex:idx_fav_user_car;index;not null" json:"car_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository 收藏仓储接口
type Repository interface {
	// Add 已收藏时静默成功
	Add(ctx context.Context, userID, carID int64) error
	Remove(ctx context.Context, userID, carID int64) error
	ListByUser(ctx context.Context, userID int64) ([]*FavoriteCar, error)
}
