package about

import (
	"context"
	"time"
)

// SingletonID AboutPage 只允许存在这一行
const SingletonID int64 = 1

// Page “关于我们”页面内容
type Page struct {
	ID                   int64     `gorm:"primaryKey;autoIncrement:false" json:"-"`
	HeroTitle            string    `gorm:"size:255" json:"hero_title"`
	HeroSubtitle         string    `gorm:"size:255" json:"hero_subtitle"`
	MissionTitle         string    `gorm:"size:255" json:"mission_title"`
	MissionTextPrimary   string    `gorm:"type:text" json:"mission_text_primary"`
	MissionTextSecondary string    `gorm:"type:text" json:"mission_text_secondary"`
	CTATitle             string    `gorm:"size:255" json:"cta_title"`
	CTAText              string    `gorm:"type:text" json:"cta_text"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (Page) TableName() string { return "about_pages" }

// Repository 关于页仓储接口
type Repository interface {
	Get(ctx context.Context) (*Page, error)
	Save(ctx context.Context, p *Page) error
}
