package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/carmarket/internal/datamodels/about"
)

type aboutRepo struct {
	db *gorm.DB
}

// NewAboutRepository 创建关于页仓储
func NewAboutRepository(db *gorm.DB) about.Repository {
	return &aboutRepo{db: db}
}

func (r *aboutRepo) Get(ctx context.Context) (*about.Page, error) {
	var p about.Page
	if err := r.db.WithContext(ctx).First(&p, about.SingletonID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Save 固定写入 id=1 的那一行，保证只有一个实例
func (r *aboutRepo) Save(ctx context.Context, p *about.Page) error {
	p.ID = about.SingletonID
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(p).Error
}
