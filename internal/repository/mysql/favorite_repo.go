package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/carmarket/internal/datamodels/favorite"
)

type favoriteRepo struct {
	db *gorm.DB
}

// NewFavoriteRepository 创建收藏仓储
func NewFavoriteRepository(db *gorm.DB) favorite.Repository {
	return &favoriteRepo{db: db}
}

func (r *favoriteRepo) Add(ctx context.Context, userID, carID int64) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "car_id"}},
		DoNothing: true,
	}).Create(&favorite.FavoriteCar{UserID: userID, CarID: carID}).Error
}

func (r *favoriteRepo) Remove(ctx context.Context, userID, carID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND car_id = ?", userID, carID).
		Delete(&favorite.FavoriteCar{}).Error
}

func (r *favoriteRepo) ListByUser(ctx context.Context, userID int64) ([]*favorite.FavoriteCar, error) {
	var list []*favorite.FavoriteCar
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
