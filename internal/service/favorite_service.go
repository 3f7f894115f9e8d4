package service

import (
	"context"

	"github.com/example/carmarket/internal/datamodels/catalog"
	"github.com/example/carmarket/internal/datamodels/favorite"
)

// FavoriteService 买家收藏汽车
type FavoriteService struct {
	repo favorite.Repository
	cars catalog.Repository
}

func NewFavoriteService(repo favorite.Repository, cars catalog.Repository) *FavoriteService {
	return &FavoriteService{repo: repo, cars: cars}
}

// Add 重复收藏不报错
func (s *FavoriteService) Add(ctx context.Context, userID, carID int64) error {
	if _, err := s.cars.GetCar(ctx, carID); err != nil {
		return notFound(err, ErrNotFound)
	}
	return s.repo.Add(ctx, userID, carID)
}

func (s *FavoriteService) Remove(ctx context.Context, userID, carID int64) error {
	return s.repo.Remove(ctx, userID, carID)
}

// List 返回收藏的汽车，按收藏顺序
func (s *FavoriteService) List(ctx context.Context, userID int64) ([]*catalog.Car, error) {
	favs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.CarID)
	}
	cars, err := s.cars.CarsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*catalog.Car, len(cars))
	for _, c := range cars {
		byID[c.ID] = c
	}
	out := make([]*catalog.Car, 0, len(cars))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}
