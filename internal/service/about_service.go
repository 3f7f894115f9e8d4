package service

import (
	"context"

	"github.com/example/carmarket/internal/datamodels/about"
)

// AboutService 关于我们页面，全站只有一份
type AboutService struct {
	repo about.Repository
}

func NewAboutService(repo about.Repository) *AboutService {
	return &AboutService{repo: repo}
}

func (s *AboutService) Get(ctx context.Context) (*about.Page, error) {
	p, err := s.repo.Get(ctx)
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	return p, nil
}

// Save 总是写入唯一的一行
func (s *AboutService) Save(ctx context.Context, p *about.Page) (*about.Page, error) {
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}
