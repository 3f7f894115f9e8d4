package service

import (
	"context"

	"github.com/example/carmarket/internal/datamodels/order"
)

// OrderService 用于订单查询与后台确认
type OrderService struct {
	repo order.Repository
}

// NewOrderService 创建订单服务
func NewOrderService(repo order.Repository) *OrderService {
	return &OrderService{repo: repo}
}

// ListForDealer 经销商只能看到包含自己商品的订单；buyerID 为 0 时不限买家
func (s *OrderService) ListForDealer(ctx context.Context, dealerID, buyerID int64, limit int) ([]*order.Order, error) {
	return s.repo.ListForDealer(ctx, dealerID, buyerID, limit)
}

func (s *OrderService) BuyerIDsForDealer(ctx context.Context, dealerID int64) ([]int64, error) {
	return s.repo.BuyerIDsForDealer(ctx, dealerID)
}

func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *OrderService) Get(ctx context.Context, id int64) (*order.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	return o, nil
}

// GetForDealer 与该经销商无关的订单按不存在处理
func (s *OrderService) GetForDealer(ctx context.Context, dealerID, id int64) (*order.Order, error) {
	ok, err := s.repo.HasDealer(ctx, id, dealerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Confirm 确认订单，重复确认无副作用；只能确认包含自己商品的订单
func (s *OrderService) Confirm(ctx context.Context, dealerID, id int64) (*order.Order, error) {
	if _, err := s.GetForDealer(ctx, dealerID, id); err != nil {
		return nil, err
	}
	if err := s.repo.Confirm(ctx, id); err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	return s.Get(ctx, id)
}
