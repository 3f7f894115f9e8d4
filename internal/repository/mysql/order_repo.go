package mysql

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/example/carmarket/internal/datamodels/order"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) GetByIdempotencyKey(ctx context.Context, userID int64, key string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	var list []*order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// dealerOrderIDs 子查询：引用了 dealerID 汽车或配件的订单 id
func (r *orderRepo) dealerOrderIDs(dealerID int64) *gorm.DB {
	return r.db.Session(&gorm.Session{NewDB: true}).
		Model(&order.OrderItem{}).
		Select("order_items.order_id").
		Joins("LEFT JOIN cars ON cars.id = order_items.car_id").
		Joins("LEFT JOIN spare_parts ON spare_parts.id = order_items.spare_part_id").
		Where("cars.dealer_id = ? OR spare_parts.dealer_id = ?", dealerID, dealerID)
}

func (r *orderRepo) ListForDealer(ctx context.Context, dealerID, buyerID int64, limit int) ([]*order.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	q := r.db.WithContext(ctx).
		Preload("Items").
		Where("id IN (?)", r.dealerOrderIDs(dealerID))
	if buyerID > 0 {
		q = q.Where("user_id = ?", buyerID)
	}
	var list []*order.Order
	if err := q.Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) BuyerIDsForDealer(ctx context.Context, dealerID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id IN (?)", r.dealerOrderIDs(dealerID)).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *orderRepo) HasDealer(ctx context.Context, orderID, dealerID int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ?", orderID).
		Where("id IN (?)", r.dealerOrderIDs(dealerID)).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Confirm 重复确认不报错；MySQL 在值未变化时 RowsAffected 为 0，故先查存在性
func (r *orderRepo) Confirm(ctx context.Context, id int64) error {
	var o order.Order
	if err := r.db.WithContext(ctx).Select("id").First(&o, id).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ?", id).
		Update("is_confirmed", true).Error
}

// CreateOrder 在 tx 中写订单头，幂等键冲突时返回 order.ErrDuplicateKey
func CreateOrder(tx *gorm.DB, o *order.Order) error {
	if err := tx.Create(o).Error; err != nil {
		if isDuplicate(err) {
			return order.ErrDuplicateKey
		}
		return err
	}
	return nil
}

// CreateOrderItem 在 tx 中写订单行
func CreateOrderItem(tx *gorm.DB, it *order.OrderItem) error {
	return tx.Create(it).Error
}

// isDuplicate 兼容 MySQL（1062 Duplicate entry）与 SQLite（UNIQUE constraint failed）
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
