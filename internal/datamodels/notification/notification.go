package notification

import (
	"context"
	"time"
)

// Notification 订单通知，每个涉及的经销商一条
type Notification struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	DealerID  int64     `gorm:"uniqueIndex:idx_notify_dealer_order;not null" json:"dealer_id"`
	OrderID   int64     `gorm:"uniqueIndex:idx_notify_dealer_order;not null" json:"order_id"`
	Message   string    `gorm:"size:512;not null" json:"message"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// Repository 通知仓储接口
type Repository interface {
	// Create 同一 (dealer, order) 重复投递时静默成功
	Create(ctx context.Context, n *Notification) error
	ListByDealer(ctx context.Context, dealerID int64, limit int) ([]*Notification, error)
}
