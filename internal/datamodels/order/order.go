package order

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/carmarket/internal/datamodels/catalog"
)

var ErrDuplicateKey = errors.New("order with this idempotency key already exists")

// MaxIdempotencyKeyLen 与 idempotency_key 列宽一致
const MaxIdempotencyKeyLen = 64

// Order 订单模型，一次结算生成一条；幂等键按用户唯一
type Order struct {
	ID             int64           `gorm:"primaryKey" json:"id"`
	UserID         int64           `gorm:"uniqueIndex:idx_order_user_key;not null" json:"user_id"`
	BuyerNumber    string          `gorm:"size:32;not null" json:"buyer_number"`
	Notes          string          `gorm:"type:text" json:"notes"`
	IsConfirmed    bool            `gorm:"index;not null;default:false" json:"is_confirmed"`
	IdempotencyKey string          `gorm:"size:64;uniqueIndex:idx_order_user_key;not null" json:"-"`
	Total          decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// OrderItem 订单行；CarID 与 SparePartID 恰有一个非空，商品被删除后置空但行保留
type OrderItem struct {
	ID          int64               `gorm:"primaryKey" json:"id"`
	OrderID     int64               `gorm:"index;not null" json:"order_id"`
	ProductType catalog.ProductType `gorm:"not null" json:"product_type"`
	CarID       *int64              `gorm:"index" json:"car_id"`
	SparePartID *int64              `gorm:"index" json:"spare_part_id"`
	Quantity    int                 `gorm:"not null;default:1" json:"quantity"`
	Price       decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"price"`
}

// SetProduct 按商品种类填充引用列
func (it *OrderItem) SetProduct(p catalog.Product) {
	id := p.ProductID()
	it.ProductType = p.Kind()
	it.CarID, it.SparePartID = nil, nil
	switch p.Kind() {
	case catalog.TypeCar:
		it.CarID = &id
	case catalog.TypeSparePart:
		it.SparePartID = &id
	}
}

// ProductRef 返回引用的商品 id，引用已被置空时 ok 为 false
func (it *OrderItem) ProductRef() (id int64, ok bool) {
	switch it.ProductType {
	case catalog.TypeCar:
		if it.CarID != nil {
			return *it.CarID, true
		}
	case catalog.TypeSparePart:
		if it.SparePartID != nil {
			return *it.SparePartID, true
		}
	}
	return 0, false
}

// Repository 订单仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	// GetByIdempotencyKey 只在 userID 自己的订单中查找
	GetByIdempotencyKey(ctx context.Context, userID int64, key string) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	// ListForDealer 包含 dealerID 商品的订单，新的在前；buyerID 为 0 时不限买家
	ListForDealer(ctx context.Context, dealerID, buyerID int64, limit int) ([]*Order, error)
	// BuyerIDsForDealer 在 dealerID 处下过单的买家
	BuyerIDsForDealer(ctx context.Context, dealerID int64) ([]int64, error)
	// HasDealer 订单中是否有 dealerID 的商品
	HasDealer(ctx context.Context, orderID, dealerID int64) (bool, error)
	Confirm(ctx context.Context, id int64) error
}
