package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/example/carmarket/internal/config"
	"github.com/example/carmarket/internal/datamodels/catalog"
	"github.com/example/carmarket/internal/datamodels/order"
	"github.com/example/carmarket/internal/repository/mysql"
	"github.com/example/carmarket/internal/session"
)


// Locker 跨进程互斥锁
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// EventPublisher 订单事件投递
type EventPublisher interface {
	Publish(ctx context.Context, body []byte) error
}

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	SessionID      string
	UserID         int64
	BuyerNumber    string
	Notes          string
	IdempotencyKey string // 按用户隔离；为空时使用购物车 token
}

// DroppedItem 结算时已不在目录中的购物车行
type DroppedItem struct {
	Type catalog.ProductType `json:"type"`
	ID   int64               `json:"id"`
}

// FinalizeResult 结算结果；Duplicate 表示幂等键已对应订单，未写入新数据
type FinalizeResult struct {
	Order     *order.Order  `json:"order"`
	Dropped   []DroppedItem `json:"dropped,omitempty"`
	Duplicate bool          `json:"duplicate"`
}

// OrderCreatedEvent 订单提交后投递到 MQ 的消息
type OrderCreatedEvent struct {
	OrderID     int64            `json:"order_id"`
	UserID      int64            `json:"user_id"`
	BuyerNumber string           `json:"buyer_number"`
	Total       decimal.Decimal  `json:"total"`
	Items       []OrderEventItem `json:"items"`
	CreatedAt   time.Time        `json:"created_at"`
}

type OrderEventItem struct {
	Type      catalog.ProductType `json:"type"`
	ProductID int64               `json:"product_id"`
	DealerID  int64               `json:"dealer_id"`
	Name      string              `json:"name"`
	Quantity  int                 `json:"quantity"`
	Price     decimal.Decimal     `json:"price"`
}

// CheckoutService 把会话购物车转换为订单。
// 同一会话的结算在进程内由 singleflight 合并，跨进程由 Redis 锁互斥，
// 幂等键唯一索引兜底。
type CheckoutService struct {
	db     *gorm.DB
	cart   *CartService
	orders order.Repository
	locker Locker
	events EventPublisher
	cfg    *config.CheckoutConfig
	group  singleflight.Group
}

// NewCheckoutService 创建结算服务，events 可为 nil
func NewCheckoutService(
	db *gorm.DB,
	cart *CartService,
	orders order.Repository,
	locker Locker,
	events EventPublisher,
	cfg *config.CheckoutConfig,
) *CheckoutService {
	return &CheckoutService{
		db:     db,
		cart:   cart,
		orders: orders,
		locker: locker,
		events: events,
		cfg:    cfg,
	}
}

// Finalize 结算当前会话购物车
func (s *CheckoutService) Finalize(ctx context.Context, req CheckoutRequest) (*FinalizeResult, error) {
	GetMonitor().RecordCheckoutRequest()
	req.BuyerNumber = strings.TrimSpace(req.BuyerNumber)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if req.SessionID == "" {
		GetMonitor().RecordCheckoutRejected()
		return nil, fmt.Errorf("%w: no session", ErrValidation)
	}
	if req.BuyerNumber == "" {
		GetMonitor().RecordCheckoutRejected()
		return nil, fmt.Errorf("%w: buyer number is required", ErrValidation)
	}
	if len(req.IdempotencyKey) > order.MaxIdempotencyKeyLen {
		GetMonitor().RecordCheckoutRejected()
		return nil, fmt.Errorf("%w: idempotency key longer than %d", ErrValidation, order.MaxIdempotencyKeyLen)
	}

	v, err, _ := s.group.Do(req.SessionID, func() (interface{}, error) {
		return s.finalize(ctx, req)
	})
	if err != nil {
		GetMonitor().RecordCheckoutRejected()
		return nil, err
	}
	res := v.(*FinalizeResult)
	GetMonitor().RecordCheckoutSuccess(res.Duplicate, len(res.Dropped))
	return res, nil
}

func (s *CheckoutService) finalize(ctx context.Context, req CheckoutRequest) (*FinalizeResult, error) {
	// 与购物车增删共用一把锁，持锁期间加入的商品不会被清空
	unlock, err := s.locker.Lock(ctx, fmt.Sprintf(cartLockKey, req.SessionID), s.cfg.LockTTL())
	if err != nil {
		if errors.Is(err, session.ErrLocked) {
			return nil, ErrCheckoutInProgress
		}
		GetMonitor().RecordRedisError()
		return nil, err
	}
	defer unlock()

	snap, err := s.cart.Snapshot(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if len(snap.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	key := req.IdempotencyKey
	if key == "" {
		key = snap.Token
	}
	if key == "" {
		key = uuid.NewString()
	}

	if existing, err := s.orders.GetByIdempotencyKey(ctx, req.UserID, key); err == nil {
		return s.duplicate(ctx, req.SessionID, existing), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		GetMonitor().RecordDBError()
		return nil, err
	}

	var (
		created *order.Order
		dropped []DroppedItem
		items   []OrderEventItem
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := mysql.NewCatalogRepository(tx)
		lines := make([]order.OrderItem, 0, len(snap.Items))
		total := decimal.Zero
		dropped, items = nil, nil

		for _, it := range snap.Items {
			p, err := products.GetProduct(ctx, it.Type, it.ID)
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				if s.cfg.StrictItems {
					return fmt.Errorf("%w: %s %d", ErrProductNotFound, it.Type, it.ID)
				}
				zap.L().Warn("购物车商品已下架，跳过",
					zap.String("session", req.SessionID),
					zap.String("type", it.Type.String()),
					zap.Int64("id", it.ID))
				dropped = append(dropped, DroppedItem{Type: it.Type, ID: it.ID})
				continue
			}

			qty := it.Quantity
			if qty <= 0 {
				qty = 1
			}
			line := order.OrderItem{Quantity: qty, Price: p.UnitPrice()}
			line.SetProduct(p)
			lines = append(lines, line)
			total = total.Add(p.UnitPrice().Mul(decimal.NewFromInt(int64(qty))))
			items = append(items, OrderEventItem{
				Type:      p.Kind(),
				ProductID: p.ProductID(),
				DealerID:  p.OwnerID(),
				Name:      p.DisplayName(),
				Quantity:  qty,
				Price:     p.UnitPrice(),
			})
		}
		if len(lines) == 0 {
			return ErrEmptyOrder
		}

		o := &order.Order{
			UserID:         req.UserID,
			BuyerNumber:    req.BuyerNumber,
			Notes:          req.Notes,
			IdempotencyKey: key,
			Total:          total,
		}
		if err := mysql.CreateOrder(tx, o); err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = o.ID
			if err := mysql.CreateOrderItem(tx, &lines[i]); err != nil {
				return err
			}
		}
		o.Items = lines
		created = o
		return nil
	})
	if err != nil {
		if errors.Is(err, order.ErrDuplicateKey) {
			// 其他进程先提交了同一幂等键
			existing, gerr := s.orders.GetByIdempotencyKey(ctx, req.UserID, key)
			if gerr != nil {
				return nil, err
			}
			return s.duplicate(ctx, req.SessionID, existing), nil
		}
		if !errors.Is(err, ErrEmptyOrder) && !errors.Is(err, ErrProductNotFound) {
			GetMonitor().RecordDBError()
		}
		return nil, err
	}

	// 提交之后才清空购物车
	if err := s.cart.Clear(ctx, req.SessionID); err != nil {
		GetMonitor().RecordRedisError()
		zap.L().Error("清空购物车失败", zap.String("session", req.SessionID), zap.Error(err))
	}
	s.publish(ctx, created, items)

	zap.L().Info("订单已创建",
		zap.Int64("order_id", created.ID),
		zap.Int64("user_id", created.UserID),
		zap.Int("items", len(created.Items)),
		zap.Int("dropped", len(dropped)))
	return &FinalizeResult{Order: created, Dropped: dropped}, nil
}

func (s *CheckoutService) duplicate(ctx context.Context, sid string, o *order.Order) *FinalizeResult {
	if err := s.cart.Clear(ctx, sid); err != nil {
		GetMonitor().RecordRedisError()
		zap.L().Error("清空购物车失败", zap.String("session", sid), zap.Error(err))
	}
	zap.L().Info("幂等键已有订单", zap.Int64("order_id", o.ID))
	return &FinalizeResult{Order: o, Duplicate: true}
}

// publish 投递失败只记录，不影响已提交的订单
func (s *CheckoutService) publish(ctx context.Context, o *order.Order, items []OrderEventItem) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(&OrderCreatedEvent{
		OrderID:     o.ID,
		UserID:      o.UserID,
		BuyerNumber: o.BuyerNumber,
		Total:       o.Total,
		Items:       items,
		CreatedAt:   o.CreatedAt,
	})
	if err != nil {
		zap.L().Error("编码订单事件失败", zap.Int64("order_id", o.ID), zap.Error(err))
		return
	}
	if err := s.events.Publish(ctx, body); err != nil {
		GetMonitor().RecordMQError()
		zap.L().Error("投递订单事件失败", zap.Int64("order_id", o.ID), zap.Error(err))
	}
}
