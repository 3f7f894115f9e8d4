package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/carmarket/internal/datamodels/catalog"
	"github.com/example/carmarket/internal/session"
)

const (
	sessionCartKey = "cart"
	cartLockKey    = "carmarket:cart:lock:%s" // sessionID，结算同样持有

	cartLockTTL     = 5 * time.Second
	cartLockRetries = 10
	cartLockBackoff = 20 * time.Millisecond
)

// SessionStore 会话存储，按会话 id + 字段读写 JSON
type SessionStore interface {
	Get(ctx context.Context, sid, field string, dst any) (bool, error)
	Set(ctx context.Context, sid, field string, v any) error
	Clear(ctx context.Context, sid, field string) error
}

// ProductLookup 按种类查找商品
type ProductLookup interface {
	GetProduct(ctx context.Context, t catalog.ProductType, id int64) (catalog.Product, error)
}

// LineItem 购物车行，(Type, ID) 唯一；Price 为加入时的目录价
type LineItem struct {
	Type     catalog.ProductType `json:"type"`
	ID       int64               `json:"id"`
	Quantity int                 `json:"quantity"`
	Price    decimal.Decimal     `json:"price"`
}

// CartSnapshot 会话中保存的购物车原始内容。
// Token 在加入第一件商品时生成，作为该购物车结算的默认幂等键。
type CartSnapshot struct {
	Token string     `json:"token"`
	Items []LineItem `json:"items"`
}

func (c *CartSnapshot) indexOf(t catalog.ProductType, id int64) int {
	for i, it := range c.Items {
		if it.Type == t && it.ID == id {
			return i
		}
	}
	return -1
}

// CartLine 带实时商品信息的购物车行
type CartLine struct {
	LineItem
	Product  catalog.Product `json:"product"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartView 购物车展示内容，总价按实时价格计算
type CartView struct {
	Lines         []CartLine      `json:"lines"`
	TotalQuantity int             `json:"total_quantity"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// CartService 会话购物车，本身无状态，每次调用都从会话存储重建
type CartService struct {
	store    SessionStore
	products ProductLookup
	locker   Locker
}

// NewCartService 创建购物车服务；locker 为 nil 时增删不加锁
func NewCartService(store SessionStore, products ProductLookup, locker Locker) *CartService {
	return &CartService{store: store, products: products, locker: locker}
}

// Add 加入商品；同一商品已在购物车中时不做任何改变
func (s *CartService) Add(ctx context.Context, sid, typ string, id int64) error {
	t, err := catalog.ParseProductType(typ)
	if err != nil {
		return err
	}
	p, err := s.products.GetProduct(ctx, t, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s %d", ErrProductNotFound, t, id)
		}
		return err
	}

	unlock, err := s.lock(ctx, sid)
	if err != nil {
		return err
	}
	defer unlock()

	snap, err := s.Snapshot(ctx, sid)
	if err != nil {
		return err
	}
	if snap.indexOf(t, id) >= 0 {
		return nil
	}
	if snap.Token == "" {
		snap.Token = uuid.NewString()
	}
	snap.Items = append(snap.Items, LineItem{Type: t, ID: id, Quantity: 1, Price: p.UnitPrice()})
	if err := s.save(ctx, sid, snap); err != nil {
		return err
	}
	GetMonitor().RecordCartAdd()
	return nil
}

// Remove 移除商品，不在购物车中也视为成功
func (s *CartService) Remove(ctx context.Context, sid, typ string, id int64) error {
	t, err := catalog.ParseProductType(typ)
	if err != nil {
		return err
	}
	unlock, err := s.lock(ctx, sid)
	if err != nil {
		return err
	}
	defer unlock()

	snap, err := s.Snapshot(ctx, sid)
	if err != nil {
		return err
	}
	i := snap.indexOf(t, id)
	if i < 0 {
		return nil
	}
	snap.Items = append(snap.Items[:i], snap.Items[i+1:]...)
	return s.save(ctx, sid, snap)
}

// List 解析每一行对应的实时商品，已下架的商品跳过
func (s *CartService) List(ctx context.Context, sid string) (*CartView, error) {
	snap, err := s.Snapshot(ctx, sid)
	if err != nil {
		return nil, err
	}
	view := &CartView{Lines: make([]CartLine, 0, len(snap.Items)), TotalPrice: decimal.Zero}
	for _, it := range snap.Items {
		p, err := s.products.GetProduct(ctx, it.Type, it.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				zap.L().Debug("cart item no longer in catalog",
					zap.String("type", it.Type.String()), zap.Int64("id", it.ID))
				continue
			}
			return nil, err
		}
		sub := p.UnitPrice().Mul(decimal.NewFromInt(int64(it.Quantity)))
		view.Lines = append(view.Lines, CartLine{LineItem: it, Product: p, Subtotal: sub})
		view.TotalQuantity += it.Quantity
		view.TotalPrice = view.TotalPrice.Add(sub)
	}
	return view, nil
}

// Snapshot 读取会话中的原始购物车，没有时返回空购物车
func (s *CartService) Snapshot(ctx context.Context, sid string) (*CartSnapshot, error) {
	snap := &CartSnapshot{}
	if _, err := s.store.Get(ctx, sid, sessionCartKey, snap); err != nil {
		GetMonitor().RecordRedisError()
		return nil, err
	}
	return snap, nil
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, sid string) error {
	return s.store.Clear(ctx, sid, sessionCartKey)
}

func (s *CartService) save(ctx context.Context, sid string, snap *CartSnapshot) error {
	if err := s.store.Set(ctx, sid, sessionCartKey, snap); err != nil {
		GetMonitor().RecordRedisError()
		return err
	}
	return nil
}

// lock 串行化同一会话的读改写。并发加购短暂等待；
// 结算持锁超过等待时间时返回 ErrCheckoutInProgress。
func (s *CartService) lock(ctx context.Context, sid string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	key := fmt.Sprintf(cartLockKey, sid)
	for i := 0; ; i++ {
		unlock, err := s.locker.Lock(ctx, key, cartLockTTL)
		if err == nil {
			return unlock, nil
		}
		if !errors.Is(err, session.ErrLocked) {
			GetMonitor().RecordRedisError()
			return nil, err
		}
		if i >= cartLockRetries {
			return nil, ErrCheckoutInProgress
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cartLockBackoff):
		}
	}
}
