package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/carmarket/internal/config"
	"github.com/example/carmarket/internal/datamodels/catalog"
	"github.com/example/carmarket/internal/datamodels/order"
	"github.com/example/carmarket/internal/repository/mysql"
	"github.com/example/carmarket/internal/session"
	"github.com/example/carmarket/internal/testutil"
)

type fakePublisher struct {
	mu     sync.Mutex
	bodies [][]byte
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.bodies = append(f.bodies, body)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bodies)
}

type testEnv struct {
	db       *gorm.DB
	mr       *miniredis.Miniredis
	catalog  *mysql.CatalogRepository
	orders   order.Repository
	store    *session.Store
	locker   *session.Locker
	cart     *CartService
	checkout *CheckoutService
	events   *fakePublisher
}

func newTestEnv(t *testing.T, cfg config.CheckoutConfig) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	redis, mr := testutil.NewRedis(t)

	e := &testEnv{
		db:      db,
		mr:      mr,
		catalog: mysql.NewCatalogRepository(db),
		orders:  mysql.NewOrderRepository(db),
		store:   session.NewStore(redis, 0),
		locker:  session.NewLocker(redis),
		events:  &fakePublisher{},
	}
	e.cart = NewCartService(e.store, e.catalog, e.locker)
	e.checkout = NewCheckoutService(db, e.cart, e.orders, e.locker, e.events, &cfg)
	return e
}

func (e *testEnv) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&order.Order{}).Count(&n).Error)
	return n
}

func (e *testEnv) itemCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&order.OrderItem{}).Count(&n).Error)
	return n
}

func testCar(brand, model string, year int, price, mileage int64) *catalog.Car {
	return &catalog.Car{
		Brand:              brand,
		Model:              model,
		Year:               year,
		FuelType:           "petrol",
		Transmission:       "automatic",
		EngineVolume:       decimal.RequireFromString("2.0"),
		Price:              decimal.NewFromInt(price),
		CustomsTaxEstimate: decimal.Zero,
		Condition:          "used",
		Mileage:            mileage,
	}
}

func mustCreateCar(t *testing.T, repo *mysql.CatalogRepository, c *catalog.Car) *catalog.Car {
	t.Helper()
	require.NoError(t, repo.CreateCar(context.Background(), c))
	return c
}

func mustCreatePart(t *testing.T, repo *mysql.CatalogRepository, p *catalog.SparePart) *catalog.SparePart {
	t.Helper()
	require.NoError(t, repo.CreateSparePart(context.Background(), p))
	return p
}

func carIDs(cars []*catalog.Car) []int64 {
	ids := make([]int64, 0, len(cars))
	for _, c := range cars {
		ids = append(ids, c.ID)
	}
	return ids
}

func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
