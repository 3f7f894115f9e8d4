package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/carmarket/internal/config"
	"github.com/example/carmarket/internal/datamodels/catalog"
)

func TestCart_AddIsIdempotent(t *testing.T) {
	e := newTestEnv(t, config.CheckoutConfig{})
	ctx := context.Background()
	car := mustCreateCar(t, e.catalog, testCar("Toyota", "Camry", 2020, 20000, 30000))

	require.NoError(t, e.cart.Add(ctx, "s1", "car", car.ID))
	first, err := e.cart.Snapshot(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, first.Items, 1)
	assert.NotEmpty(t, first.Token)

	require.NoError(t, e.cart.Add(ctx, "s1", "car", car.ID))
	again, err := e.cart.Snapshot(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, again.Items, 1)
	assert.Equal(t, first.Token, again.Token)

	it := again.Items[0]
	assert.Equal(t, catalog.TypeCar, it.Type)
	assert.Equal(t, 1, it.Quantity)
	assert.True(t, it.Price.Equal(decimal.NewFromInt(20000)))
}

func TestCart_AddRejectsBadInput(t *testing.T) {
	e := newTestEnv(t, config.CheckoutConfig{})
	ctx := context.Background()

	assert.ErrorIs(t, e.cart.Add(ctx, "s1", "boat", 1), ErrInvalidProductType)
	assert.ErrorIs(t, e.cart.Add(ctx, "s1", "car", 404), ErrProductNotFound)
	assert.ErrorIs(t, e.cart.Add(ctx, "s1", "sparepart", 404), ErrProductNotFound)

	snap, err := e.cart.Snapshot(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
}

func TestCart_SameIDDifferentType(t *testing.T) {
	e := newTestEnv(t, config.CheckoutConfig{})
	ctx := context.Background()
	car := mustCreateCar(t, e.catalog, testCar("Kia", "K5", 2021, 15000, 1000))
	part := mustCreatePart(t, e.catalog, &catalog.SparePart{ID: car.ID, Name: "Brake pad", Price: decimal.NewFromInt(40), InStock: true})

	require.NoError(t, e.cart.Add(ctx, "s1", "car", car.ID))
	require.NoError(t, e.cart.Add(ctx, "s1", "sparepart", part.ID))

	snap, err := e.cart.Snapshot(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, snap.Items, 2)
}

func TestCart_RemoveMissingIsNoop(t *testing.T) {
	e := newTestEnv(t, config.CheckoutConfig{})
	ctx := context.Background()
	car := mustCreateCar(t, e.catalog, testCar("Kia", "K5", 2021, 15000, 1000))

	require.NoError(t, e.cart.Remove(ctx, "s1", "car", car.ID))
	require.NoError(t, e.cart.Add(ctx, "s1", "car", car.ID))
	require.NoError(t, e.cart.Remove(ctx, "s1", "sparepart", car.ID))

	snap, err := e.cart.Snapshot(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)

	require.NoError(t, e.cart.Remove(ctx, "s1", "car", car.ID))
	snap, err = e.cart.Snapshot(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, snap.Items)

	assert.ErrorIs(t, e.cart.Remove(ctx, "s1", "truck", 1), ErrInvalidProductType)
}

func TestCart_BlockedWhileCheckoutHoldsLock(t *testing.T) {
	e := newTestEnv(t, config.CheckoutConfig{})
	ctx := context.Background()
	car := mustCreateCar(t, e.catalog, testCar("Mazda", "CX-5", 2022, 26000, 800))
	part := mustCreatePart(t, e.catalog, &catalog.SparePart{Name: "Wiper", Price: decimal.NewFromInt(12)})
	require.NoError(t, e.cart.Add(ctx, "s1", "car", car.ID))

	unlock, err := e.locker.Lock(ctx, fmt.Sprintf(cartLockKey, "s1"), time.Second)
	require.NoError(t, err)

	assert.ErrorIs(t, e.cart.Add(ctx, "s1", "sparepart", part.ID), ErrCheckoutInProgress)
	assert.ErrorIs(t, e.cart.Remove(ctx, "s1", "car", car.ID), ErrCheckoutInProgress)
	snap, err := e.cart.Snapshot(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, car.ID, snap.Items[0].ID)

	// 其他会话不受影响
	require.NoError(t, e.cart.Add(ctx, "s2", "sparepart", part.ID))

	unlock()
	require.NoError(t, e.cart.Add(ctx, "s1", "sparepart", part.ID))
	snap, err = e.cart.Snapshot(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, snap.Items, 2)
}

func TestCart_ConcurrentAddsKeepEveryItem(t *testing.T) {
	e := newTestEnv(t, config.CheckoutConfig{})
	ctx := context.Background()

	const n = 5
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		p := mustCreatePart(t, e.catalog, &catalog.SparePart{Name: fmt.Sprintf("Bolt %d", i), Price: decimal.NewFromInt(3)})
		ids = append(ids, p.ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			errs <- e.cart.Add(ctx, "s1", "sparepart", id)
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	snap, err := e.cart.Snapshot(ctx, "s1")
	require.NoError(t, err)
	got := make([]int64, 0, len(snap.Items))
	for _, it := range snap.Items {
		got = append(got, it.ID)
	}
	assert.ElementsMatch(t, ids, got)
}

func TestCart_ListUsesLivePricesAndSkipsGone(t *testing.T) {
	e := newTestEnv(t, config.CheckoutConfig{})
	ctx := context.Background()
	car := mustCreateCar(t, e.catalog, testCar("Hyundai", "Sonata", 2019, 18000, 50000))
	part := mustCreatePart(t, e.catalog, &catalog.SparePart{Name: "Oil filter", Price: decimal.NewFromInt(25)})
	gone := mustCreatePart(t, e.catalog, &catalog.SparePart{Name: "Mirror", Price: decimal.NewFromInt(90)})

	for _, add := range []struct {
		typ string
		id  int64
	}{{"car", car.ID}, {"sparepart", part.ID}, {"sparepart", gone.ID}} {
		require.NoError(t, e.cart.Add(ctx, "s1", add.typ, add.id))
	}

	car.Price = decimal.NewFromInt(17500)
	require.NoError(t, e.catalog.UpdateCar(ctx, car))
	require.NoError(t, e.catalog.DeleteSparePart(ctx, gone.ID))

	view, err := e.cart.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, 2, view.TotalQuantity)
	assert.True(t, view.TotalPrice.Equal(decimal.NewFromInt(17525)), view.TotalPrice.String())
	assert.Equal(t, "Hyundai Sonata 2019", view.Lines[0].Product.DisplayName())

	empty, err := e.cart.List(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, empty.Lines)
	assert.True(t, empty.TotalPrice.IsZero())
}

func TestViewHistory_DedupAndCap(t *testing.T) {
	e := newTestEnv(t, config.CheckoutConfig{})
	h := NewViewHistory(e.store)
	ctx := context.Background()

	for id := int64(1); id <= 25; id++ {
		require.NoError(t, h.Record(ctx, "s1", id))
	}
	require.NoError(t, h.Record(ctx, "s1", 10))

	ids, err := h.IDs(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, ids, viewHistoryCap)
	assert.EqualValues(t, 10, ids[0])
	assert.EqualValues(t, 25, ids[1])

	seen := map[int64]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}

	none, err := h.IDs(ctx, "fresh")
	require.NoError(t, err)
	assert.Empty(t, none)
}
