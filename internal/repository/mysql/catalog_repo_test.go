package mysql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/carmarket/internal/datamodels/catalog"
	"github.com/example/carmarket/internal/datamodels/favorite"
	"github.com/example/carmarket/internal/datamodels/order"
	"github.com/example/carmarket/internal/repository/mysql"
	"github.com/example/carmarket/internal/testutil"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newCar(brand, model string, year int, price string, mileage int64) *catalog.Car {
	return &catalog.Car{
		Category:           catalog.CategoryKoreaStock,
		Brand:              brand,
		Model:              model,
		Year:               year,
		FuelType:           "petrol",
		Transmission:       "automatic",
		EngineVolume:       dec("1.6"),
		Price:              dec(price),
		CustomsTaxEstimate: decimal.Zero,
		Condition:          "used",
		Mileage:            mileage,
	}
}

func TestCreateCar_ComputesTotalPrice(t *testing.T) {
	db := testutil.NewDB(t)
	repo := mysql.NewCatalogRepository(db)
	ctx := context.Background()

	c := newCar("Toyota", "Corolla", 2020, "20000", 1000)
	c.CustomsTaxEstimate = dec("1500.50")
	require.NoError(t, repo.CreateCar(ctx, c))

	got, err := repo.GetCar(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, dec("21500.50").Equal(got.TotalPrice), "total=%s", got.TotalPrice)

	got.Price = dec("19000")
	require.NoError(t, repo.UpdateCar(ctx, got))
	got, err = repo.GetCar(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, dec("20500.50").Equal(got.TotalPrice))
}

func TestGetProduct_Variants(t *testing.T) {
	db := testutil.NewDB(t)
	repo := mysql.NewCatalogRepository(db)
	ctx := context.Background()

	c := newCar("Kia", "Rio", 2019, "9000", 50000)
	require.NoError(t, repo.CreateCar(ctx, c))
	sp := &catalog.SparePart{Name: "Brake pad", Price: dec("150"), InStock: true, Quantity: 4}
	require.NoError(t, repo.CreateSparePart(ctx, sp))

	p, err := repo.GetProduct(ctx, catalog.TypeCar, c.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.TypeCar, p.Kind())
	assert.Equal(t, "Kia Rio 2019", p.DisplayName())

	p, err = repo.GetProduct(ctx, catalog.TypeSparePart, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.TypeSparePart, p.Kind())
	assert.True(t, dec("150").Equal(p.UnitPrice()))

	_, err = repo.GetProduct(ctx, catalog.TypeSparePart, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetProduct(ctx, catalog.ProductType(9), c.ID)
	assert.ErrorIs(t, err, catalog.ErrInvalidProductType)
}

func TestListCars_FilterAndPaginate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := mysql.NewCatalogRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c := newCar("Hyundai", "Elantra", 2018+i, "15000", 100)
		if i%2 == 0 {
			c.Category = catalog.CategoryAuction
			c.Featured = true
		}
		require.NoError(t, repo.CreateCar(ctx, c))
	}

	list, total, err := repo.ListCars(ctx, catalog.CarFilter{Category: catalog.CategoryAuction})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 3)

	list, total, err = repo.ListCars(ctx, catalog.CarFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, list, 1)

	list, _, err = repo.ListCars(ctx, catalog.CarFilter{Featured: true, Category: "all"})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestDeleteCar_NullsOrderItemReference(t *testing.T) {
	db := testutil.NewDB(t)
	repo := mysql.NewCatalogRepository(db)
	favRepo := mysql.NewFavoriteRepository(db)
	ctx := context.Background()

	c := newCar("Toyota", "Camry", 2021, "25000", 10)
	require.NoError(t, repo.CreateCar(ctx, c))
	require.NoError(t, favRepo.Add(ctx, 7, c.ID))

	o := &order.Order{UserID: 7, BuyerNumber: "+1555", IdempotencyKey: "k1", Total: dec("25000")}
	require.NoError(t, mysql.CreateOrder(db, o))
	it := &order.OrderItem{OrderID: o.ID, Quantity: 1, Price: dec("25000")}
	it.SetProduct(c)
	require.NoError(t, mysql.CreateOrderItem(db, it))

	require.NoError(t, repo.DeleteCar(ctx, c.ID))

	var got order.OrderItem
	require.NoError(t, db.First(&got, it.ID).Error)
	assert.Nil(t, got.CarID)
	assert.Equal(t, catalog.TypeCar, got.ProductType)
	_, ok := got.ProductRef()
	assert.False(t, ok)

	favs, err := favRepo.ListByUser(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, favs)

	err = repo.DeleteCar(ctx, c.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestDeleteSparePart_NullsOrderItemReference(t *testing.T) {
	db := testutil.NewDB(t)
	repo := mysql.NewCatalogRepository(db)
	ctx := context.Background()

	sp := &catalog.SparePart{Name: "Filter", Price: dec("20"), InStock: true, Quantity: 1}
	require.NoError(t, repo.CreateSparePart(ctx, sp))
	o := &order.Order{UserID: 1, BuyerNumber: "1", IdempotencyKey: "k2"}
	require.NoError(t, mysql.CreateOrder(db, o))
	it := &order.OrderItem{OrderID: o.ID, Quantity: 1, Price: dec("20")}
	it.SetProduct(sp)
	require.NoError(t, mysql.CreateOrderItem(db, it))

	require.NoError(t, repo.DeleteSparePart(ctx, sp.ID))

	var got order.OrderItem
	require.NoError(t, db.First(&got, it.ID).Error)
	assert.Nil(t, got.SparePartID)
}

func TestCategories(t *testing.T) {
	db := testutil.NewDB(t)
	repo := mysql.NewCatalogRepository(db)
	ctx := context.Background()

	engine := &catalog.SparePartCategory{Name: "Engine"}
	brakes := &catalog.SparePartCategory{Name: "Brakes"}
	require.NoError(t, repo.CreateCategory(ctx, engine))
	require.NoError(t, repo.CreateCategory(ctx, brakes))
	assert.Error(t, repo.CreateCategory(ctx, &catalog.SparePartCategory{Name: "Engine"}))

	cats, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Brakes", cats[0].Name)

	sp := &catalog.SparePart{Name: "Piston", Price: dec("80"), CategoryID: &engine.ID}
	require.NoError(t, repo.CreateSparePart(ctx, sp))
	list, total, err := repo.ListSpareParts(ctx, engine.ID, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	require.NoError(t, repo.DeleteCategory(ctx, engine.ID))
	got, err := repo.GetSparePart(ctx, sp.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
}

func TestCarsInTotalPriceRange_Ordering(t *testing.T) {
	db := testutil.NewDB(t)
	repo := mysql.NewCatalogRepository(db)
	ctx := context.Background()

	seed := newCar("Kia", "Rio", 2020, "20000", 100)
	a := newCar("Audi", "A4", 2020, "21000", 500)
	b := newCar("Toyota", "Camry", 2020, "21000", 900)
	c := newCar("Toyota", "Camry", 2020, "21000", 100)
	d := newCar("BMW", "X5", 2020, "19000", 100)
	far := newCar("BMW", "X6", 2020, "30000", 100)
	for _, car := range []*catalog.Car{seed, a, b, c, d, far} {
		require.NoError(t, repo.CreateCar(ctx, car))
	}

	list, err := repo.CarsInTotalPriceRange(ctx, dec("18000"), dec("22000"), seed.ID, 10)
	require.NoError(t, err)
	ids := make([]int64, 0, len(list))
	for _, x := range list {
		ids = append(ids, x.ID)
	}
	// 19000 最便宜；21000 三辆按 brand DESC、mileage ASC
	assert.Equal(t, []int64{d.ID, c.ID, b.ID, a.ID}, ids)
}

func TestCarsMatchingProfile_AnyCriterion(t *testing.T) {
	db := testutil.NewDB(t)
	repo := mysql.NewCatalogRepository(db)
	ctx := context.Background()

	byBrand := newCar("Kia", "Sportage", 2010, "90000", 900000)
	byBrand.FuelType, byBrand.Transmission, byBrand.Condition = "diesel", "manual", "new"
	byBrand.EngineVolume = dec("4.0")
	noMatch := newCar("Lada", "Niva", 1990, "1000", 999999)
	noMatch.FuelType, noMatch.Transmission, noMatch.Condition = "diesel", "manual", "new"
	noMatch.EngineVolume = dec("5.0")
	byEngine := newCar("Fiat", "Uno", 1995, "500", 999999)
	byEngine.FuelType, byEngine.Transmission, byEngine.Condition = "diesel", "manual", "new"
	byEngine.EngineVolume = dec("1.5")
	for _, car := range []*catalog.Car{byBrand, noMatch, byEngine} {
		require.NoError(t, repo.CreateCar(ctx, car))
	}

	q := catalog.ProfileQuery{
		Brands:        []string{"Kia"},
		Models:        []string{"Rio"},
		FuelTypes:     []string{"petrol"},
		Transmissions: []string{"automatic"},
		Conditions:    []string{"used"},
		Price:         catalog.Range[decimal.Decimal]{Min: dec("15000"), Max: dec("25000")},
		Year:          catalog.Range[int]{Min: 2019, Max: 2021},
		EngineVolume:  catalog.Range[decimal.Decimal]{Min: dec("1.3"), Max: dec("1.9")},
		Mileage:       catalog.Range[int64]{Min: 0, Max: 1000},
	}
	list, err := repo.CarsMatchingProfile(ctx, q, []int64{byEngine.ID + 100}, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// brand DESC
	assert.Equal(t, byBrand.ID, list[0].ID)
	assert.Equal(t, byEngine.ID, list[1].ID)

	list, err = repo.CarsMatchingProfile(ctx, q, []int64{byBrand.ID}, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, byEngine.ID, list[0].ID)
}

func TestFavorites_UniquePair(t *testing.T) {
	db := testutil.NewDB(t)
	repo := mysql.NewFavoriteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, 1, 10))
	require.NoError(t, repo.Add(ctx, 1, 10))
	require.NoError(t, repo.Add(ctx, 1, 11))

	list, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, repo.Remove(ctx, 1, 10))
	require.NoError(t, repo.Remove(ctx, 1, 10))
	list, err = repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 11, list[0].CarID)

	var n int64
	require.NoError(t, db.Model(&favorite.FavoriteCar{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}
