package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/carmarket/internal/config"
	"github.com/example/carmarket/internal/datamodels/catalog"
	"github.com/example/carmarket/internal/datamodels/user"
	"github.com/example/carmarket/internal/logger"
	"github.com/example/carmarket/internal/repository/mysql"
	"github.com/example/carmarket/internal/service"
)

var carModels = map[string][]string{
	"Toyota":  {"Corolla", "Camry", "RAV4"},
	"Hyundai": {"Elantra", "Sonata", "Tucson"},
	"Kia":     {"Sportage", "Rio", "Sorento"},
}

var (
	brands        = []string{"Toyota", "Hyundai", "Kia"}
	carCategories = []string{catalog.CategoryAuction, catalog.CategoryKoreaStock, catalog.CategoryOnTheWay}
	fuelTypes     = []string{"petrol", "diesel", "hybrid", "electric"}
	transmissions = []string{"automatic", "manual"}
	conditions    = []string{"new", "used"}
)

var partCategories = []string{"Engine", "Suspension", "Brakes", "Electrical"}

func main() {
	n := flag.Int("cars", 20, "number of fake cars")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	dealer := flag.String("dealer", "demo_dealer", "dealer username owning the listings")
	flag.Parse()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	l, err := logger.Init(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer l.Sync()

	ctx := context.Background()
	db := mysql.Init(&cfg.MySQL)
	userRepo := mysql.NewUserRepository(db)
	catalogSvc := service.NewCatalogService(mysql.NewCatalogRepository(db))
	userSvc := service.NewUserService(userRepo, &cfg.JWT, nil)

	dealerID, err := ensureDealer(ctx, userRepo, userSvc, *dealer)
	if err != nil {
		zap.L().Fatal("prepare dealer failed", zap.Error(err))
	}

	r := rand.New(rand.NewSource(*seed))
	for _, c := range fakeCars(r, *n) {
		if err := catalogSvc.CreateCar(ctx, dealerID, c); err != nil {
			zap.L().Fatal("create car failed", zap.String("car", c.DisplayName()), zap.Error(err))
		}
	}

	for _, name := range partCategories {
		cat := &catalog.SparePartCategory{Name: name, Description: name + " parts"}
		if err := catalogSvc.CreateCategory(ctx, cat); err != nil {
			zap.L().Warn("create category failed, skipped", zap.String("name", name), zap.Error(err))
			continue
		}
		for _, p := range fakeParts(r, cat) {
			if err := catalogSvc.CreateSparePart(ctx, dealerID, p); err != nil {
				zap.L().Fatal("create spare part failed", zap.String("part", p.Name), zap.Error(err))
			}
		}
	}

	zap.L().Info("fake data created", zap.Int("cars", *n), zap.Int64("dealer_id", dealerID))
}

// ensureDealer 经销商已存在时复用，否则以默认密码注册
func ensureDealer(ctx context.Context, repo user.Repository, svc *service.UserService, username string) (int64, error) {
	if u, err := repo.GetByUsername(ctx, username); err == nil {
		return u.ID, nil
	}
	u, err := svc.Register(ctx, username, username+"@example.com", "dealer123", user.RoleDealer)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

func pick(r *rand.Rand, list []string) string {
	return list[r.Intn(len(list))]
}

// fakeCars 生成 n 辆随机车辆，年份 2018-2023
func fakeCars(r *rand.Rand, n int) []*catalog.Car {
	cars := make([]*catalog.Car, 0, n)
	for i := 1; i <= n; i++ {
		brand := pick(r, brands)
		model := pick(r, carModels[brand])
		year := 2018 + r.Intn(6)
		price := decimal.NewFromFloat(10000 + r.Float64()*40000).Round(2)
		cars = append(cars, &catalog.Car{
			Category:           pick(r, carCategories),
			Featured:           r.Intn(2) == 0,
			Brand:              brand,
			Model:              model,
			Year:               year,
			FuelType:           pick(r, fuelTypes),
			Transmission:       pick(r, transmissions),
			EngineVolume:       decimal.NewFromFloat(1.2 + r.Float64()*2.3).Round(1),
			Price:              price,
			CustomsTaxEstimate: price.Mul(decimal.NewFromFloat(0.15)).Round(2),
			IsNegotiable:       r.Intn(2) == 0,
			Condition:          pick(r, conditions),
			Mileage:            r.Int63n(120001),
			Description:        fmt.Sprintf("Fake car %s %s %d, sample listing #%d.", brand, model, year, i),
		})
	}
	return cars
}

func fakeParts(r *rand.Rand, cat *catalog.SparePartCategory) []*catalog.SparePart {
	parts := make([]*catalog.SparePart, 0, 3)
	for i := 1; i <= 3; i++ {
		parts = append(parts, &catalog.SparePart{
			CategoryID:   &cat.ID,
			Name:         fmt.Sprintf("%s part %d", strings.ToLower(cat.Name), i),
			Price:        decimal.NewFromFloat(20 + r.Float64()*480).Round(2),
			IsNegotiable: r.Intn(2) == 0,
			InStock:      true,
			Quantity:     int64(1 + r.Intn(10)),
		})
	}
	return parts
}
