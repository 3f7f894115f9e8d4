package service

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/carmarket/internal/datamodels/catalog"
)

const (
	defaultRecommendOne  = 6
	defaultRecommendMany = 10
)

var (
	similarPriceDelta  = decimal.NewFromInt(2000) // 单车：total_price 上下浮动
	profilePriceDelta  = decimal.NewFromInt(2500)
	profileEngineDelta = decimal.RequireFromString("0.3")
	profileYearDelta   = 1
)

// CarSource 推荐所需的汽车读取
type CarSource interface {
	GetCar(ctx context.Context, id int64) (*catalog.Car, error)
	CarsByIDs(ctx context.Context, ids []int64) ([]*catalog.Car, error)
	catalog.RecommendRepository
}

// RecommendService 基于内容的汽车推荐，只读
type RecommendService struct {
	cars CarSource
}

func NewRecommendService(cars CarSource) *RecommendService {
	return &RecommendService{cars: cars}
}

// RecommendForOne 与种子车总价相近的其他车；种子不存在时返回空
func (s *RecommendService) RecommendForOne(ctx context.Context, seedID int64, limit int) ([]*catalog.Car, error) {
	if limit <= 0 {
		limit = defaultRecommendOne
	}
	seed, err := s.cars.GetCar(ctx, seedID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []*catalog.Car{}, nil
		}
		return nil, err
	}
	lo := seed.TotalPrice.Sub(similarPriceDelta)
	hi := seed.TotalPrice.Add(similarPriceDelta)
	return s.cars.CarsInTotalPriceRange(ctx, lo, hi, seed.ID, limit)
}

// RecommendForMany 按浏览过的车聚合画像，命中任一条件的其他车都入选
func (s *RecommendService) RecommendForMany(ctx context.Context, seedIDs []int64, limit int) ([]*catalog.Car, error) {
	if limit <= 0 {
		limit = defaultRecommendMany
	}
	ids := uniqueIDs(seedIDs)
	if len(ids) == 0 {
		return []*catalog.Car{}, nil
	}
	seeds, err := s.cars.CarsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(seeds) == 0 {
		return []*catalog.Car{}, nil
	}
	return s.cars.CarsMatchingProfile(ctx, BuildProfile(seeds), ids, limit)
}

// BuildProfile 汇总种子车的取值集合与数值区间，并按推荐规则放宽区间
func BuildProfile(seeds []*catalog.Car) catalog.ProfileQuery {
	var (
		brands, models, fuels, gears, conds = newStringSet(), newStringSet(), newStringSet(), newStringSet(), newStringSet()
		q                                   catalog.ProfileQuery
	)
	for i, c := range seeds {
		brands.add(c.Brand)
		models.add(c.Model)
		fuels.add(c.FuelType)
		gears.add(c.Transmission)
		conds.add(c.Condition)

		if i == 0 {
			q.Price = catalog.Range[decimal.Decimal]{Min: c.Price, Max: c.Price}
			q.Year = catalog.Range[int]{Min: c.Year, Max: c.Year}
			q.EngineVolume = catalog.Range[decimal.Decimal]{Min: c.EngineVolume, Max: c.EngineVolume}
			q.Mileage = catalog.Range[int64]{Min: c.Mileage, Max: c.Mileage}
			continue
		}
		q.Price.Min = decimal.Min(q.Price.Min, c.Price)
		q.Price.Max = decimal.Max(q.Price.Max, c.Price)
		q.Year.Min = min(q.Year.Min, c.Year)
		q.Year.Max = max(q.Year.Max, c.Year)
		q.EngineVolume.Min = decimal.Min(q.EngineVolume.Min, c.EngineVolume)
		q.EngineVolume.Max = decimal.Max(q.EngineVolume.Max, c.EngineVolume)
		q.Mileage.Min = min(q.Mileage.Min, c.Mileage)
		q.Mileage.Max = max(q.Mileage.Max, c.Mileage)
	}

	q.Brands = brands.sorted()
	q.Models = models.sorted()
	q.FuelTypes = fuels.sorted()
	q.Transmissions = gears.sorted()
	q.Conditions = conds.sorted()

	q.Price.Min = q.Price.Min.Sub(profilePriceDelta)
	q.Price.Max = q.Price.Max.Add(profilePriceDelta)
	q.Year.Min -= profileYearDelta
	q.Year.Max += profileYearDelta
	q.EngineVolume.Min = q.EngineVolume.Min.Sub(profileEngineDelta)
	q.EngineVolume.Max = q.EngineVolume.Max.Add(profileEngineDelta)
	// 里程不放宽
	return q
}

type stringSet map[string]struct{}

func newStringSet() stringSet { return stringSet{} }

func (s stringSet) add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
