package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Car 分类
const (
	CategoryAuction    = "auction"
	CategoryKoreaStock = "korea_stock"
	CategoryOnTheWay   = "on_the_way"
)

// Car 汽车挂牌信息
type Car struct {
	ID                 int64           `gorm:"primaryKey" json:"id"`
	DealerID           int64           `gorm:"index" json:"dealer_id"`
	Category           string          `gorm:"size:20;index;not null;default:korea_stock" json:"category"`
	Featured           bool            `gorm:"index" json:"featured"`
	Brand              string          `gorm:"size:100;index;not null" json:"brand"`
	Model              string          `gorm:"size:100;index;not null" json:"model"`
	Year               int             `gorm:"index;not null" json:"year"`
	FuelType           string          `gorm:"size:20;not null" json:"fuel_type"`    // petrol / diesel / hybrid / electric
	Transmission       string          `gorm:"size:20;not null" json:"transmission"` // automatic / manual
	EngineVolume       decimal.Decimal `gorm:"type:decimal(3,1);not null" json:"engine_volume"`
	Price              decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CustomsTaxEstimate decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"customs_tax_estimate"`
	TotalPrice         decimal.Decimal `gorm:"type:decimal(12,2);index;not null" json:"total_price"` // price + customs_tax_estimate
	IsNegotiable       bool            `json:"is_negotiable"`
	Condition          string          `gorm:"size:20;not null" json:"condition"` // new / used
	Mileage            int64           `gorm:"not null" json:"mileage"`           // km
	Description        string          `gorm:"type:text" json:"description"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (c *Car) Kind() ProductType          { return TypeCar }
func (c *Car) ProductID() int64           { return c.ID }
func (c *Car) UnitPrice() decimal.Decimal { return c.Price }
func (c *Car) OwnerID() int64             { return c.DealerID }

func (c *Car) DisplayName() string {
	return fmt.Sprintf("%s %s %d", c.Brand, c.Model, c.Year)
}

// SyncTotal 保存前重新计算总价
func (c *Car) SyncTotal() {
	c.TotalPrice = c.Price.Add(c.CustomsTaxEstimate)
}

// SparePartCategory 配件分类，例如 Engine、Suspension
type SparePartCategory struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// SparePart 配件
type SparePart struct {
	ID           int64           `gorm:"primaryKey" json:"id"`
	DealerID     int64           `gorm:"index" json:"dealer_id"`
	CategoryID   *int64          `gorm:"index" json:"category_id"`
	Name         string          `gorm:"size:100;not null" json:"name"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	IsNegotiable bool            `json:"is_negotiable"`
	InStock      bool            `gorm:"index" json:"in_stock"`
	Quantity     int64           `gorm:"default:1" json:"quantity"`
	Description  string          `gorm:"type:text" json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (p *SparePart) Kind() ProductType          { return TypeSparePart }
func (p *SparePart) ProductID() int64           { return p.ID }
func (p *SparePart) DisplayName() string        { return p.Name }
func (p *SparePart) UnitPrice() decimal.Decimal { return p.Price }
func (p *SparePart) OwnerID() int64             { return p.DealerID }

// CarFilter 汽车列表筛选条件
type CarFilter struct {
	Category string
	Featured bool
	Offset   int
	Limit    int
}

// Repository 目录仓储接口
type Repository interface {
	// GetProduct 按种类查找商品，不存在返回 gorm.ErrRecordNotFound
	GetProduct(ctx context.Context, t ProductType, id int64) (Product, error)

	GetCar(ctx context.Context, id int64) (*Car, error)
	ListCars(ctx context.Context, f CarFilter) ([]*Car, int64, error)
	CarsByIDs(ctx context.Context, ids []int64) ([]*Car, error)
	CreateCar(ctx context.Context, c *Car) error
	UpdateCar(ctx context.Context, c *Car) error
	DeleteCar(ctx context.Context, id int64) error

	GetSparePart(ctx context.Context, id int64) (*SparePart, error)
	ListSpareParts(ctx context.Context, categoryID int64, offset, limit int) ([]*SparePart, int64, error)
	CreateSparePart(ctx context.Context, p *SparePart) error
	UpdateSparePart(ctx context.Context, p *SparePart) error
	DeleteSparePart(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]*SparePartCategory, error)
	GetCategory(ctx context.Context, id int64) (*SparePartCategory, error)
	CreateCategory(ctx context.Context, c *SparePartCategory) error
	DeleteCategory(ctx context.Context, id int64) error
}

// Range 闭区间
type Range[T any] struct {
	Min T
	Max T
}

// ProfileQuery 由浏览记录聚合出的画像，区间已按推荐规则放宽；任一条件命中即入选
type ProfileQuery struct {
	Brands        []string
	Models        []string
	FuelTypes     []string
	Transmissions []string
	Conditions    []string
	Price         Range[decimal.Decimal]
	Year          Range[int]
	EngineVolume  Range[decimal.Decimal]
	Mileage       Range[int64]
}

// RecommendRepository 推荐所需的只读查询
type RecommendRepository interface {
	// CarsInTotalPriceRange total_price ∈ [lo, hi]，排除 excludeID；
	// 排序 total_price ASC, brand DESC, model DESC, mileage ASC
	CarsInTotalPriceRange(ctx context.Context, lo, hi decimal.Decimal, excludeID int64, limit int) ([]*Car, error)
	// CarsMatchingProfile 排序 brand DESC, model DESC, price ASC, mileage ASC
	CarsMatchingProfile(ctx context.Context, q ProfileQuery, exclude []int64, limit int) ([]*Car, error)
}
