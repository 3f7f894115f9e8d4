package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/carmarket/internal/datamodels/catalog"
)

const (
	carsPerPage  = 9
	partsPerPage = 12
)

var (
	carCategories = map[string]bool{
		catalog.CategoryAuction:    true,
		catalog.CategoryKoreaStock: true,
		catalog.CategoryOnTheWay:   true,
	}
	fuelTypes     = map[string]bool{"petrol": true, "diesel": true, "hybrid": true, "electric": true}
	transmissions = map[string]bool{"automatic": true, "manual": true}
	conditions    = map[string]bool{"new": true, "used": true}
)

// Page 分页结果
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

// CatalogService 汽车、配件与分类；写操作只允许挂牌经销商本人
type CatalogService struct {
	repo catalog.Repository
}

func NewCatalogService(repo catalog.Repository) *CatalogService {
	return &CatalogService{repo: repo}
}

// ListCars 最新在前，每页 9 条，page 从 1 开始
func (s *CatalogService) ListCars(ctx context.Context, category string, featured bool, page int) (*Page[*catalog.Car], error) {
	if page < 1 {
		page = 1
	}
	list, total, err := s.repo.ListCars(ctx, catalog.CarFilter{
		Category: category,
		Featured: featured,
		Offset:   (page - 1) * carsPerPage,
		Limit:    carsPerPage,
	})
	if err != nil {
		return nil, err
	}
	return &Page[*catalog.Car]{Items: list, Total: total, Page: page, Size: carsPerPage}, nil
}

func (s *CatalogService) GetCar(ctx context.Context, id int64) (*catalog.Car, error) {
	c, err := s.repo.GetCar(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	return c, nil
}

// CreateCar 以 dealerID 的名义挂牌
func (s *CatalogService) CreateCar(ctx context.Context, dealerID int64, c *catalog.Car) error {
	c.ID = 0
	c.DealerID = dealerID
	if err := validateCar(c); err != nil {
		return err
	}
	return s.repo.CreateCar(ctx, c)
}

// UpdateCar 整体更新，总价随之重算
func (s *CatalogService) UpdateCar(ctx context.Context, dealerID int64, c *catalog.Car) error {
	old, err := s.GetCar(ctx, c.ID)
	if err != nil {
		return err
	}
	if old.DealerID != dealerID {
		return ErrForbidden
	}
	c.DealerID = old.DealerID
	c.CreatedAt = old.CreatedAt
	if err := validateCar(c); err != nil {
		return err
	}
	return s.repo.UpdateCar(ctx, c)
}

func (s *CatalogService) DeleteCar(ctx context.Context, dealerID, id int64) error {
	old, err := s.GetCar(ctx, id)
	if err != nil {
		return err
	}
	if old.DealerID != dealerID {
		return ErrForbidden
	}
	return notFound(s.repo.DeleteCar(ctx, id), ErrNotFound)
}

func validateCar(c *catalog.Car) error {
	c.Brand = strings.TrimSpace(c.Brand)
	c.Model = strings.TrimSpace(c.Model)
	if c.Category == "" {
		c.Category = catalog.CategoryKoreaStock
	}
	switch {
	case c.Brand == "" || c.Model == "":
		return fmt.Errorf("%w: brand and model are required", ErrValidation)
	case c.Year < 1900:
		return fmt.Errorf("%w: invalid year %d", ErrValidation, c.Year)
	case !carCategories[c.Category]:
		return fmt.Errorf("%w: unknown category %q", ErrValidation, c.Category)
	case !fuelTypes[c.FuelType]:
		return fmt.Errorf("%w: unknown fuel type %q", ErrValidation, c.FuelType)
	case !transmissions[c.Transmission]:
		return fmt.Errorf("%w: unknown transmission %q", ErrValidation, c.Transmission)
	case !conditions[c.Condition]:
		return fmt.Errorf("%w: unknown condition %q", ErrValidation, c.Condition)
	case c.Price.IsNegative() || c.CustomsTaxEstimate.IsNegative():
		return fmt.Errorf("%w: prices must not be negative", ErrValidation)
	case c.EngineVolume.IsNegative() || c.Mileage < 0:
		return fmt.Errorf("%w: engine volume and mileage must not be negative", ErrValidation)
	}
	return nil
}

// ---------------- SparePart ----------------

// ListSpareParts categoryID 为 0 时不过滤，每页 12 条
func (s *CatalogService) ListSpareParts(ctx context.Context, categoryID int64, page int) (*Page[*catalog.SparePart], error) {
	if page < 1 {
		page = 1
	}
	list, total, err := s.repo.ListSpareParts(ctx, categoryID, (page-1)*partsPerPage, partsPerPage)
	if err != nil {
		return nil, err
	}
	return &Page[*catalog.SparePart]{Items: list, Total: total, Page: page, Size: partsPerPage}, nil
}

func (s *CatalogService) GetSparePart(ctx context.Context, id int64) (*catalog.SparePart, error) {
	p, err := s.repo.GetSparePart(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	return p, nil
}

func (s *CatalogService) CreateSparePart(ctx context.Context, dealerID int64, p *catalog.SparePart) error {
	p.ID = 0
	p.DealerID = dealerID
	if err := s.validateSparePart(ctx, p); err != nil {
		return err
	}
	return s.repo.CreateSparePart(ctx, p)
}

func (s *CatalogService) UpdateSparePart(ctx context.Context, dealerID int64, p *catalog.SparePart) error {
	old, err := s.GetSparePart(ctx, p.ID)
	if err != nil {
		return err
	}
	if old.DealerID != dealerID {
		return ErrForbidden
	}
	p.DealerID = old.DealerID
	p.CreatedAt = old.CreatedAt
	if err := s.validateSparePart(ctx, p); err != nil {
		return err
	}
	return s.repo.UpdateSparePart(ctx, p)
}

func (s *CatalogService) DeleteSparePart(ctx context.Context, dealerID, id int64) error {
	old, err := s.GetSparePart(ctx, id)
	if err != nil {
		return err
	}
	if old.DealerID != dealerID {
		return ErrForbidden
	}
	return notFound(s.repo.DeleteSparePart(ctx, id), ErrNotFound)
}

func (s *CatalogService) validateSparePart(ctx context.Context, p *catalog.SparePart) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if p.Price.IsNegative() || p.Quantity < 0 {
		return fmt.Errorf("%w: price and quantity must not be negative", ErrValidation)
	}
	if p.CategoryID != nil {
		if _, err := s.repo.GetCategory(ctx, *p.CategoryID); err != nil {
			return notFound(err, fmt.Errorf("%w: unknown category %d", ErrValidation, *p.CategoryID))
		}
	}
	return nil
}

// ---------------- Category ----------------

func (s *CatalogService) ListCategories(ctx context.Context) ([]*catalog.SparePartCategory, error) {
	return s.repo.ListCategories(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*catalog.SparePartCategory, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	return c, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, c *catalog.SparePartCategory) error {
	c.ID = 0
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	return s.repo.CreateCategory(ctx, c)
}

// DeleteCategory 该分类下的配件保留，分类置空
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteCategory(ctx, id)
}
