package mysql

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/carmarket/internal/datamodels/catalog"
	"github.com/example/carmarket/internal/datamodels/favorite"
	"github.com/example/carmarket/internal/datamodels/order"
)

// CatalogRepository 汽车、配件与分类的 GORM 实现，同时提供推荐查询
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建目录仓储；db 可以是事务句柄
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

var (
	_ catalog.Repository          = (*CatalogRepository)(nil)
	_ catalog.RecommendRepository = (*CatalogRepository)(nil)
)

func (r *CatalogRepository) GetProduct(ctx context.Context, t catalog.ProductType, id int64) (catalog.Product, error) {
	switch t {
	case catalog.TypeCar:
		c, err := r.GetCar(ctx, id)
		if err != nil {
			return nil, err
		}
		return c, nil
	case catalog.TypeSparePart:
		p, err := r.GetSparePart(ctx, id)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: %v", catalog.ErrInvalidProductType, t)
}

// ---------------- Car ----------------

func (r *CatalogRepository) GetCar(ctx context.Context, id int64) (*catalog.Car, error) {
	var c catalog.Car
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CatalogRepository) ListCars(ctx context.Context, f catalog.CarFilter) ([]*catalog.Car, int64, error) {
	q := r.db.WithContext(ctx).Model(&catalog.Car{})
	if f.Category != "" && f.Category != "all" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Featured {
		q = q.Where("featured = ?", true)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Limit <= 0 {
		f.Limit = 9
	}
	var list []*catalog.Car
	if err := q.Order("created_at DESC").Order("id DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *CatalogRepository) CarsByIDs(ctx context.Context, ids []int64) ([]*catalog.Car, error) {
	var list []*catalog.Car
	if len(ids) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *CatalogRepository) CreateCar(ctx context.Context, c *catalog.Car) error {
	c.SyncTotal()
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CatalogRepository) UpdateCar(ctx context.Context, c *catalog.Car) error {
	c.SyncTotal()
	return r.db.WithContext(ctx).Save(c).Error
}

// DeleteCar 删除汽车：订单行引用置空、收藏一并删除
func (r *CatalogRepository) DeleteCar(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order.OrderItem{}).
			Where("car_id = ?", id).
			Update("car_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("car_id = ?", id).Delete(&favorite.FavoriteCar{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&catalog.Car{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ---------------- SparePart ----------------

func (r *CatalogRepository) GetSparePart(ctx context.Context, id int64) (*catalog.SparePart, error) {
	var p catalog.SparePart
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) ListSpareParts(ctx context.Context, categoryID int64, offset, limit int) ([]*catalog.SparePart, int64, error) {
	q := r.db.WithContext(ctx).Model(&catalog.SparePart{})
	if categoryID > 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 12
	}
	var list []*catalog.SparePart
	if err := q.Order("created_at DESC").Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *CatalogRepository) CreateSparePart(ctx context.Context, p *catalog.SparePart) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *CatalogRepository) UpdateSparePart(ctx context.Context, p *catalog.SparePart) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// DeleteSparePart 删除配件，订单行引用置空
func (r *CatalogRepository) DeleteSparePart(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order.OrderItem{}).
			Where("spare_part_id = ?", id).
			Update("spare_part_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&catalog.SparePart{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ---------------- Category ----------------

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]*catalog.SparePartCategory, error) {
	var list []*catalog.SparePartCategory
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *CatalogRepository) GetCategory(ctx context.Context, id int64) (*catalog.SparePartCategory, error) {
	var c catalog.SparePartCategory
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c *catalog.SparePartCategory) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// DeleteCategory 删除分类，配件的 category_id 置空（SET NULL 语义）
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&catalog.SparePart{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&catalog.SparePartCategory{}, id).Error
	})
}

// ---------------- 推荐查询 ----------------

func (r *CatalogRepository) CarsInTotalPriceRange(ctx context.Context, lo, hi decimal.Decimal, excludeID int64, limit int) ([]*catalog.Car, error) {
	var list []*catalog.Car
	err := r.db.WithContext(ctx).
		Where("total_price BETWEEN ? AND ?", lo, hi).
		Where("id <> ?", excludeID).
		Order("total_price ASC").
		Order("brand DESC").
		Order("model DESC").
		Order("mileage ASC").
		Order("id ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *CatalogRepository) CarsMatchingProfile(ctx context.Context, q catalog.ProfileQuery, exclude []int64, limit int) ([]*catalog.Car, error) {
	var list []*catalog.Car

	// 画像条件之间为 OR
	grp := r.db.Session(&gorm.Session{NewDB: true}).
		Where("price BETWEEN ? AND ?", q.Price.Min, q.Price.Max).
		Or("year BETWEEN ? AND ?", q.Year.Min, q.Year.Max).
		Or("engine_volume BETWEEN ? AND ?", q.EngineVolume.Min, q.EngineVolume.Max).
		Or("mileage BETWEEN ? AND ?", q.Mileage.Min, q.Mileage.Max)
	sets := []struct {
		col  string
		vals []string
	}{
		{"brand", q.Brands},
		{"model", q.Models},
		{"fuel_type", q.FuelTypes},
		{"transmission", q.Transmissions},
		{"`condition`", q.Conditions}, // MySQL 保留字
	}
	for _, s := range sets {
		if len(s.vals) > 0 {
			grp = grp.Or(s.col+" IN ?", s.vals)
		}
	}

	query := r.db.WithContext(ctx).Where(grp)
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}
	err := query.
		Order("brand DESC").
		Order("model DESC").
		Order("price ASC").
		Order("mileage ASC").
		Order("id ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
