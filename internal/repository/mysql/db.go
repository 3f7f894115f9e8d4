package mysql

import (
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/example/carmarket/internal/config"
	"github.com/example/carmarket/internal/datamodels/about"
	"github.com/example/carmarket/internal/datamodels/catalog"
	"github.com/example/carmarket/internal/datamodels/favorite"
	"github.com/example/carmarket/internal/datamodels/notification"
	"github.com/example/carmarket/internal/datamodels/order"
	"github.com/example/carmarket/internal/datamodels/user"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init 初始化全局 GORM 实例并自动迁移表结构
func Init(cfg *config.MySQLConfig) *gorm.DB {
	once.Do(func() {
		var err error
		db, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
		if err != nil {
			zap.L().Fatal("failed to connect mysql", zap.Error(err))
		}
		if err = Migrate(db); err != nil {
			zap.L().Fatal("auto migrate failed", zap.Error(err))
		}
	})
	return db
}

// Migrate 自动迁移全部表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&user.DealerProfile{},
		&catalog.Car{},
		&catalog.SparePartCategory{},
		&catalog.SparePart{},
		&order.Order{},
		&order.OrderItem{},
		&favorite.FavoriteCar{},
		&about.Page{},
		&notification.Notification{},
	)
}

// DB 获取全局 DB
func DB() *gorm.DB {
	return db
}
