package server

import (
	radix "github.com/mediocregopher/radix/v3"
	"gorm.io/gorm"

	"github.com/example/carmarket/internal/auth"
	"github.com/example/carmarket/internal/config"
	"github.com/example/carmarket/internal/repository/mysql"
	"github.com/example/carmarket/internal/service"
	"github.com/example/carmarket/internal/session"
)

// Deps 两个 HTTP 服务共用的服务集合
type Deps struct {
	Cart          *service.CartService
	Checkout      *service.CheckoutService
	Recommend     *service.RecommendService
	Views         *service.ViewHistory
	Users         *service.UserService
	Catalog       *service.CatalogService
	Favorites     *service.FavoriteService
	About         *service.AboutService
	Orders        *service.OrderService
	Notifications *service.NotificationService
	Revocations   *auth.Revocations
}

// NewDeps 组装仓储与服务；events 为 nil 时不投递订单事件
func NewDeps(db *gorm.DB, redisClient radix.Client, events service.EventPublisher, cfg *config.Config) *Deps {
	catalogRepo := mysql.NewCatalogRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	userRepo := mysql.NewUserRepository(db)

	revoked := auth.NewRevocations(redisClient)
	store := session.NewStore(redisClient, cfg.Session.TTL())
	locker := session.NewLocker(redisClient)
	cart := service.NewCartService(store, catalogRepo, locker)

	return &Deps{
		Cart:          cart,
		Checkout:      service.NewCheckoutService(db, cart, orderRepo, locker, events, &cfg.Checkout),
		Recommend:     service.NewRecommendService(catalogRepo),
		Views:         service.NewViewHistory(store),
		Users:         service.NewUserService(userRepo, &cfg.JWT, revoked),
		Catalog:       service.NewCatalogService(catalogRepo),
		Favorites:     service.NewFavoriteService(mysql.NewFavoriteRepository(db), catalogRepo),
		About:         service.NewAboutService(mysql.NewAboutRepository(db)),
		Orders:        service.NewOrderService(orderRepo),
		Notifications: service.NewNotificationService(mysql.NewNotificationRepository(db)),
		Revocations:   revoked,
	}
}
