package server

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"

	"github.com/example/carmarket/internal/config"
	"github.com/example/carmarket/internal/middleware"
	webcontrollers "github.com/example/carmarket/web/controllers"
)

// RegisterRoutes 注册前台 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config, d *Deps) {
	sess := sessions.New(sessions.Config{
		Cookie:  cfg.Session.Cookie,
		Expires: cfg.Session.TTL(),
	})

	userCtrl := webcontrollers.NewUserController(d.Users)
	catalogCtrl := webcontrollers.NewCatalogController(d.Catalog, d.Recommend, d.Views, d.About)
	cartCtrl := webcontrollers.NewCartController(d.Cart, d.Checkout)
	accountCtrl := webcontrollers.NewAccountController(d.Orders, d.Favorites)

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{
			"code": 0,
			"msg":  "ok",
		})
	})

	api.Post("/register", userCtrl.Register)
	api.Post("/login", userCtrl.Login)
	api.Post("/logout", userCtrl.Logout)

	// 目录浏览（不需要登录）
	api.Get("/cars", catalogCtrl.ListCars)
	api.Get("/spareparts", catalogCtrl.ListSpareParts)
	api.Get("/spareparts/{id:int64}", catalogCtrl.GetSparePart)
	api.Get("/categories", catalogCtrl.ListCategories)
	api.Get("/categories/{id:int64}", catalogCtrl.GetCategory)
	api.Get("/about", catalogCtrl.About)

	// 依赖浏览器会话的接口
	withSession := api.Party("/", middleware.Session(sess))
	withSession.Get("/cars/{id:int64}", catalogCtrl.GetCar)
	withSession.Get("/recommendations", catalogCtrl.Recommendations)
	withSession.Get("/cart", cartCtrl.List)
	withSession.Post("/cart/{type:string}/{id:int64}", cartCtrl.Add)
	withSession.Delete("/cart/{type:string}/{id:int64}", cartCtrl.Remove)

	// 需要登录的接口
	authAPI := api.Party("/", middleware.Auth(&cfg.JWT, d.Revocations))
	authAPI.Get("/me", userCtrl.Me)
	authAPI.Get("/orders", accountCtrl.Orders)
	authAPI.Get("/favorites", accountCtrl.Favorites)
	authAPI.Post("/favorites/{car_id:int64}", accountCtrl.AddFavorite)
	authAPI.Delete("/favorites/{car_id:int64}", accountCtrl.RemoveFavorite)
	authAPI.Post("/checkout",
		middleware.Session(sess),
		middleware.CheckoutRateLimit(&cfg.Checkout),
		cartCtrl.Checkout,
	)
}
