package server

import (
	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"

	"github.com/example/carmarket/internal/config"
	"github.com/example/carmarket/internal/datamodels/about"
	"github.com/example/carmarket/internal/datamodels/catalog"
	"github.com/example/carmarket/internal/middleware"
	"github.com/example/carmarket/internal/service"
	webcontrollers "github.com/example/carmarket/web/controllers"
)

// RegisterAdminRoutes 注册经销商后台的 HTTP 路由
// 端口通常是 8081，与前台 Web 服务分离；除登录外都要求 dealer 角色。
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config, d *Deps) {
	userCtrl := webcontrollers.NewUserController(d.Users)

	app.Party("/api").Post("/login", userCtrl.Login)

	api := app.Party("/api", middleware.Auth(&cfg.JWT, d.Revocations), middleware.DealerOnly)

	api.Get("/me", userCtrl.Me)
	api.Put("/me/dealer", userCtrl.UpdateDealerProfile)

	// 运行统计
	api.Get("/stats", func(ctx iris.Context) {
		webcontrollers.OK(ctx, service.GetMonitor().GetStats())
	})

	// 在本经销商处下过单的买家
	api.Get("/users", func(ctx iris.Context) {
		rc := ctx.Request().Context()
		ids, err := d.Orders.BuyerIDsForDealer(rc, middleware.UserID(ctx))
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		list, err := d.Users.ListByIDs(rc, ids)
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, list)
	})

	// ---------- 汽车 ----------

	api.Get("/cars", func(ctx iris.Context) {
		featured, _ := ctx.URLParamBool("featured")
		page, err := d.Catalog.ListCars(ctx.Request().Context(), ctx.URLParam("category"), featured, ctx.URLParamIntDefault("page", 1))
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, page)
	})

	api.Post("/cars", func(ctx iris.Context) {
		var req carRequest
		if err := ctx.ReadJSON(&req); err != nil {
			webcontrollers.BadRequest(ctx, err.Error())
			return
		}
		c := &catalog.Car{}
		req.applyTo(c)
		if err := d.Catalog.CreateCar(ctx.Request().Context(), middleware.UserID(ctx), c); err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		webcontrollers.OK(ctx, c)
	})

	api.Put("/cars/{id:int64}", func(ctx iris.Context) {
		id, ok := webcontrollers.IDParam(ctx, "id")
		if !ok {
			return
		}
		c, err := d.Catalog.GetCar(ctx.Request().Context(), id)
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		var req carRequest
		if err := ctx.ReadJSON(&req); err != nil {
			webcontrollers.BadRequest(ctx, err.Error())
			return
		}
		req.applyTo(c)
		if err := d.Catalog.UpdateCar(ctx.Request().Context(), middleware.UserID(ctx), c); err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, c)
	})

	api.Delete("/cars/{id:int64}", func(ctx iris.Context) {
		id, ok := webcontrollers.IDParam(ctx, "id")
		if !ok {
			return
		}
		if err := d.Catalog.DeleteCar(ctx.Request().Context(), middleware.UserID(ctx), id); err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, iris.Map{"id": id})
	})

	// ---------- 配件与分类 ----------

	api.Get("/spareparts", func(ctx iris.Context) {
		page, err := d.Catalog.ListSpareParts(ctx.Request().Context(),
			ctx.URLParamInt64Default("category", 0), ctx.URLParamIntDefault("page", 1))
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, page)
	})

	api.Post("/spareparts", func(ctx iris.Context) {
		var req sparePartRequest
		if err := ctx.ReadJSON(&req); err != nil {
			webcontrollers.BadRequest(ctx, err.Error())
			return
		}
		p := &catalog.SparePart{}
		req.applyTo(p)
		if err := d.Catalog.CreateSparePart(ctx.Request().Context(), middleware.UserID(ctx), p); err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		webcontrollers.OK(ctx, p)
	})

	api.Put("/spareparts/{id:int64}", func(ctx iris.Context) {
		id, ok := webcontrollers.IDParam(ctx, "id")
		if !ok {
			return
		}
		p, err := d.Catalog.GetSparePart(ctx.Request().Context(), id)
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		var req sparePartRequest
		if err := ctx.ReadJSON(&req); err != nil {
			webcontrollers.BadRequest(ctx, err.Error())
			return
		}
		req.applyTo(p)
		if err := d.Catalog.UpdateSparePart(ctx.Request().Context(), middleware.UserID(ctx), p); err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, p)
	})

	api.Delete("/spareparts/{id:int64}", func(ctx iris.Context) {
		id, ok := webcontrollers.IDParam(ctx, "id")
		if !ok {
			return
		}
		if err := d.Catalog.DeleteSparePart(ctx.Request().Context(), middleware.UserID(ctx), id); err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, iris.Map{"id": id})
	})

	api.Get("/categories", func(ctx iris.Context) {
		list, err := d.Catalog.ListCategories(ctx.Request().Context())
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, list)
	})

	api.Post("/categories", func(ctx iris.Context) {
		var c catalog.SparePartCategory
		if err := ctx.ReadJSON(&c); err != nil {
			webcontrollers.BadRequest(ctx, err.Error())
			return
		}
		if err := d.Catalog.CreateCategory(ctx.Request().Context(), &c); err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		webcontrollers.OK(ctx, c)
	})

	api.Delete("/categories/{id:int64}", func(ctx iris.Context) {
		id, ok := webcontrollers.IDParam(ctx, "id")
		if !ok {
			return
		}
		if err := d.Catalog.DeleteCategory(ctx.Request().Context(), id); err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, iris.Map{"id": id})
	})

	// ---------- 订单 ----------

	// 订单只按当前经销商的商品过滤
	api.Get("/orders", func(ctx iris.Context) {
		list, err := d.Orders.ListForDealer(ctx.Request().Context(), middleware.UserID(ctx), 0, ctx.URLParamIntDefault("limit", 20))
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, list)
	})

	api.Get("/orders/{id:int64}", func(ctx iris.Context) {
		id, ok := webcontrollers.IDParam(ctx, "id")
		if !ok {
			return
		}
		o, err := d.Orders.GetForDealer(ctx.Request().Context(), middleware.UserID(ctx), id)
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, o)
	})

	api.Post("/orders/{id:int64}/confirm", func(ctx iris.Context) {
		id, ok := webcontrollers.IDParam(ctx, "id")
		if !ok {
			return
		}
		o, err := d.Orders.Confirm(ctx.Request().Context(), middleware.UserID(ctx), id)
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, o)
	})

	api.Get("/users/{id:int64}/orders", func(ctx iris.Context) {
		uid, ok := webcontrollers.IDParam(ctx, "id")
		if !ok {
			return
		}
		list, err := d.Orders.ListForDealer(ctx.Request().Context(), middleware.UserID(ctx), uid, ctx.URLParamIntDefault("limit", 20))
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, list)
	})

	// ---------- 通知与关于页面 ----------

	api.Get("/notifications", func(ctx iris.Context) {
		list, err := d.Notifications.ListForDealer(ctx.Request().Context(), middleware.UserID(ctx), ctx.URLParamIntDefault("limit", 50))
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, list)
	})

	api.Get("/about", func(ctx iris.Context) {
		p, err := d.About.Get(ctx.Request().Context())
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, p)
	})

	api.Put("/about", func(ctx iris.Context) {
		var p about.Page
		if err := ctx.ReadJSON(&p); err != nil {
			webcontrollers.BadRequest(ctx, err.Error())
			return
		}
		saved, err := d.About.Save(ctx.Request().Context(), &p)
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, saved)
	})
}

// ---- 辅助结构 ----

type carRequest struct {
	Category           string          `json:"category"`
	Featured           bool            `json:"featured"`
	Brand              string          `json:"brand"`
	Model              string          `json:"model"`
	Year               int             `json:"year"`
	FuelType           string          `json:"fuel_type"`
	Transmission       string          `json:"transmission"`
	EngineVolume       decimal.Decimal `json:"engine_volume"`
	Price              decimal.Decimal `json:"price"`
	CustomsTaxEstimate decimal.Decimal `json:"customs_tax_estimate"`
	IsNegotiable       bool            `json:"is_negotiable"`
	Condition          string          `json:"condition"`
	Mileage            int64           `json:"mileage"`
	Description        string          `json:"description"`
}

// applyTo 总价不从请求读取，保存时重算
func (r *carRequest) applyTo(c *catalog.Car) {
	c.Category = r.Category
	c.Featured = r.Featured
	c.Brand = r.Brand
	c.Model = r.Model
	c.Year = r.Year
	c.FuelType = r.FuelType
	c.Transmission = r.Transmission
	c.EngineVolume = r.EngineVolume
	c.Price = r.Price
	c.CustomsTaxEstimate = r.CustomsTaxEstimate
	c.IsNegotiable = r.IsNegotiable
	c.Condition = r.Condition
	c.Mileage = r.Mileage
	c.Description = r.Description
}

type sparePartRequest struct {
	CategoryID   *int64          `json:"category_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	IsNegotiable bool            `json:"is_negotiable"`
	InStock      bool            `json:"in_stock"`
	Quantity     int64           `json:"quantity"`
	Description  string          `json:"description"`
}

func (r *sparePartRequest) applyTo(p *catalog.SparePart) {
	p.CategoryID = r.CategoryID
	p.Name = r.Name
	p.Price = r.Price
	p.IsNegotiable = r.IsNegotiable
	p.InStock = r.InStock
	p.Quantity = r.Quantity
	p.Description = r.Description
}
