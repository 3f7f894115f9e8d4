package controllers

import (
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/carmarket/internal/middleware"
	"github.com/example/carmarket/internal/service"
)

// CatalogController 前台目录浏览：汽车、配件、分类、推荐与关于页面
type CatalogController struct {
	catalog   *service.CatalogService
	recommend *service.RecommendService
	views     *service.ViewHistory
	about     *service.AboutService
}

func NewCatalogController(
	catalog *service.CatalogService,
	recommend *service.RecommendService,
	views *service.ViewHistory,
	about *service.AboutService,
) *CatalogController {
	return &CatalogController{catalog: catalog, recommend: recommend, views: views, about: about}
}

// ListCars GET /api/cars?category=&featured=&page=
func (c *CatalogController) ListCars(ctx iris.Context) {
	featured, _ := ctx.URLParamBool("featured")
	page, err := c.catalog.ListCars(ctx.Request().Context(), ctx.URLParam("category"), featured, intQuery(ctx, "page", 1))
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, page)
}

// GetCar GET /api/cars/{id}：记录浏览并附带相似车辆
func (c *CatalogController) GetCar(ctx iris.Context) {
	id, ok := IDParam(ctx, "id")
	if !ok {
		return
	}
	rc := ctx.Request().Context()
	car, err := c.catalog.GetCar(rc, id)
	if err != nil {
		Fail(ctx, err)
		return
	}
	if err := c.views.Record(rc, middleware.SessionID(ctx), id); err != nil {
		service.GetMonitor().RecordRedisError()
		zap.L().Warn("记录浏览历史失败", zap.Int64("car_id", id), zap.Error(err))
	}
	similar, err := c.recommend.RecommendForOne(rc, id, intQuery(ctx, "limit", 0))
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, iris.Map{"car": car, "recommendations": similar})
}

// Recommendations GET /api/recommendations：基于本会话浏览历史
func (c *CatalogController) Recommendations(ctx iris.Context) {
	rc := ctx.Request().Context()
	ids, err := c.views.IDs(rc, middleware.SessionID(ctx))
	if err != nil {
		Fail(ctx, err)
		return
	}
	cars, err := c.recommend.RecommendForMany(rc, ids, intQuery(ctx, "limit", 0))
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, cars)
}

// ListSpareParts GET /api/spareparts?category=&page=
func (c *CatalogController) ListSpareParts(ctx iris.Context) {
	categoryID := ctx.URLParamInt64Default("category", 0)
	page, err := c.catalog.ListSpareParts(ctx.Request().Context(), categoryID, intQuery(ctx, "page", 1))
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, page)
}

func (c *CatalogController) GetSparePart(ctx iris.Context) {
	id, ok := IDParam(ctx, "id")
	if !ok {
		return
	}
	p, err := c.catalog.GetSparePart(ctx.Request().Context(), id)
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, p)
}

func (c *CatalogController) ListCategories(ctx iris.Context) {
	list, err := c.catalog.ListCategories(ctx.Request().Context())
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, list)
}

// GetCategory 分类详情附带第一页配件
func (c *CatalogController) GetCategory(ctx iris.Context) {
	id, ok := IDParam(ctx, "id")
	if !ok {
		return
	}
	rc := ctx.Request().Context()
	cat, err := c.catalog.GetCategory(rc, id)
	if err != nil {
		Fail(ctx, err)
		return
	}
	parts, err := c.catalog.ListSpareParts(rc, id, intQuery(ctx, "page", 1))
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, iris.Map{"category": cat, "spare_parts": parts})
}

func (c *CatalogController) About(ctx iris.Context) {
	p, err := c.about.Get(ctx.Request().Context())
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, p)
}
