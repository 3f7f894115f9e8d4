package controllers

import (
	"github.com/kataras/iris/v12"

	"github.com/example/carmarket/internal/middleware"
	"github.com/example/carmarket/internal/service"
)

// AccountController 登录用户的订单与收藏
type AccountController struct {
	orders    *service.OrderService
	favorites *service.FavoriteService
}

func NewAccountController(orders *service.OrderService, favorites *service.FavoriteService) *AccountController {
	return &AccountController{orders: orders, favorites: favorites}
}

// Orders GET /api/orders
func (c *AccountController) Orders(ctx iris.Context) {
	list, err := c.orders.ListByUser(ctx.Request().Context(), middleware.UserID(ctx))
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, list)
}

func (c *AccountController) Favorites(ctx iris.Context) {
	cars, err := c.favorites.List(ctx.Request().Context(), middleware.UserID(ctx))
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, cars)
}

// AddFavorite POST /api/favorites/{car_id}
func (c *AccountController) AddFavorite(ctx iris.Context) {
	carID, ok := IDParam(ctx, "car_id")
	if !ok {
		return
	}
	if err := c.favorites.Add(ctx.Request().Context(), middleware.UserID(ctx), carID); err != nil {
		Fail(ctx, err)
		return
	}
	c.Favorites(ctx)
}

func (c *AccountController) RemoveFavorite(ctx iris.Context) {
	carID, ok := IDParam(ctx, "car_id")
	if !ok {
		return
	}
	if err := c.favorites.Remove(ctx.Request().Context(), middleware.UserID(ctx), carID); err != nil {
		Fail(ctx, err)
		return
	}
	c.Favorites(ctx)
}
