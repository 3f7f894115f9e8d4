package controllers

import (
	"github.com/kataras/iris/v12"

	"github.com/example/carmarket/internal/middleware"
	"github.com/example/carmarket/internal/service"
)

// CartController 会话购物车与结算
type CartController struct {
	cart     *service.CartService
	checkout *service.CheckoutService
}

func NewCartController(cart *service.CartService, checkout *service.CheckoutService) *CartController {
	return &CartController{cart: cart, checkout: checkout}
}

// Add POST /api/cart/{type}/{id}
func (c *CartController) Add(ctx iris.Context) {
	id, ok := IDParam(ctx, "id")
	if !ok {
		return
	}
	sid := middleware.SessionID(ctx)
	if err := c.cart.Add(ctx.Request().Context(), sid, ctx.Params().Get("type"), id); err != nil {
		Fail(ctx, err)
		return
	}
	c.List(ctx)
}

// Remove DELETE /api/cart/{type}/{id}
func (c *CartController) Remove(ctx iris.Context) {
	id, ok := IDParam(ctx, "id")
	if !ok {
		return
	}
	sid := middleware.SessionID(ctx)
	if err := c.cart.Remove(ctx.Request().Context(), sid, ctx.Params().Get("type"), id); err != nil {
		Fail(ctx, err)
		return
	}
	c.List(ctx)
}

// List GET /api/cart
func (c *CartController) List(ctx iris.Context) {
	view, err := c.cart.List(ctx.Request().Context(), middleware.SessionID(ctx))
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, view)
}

type checkoutRequest struct {
	BuyerNumber    string `json:"buyer_number"`
	Notes          string `json:"notes"`
	IdempotencyKey string `json:"idempotency_key"`
}

// Checkout POST /api/checkout；幂等键可放在 Idempotency-Key 头或请求体
func (c *CartController) Checkout(ctx iris.Context) {
	var req checkoutRequest
	if err := ctx.ReadJSON(&req); err != nil {
		BadRequest(ctx, err.Error())
		return
	}
	key := ctx.GetHeader("Idempotency-Key")
	if key == "" {
		key = req.IdempotencyKey
	}
	res, err := c.checkout.Finalize(ctx.Request().Context(), service.CheckoutRequest{
		SessionID:      middleware.SessionID(ctx),
		UserID:         middleware.UserID(ctx),
		BuyerNumber:    req.BuyerNumber,
		Notes:          req.Notes,
		IdempotencyKey: key,
	})
	if err != nil {
		Fail(ctx, err)
		return
	}
	if !res.Duplicate {
		ctx.StatusCode(iris.StatusCreated)
	}
	OK(ctx, res)
}
