package controllers

import (
	"net/http"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/example/carmarket/internal/middleware"
	"github.com/example/carmarket/internal/service"
)

// UserController 注册、登录与个人资料
type UserController struct {
	userService *service.UserService
}

// NewUserController 构造函数，供前台与后台路由复用同一套逻辑。
func NewUserController(userSvc *service.UserService) *UserController {
	return &UserController{userService: userSvc}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register POST /api/register
func (c *UserController) Register(ctx iris.Context) {
	var req registerRequest
	if err := ctx.ReadJSON(&req); err != nil {
		BadRequest(ctx, err.Error())
		return
	}
	u, err := c.userService.Register(ctx.Request().Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		Fail(ctx, err)
		return
	}
	ctx.StatusCode(iris.StatusCreated)
	OK(ctx, u)
}

// Login POST /api/login，成功后同时写 token cookie
func (c *UserController) Login(ctx iris.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		BadRequest(ctx, err.Error())
		return
	}
	token, u, err := c.userService.Login(ctx.Request().Context(), req.Username, req.Password)
	if err != nil {
		Fail(ctx, err)
		return
	}
	ctx.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	OK(ctx, iris.Map{"token": token, "user": u})
}

// Logout 注销当前令牌并清理 cookie
func (c *UserController) Logout(ctx iris.Context) {
	if err := c.userService.Logout(ctx.Request().Context(), middleware.BearerToken(ctx)); err != nil {
		Fail(ctx, err)
		return
	}
	ctx.SetCookie(&http.Cookie{
		Name:    "token",
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
	OK(ctx, nil)
}

// Me 当前用户，经销商附带公司资料
func (c *UserController) Me(ctx iris.Context) {
	rc := ctx.Request().Context()
	u, err := c.userService.Get(rc, middleware.UserID(ctx))
	if err != nil {
		Fail(ctx, err)
		return
	}
	if !u.IsDealer() {
		OK(ctx, iris.Map{"user": u})
		return
	}
	p, err := c.userService.DealerProfile(rc, u.ID)
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, iris.Map{"user": u, "dealer_profile": p})
}

// UpdateDealerProfile PUT /api/me/dealer
func (c *UserController) UpdateDealerProfile(ctx iris.Context) {
	var req struct {
		CompanyName string `json:"company_name"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		BadRequest(ctx, err.Error())
		return
	}
	p, err := c.userService.UpdateDealerProfile(ctx.Request().Context(), middleware.UserID(ctx), req.CompanyName, req.PhoneNumber)
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, p)
}
