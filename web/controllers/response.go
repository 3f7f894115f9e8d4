package controllers

import (
	"errors"
	"strconv"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/carmarket/internal/service"
	"github.com/example/carmarket/internal/session"
)

// OK 统一成功响应
func OK(ctx iris.Context, data interface{}) {
	ctx.JSON(iris.Map{"code": 0, "msg": "ok", "data": data})
}

// Fail 按业务错误映射 HTTP 状态码
func Fail(ctx iris.Context, err error) {
	code := StatusOf(err)
	if code == iris.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", ctx.Path()),
			zap.String("method", ctx.Method()),
			zap.Error(err))
		ctx.StopWithJSON(code, iris.Map{"code": code, "msg": "internal error"})
		return
	}
	ctx.StopWithJSON(code, iris.Map{"code": code, "msg": err.Error()})
}

// BadRequest 请求体或参数无法解析
func BadRequest(ctx iris.Context, msg string) {
	ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"code": iris.StatusBadRequest, "msg": msg})
}

func StatusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidProductType),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, session.ErrNoSession):
		return iris.StatusBadRequest
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrNotFound):
		return iris.StatusNotFound
	case errors.Is(err, service.ErrCheckoutInProgress):
		return iris.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return iris.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return iris.StatusForbidden
	}
	return iris.StatusInternalServerError
}

// IDParam 读取路径中的 {id:int64}
func IDParam(ctx iris.Context, name string) (int64, bool) {
	id, err := ctx.Params().GetInt64(name)
	if err != nil || id <= 0 {
		BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return id, true
}

func intQuery(ctx iris.Context, name string, def int) int {
	v := ctx.URLParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
