package middleware

import (
	"strings"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/carmarket/internal/auth"
	"github.com/example/carmarket/internal/config"
	"github.com/example/carmarket/internal/datamodels/user"
)

// ctx.Values() 中的键
const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyRole     = "role"
)

// BearerToken 依次从 Authorization 头（可带 Bearer 前缀）和 token cookie 取令牌
func BearerToken(ctx iris.Context) string {
	if h := strings.TrimSpace(ctx.GetHeader("Authorization")); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return h
	}
	return ctx.GetCookie("token")
}

// Auth 要求合法且未注销的 JWT，并把用户信息写入 ctx.Values()；revoked 可为 nil
func Auth(cfg *config.JWTConfig, revoked *auth.Revocations) iris.Handler {
	return func(ctx iris.Context) {
		token := BearerToken(ctx)
		if token == "" {
			ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"code": iris.StatusUnauthorized, "msg": "missing token"})
			return
		}
		claims, err := auth.ParseToken(cfg, token)
		if err != nil {
			ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"code": iris.StatusUnauthorized, "msg": "invalid token"})
			return
		}
		// Redis 不可用时放行，只记日志
		if isRevoked, err := revoked.IsRevoked(ctx.Request().Context(), token); err != nil {
			zap.L().Warn("check token revocation failed", zap.Error(err))
		} else if isRevoked {
			ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"code": iris.StatusUnauthorized, "msg": "token revoked"})
			return
		}
		ctx.Values().Set(KeyUserID, claims.UserID)
		ctx.Values().Set(KeyUsername, claims.Username)
		ctx.Values().Set(KeyRole, claims.Role)
		ctx.Next()
	}
}

// DealerOnly 必须挂在 Auth 之后
func DealerOnly(ctx iris.Context) {
	if ctx.Values().GetString(KeyRole) != user.RoleDealer {
		ctx.StopWithJSON(iris.StatusForbidden, iris.Map{"code": iris.StatusForbidden, "msg": "dealer role required"})
		return
	}
	ctx.Next()
}

// UserID 取当前登录用户 id，未登录为 0
func UserID(ctx iris.Context) int64 {
	return ctx.Values().GetInt64Default(KeyUserID, 0)
}
