package middleware

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
)

const KeySessionID = "session_id"

// Session 通过 cookie 维持浏览器会话 id，购物车等数据另存 Redis
func Session(sess *sessions.Sessions) iris.Handler {
	return func(ctx iris.Context) {
		s := sess.Start(ctx)
		ctx.Values().Set(KeySessionID, s.ID())
		ctx.Next()
	}
}

func SessionID(ctx iris.Context) string {
	return ctx.Values().GetString(KeySessionID)
}
