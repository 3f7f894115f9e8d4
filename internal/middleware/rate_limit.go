package middleware

import (
	"sync"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/example/carmarket/internal/config"
)

// TokenBucket 令牌桶限流器
type TokenBucket struct {
	capacity   int64      // 桶容量
	tokens     int64      // 当前令牌数
	refillRate int64      // 每秒补充的令牌数
	lastRefill time.Time  // 上次补充时间
	mu         sync.Mutex // 互斥锁
	now        func() time.Time
}

// NewTokenBucket 创建令牌桶
func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// Allow 检查是否允许请求
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	// 按整秒补充令牌，不足一秒的部分留到下次
	now := tb.now()
	secs := int64(now.Sub(tb.lastRefill) / time.Second)
	if secs > 0 {
		tb.tokens += secs * tb.refillRate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = tb.lastRefill.Add(time.Duration(secs) * time.Second)
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimitMiddleware 限流中间件
func RateLimitMiddleware(bucket *TokenBucket) iris.Handler {
	return func(ctx iris.Context) {
		if !bucket.Allow() {
			ctx.StopWithJSON(iris.StatusTooManyRequests, iris.Map{
				"code": iris.StatusTooManyRequests,
				"msg":  "too many requests, try again later",
			})
			return
		}
		ctx.Next()
	}
}

// CheckoutRateLimit 下单接口限流，每个进程一个桶
func CheckoutRateLimit(cfg *config.CheckoutConfig) iris.Handler {
	capacity, refill := cfg.RateCapacity, cfg.RateRefill
	if capacity <= 0 {
		capacity = 10
	}
	if refill <= 0 {
		refill = 5
	}
	return RateLimitMiddleware(NewTokenBucket(capacity, refill))
}
