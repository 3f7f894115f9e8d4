package auth

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

const revokedKey = "carmarket:jwt:revoked:"

// Revocations 已注销 JWT 的黑名单，条目在令牌本身过期时一并过期
type Revocations struct {
	redis radix.Client
	now   func() time.Time
}

func NewRevocations(redis radix.Client) *Revocations {
	return &Revocations{redis: redis, now: time.Now}
}

func (r *Revocations) key(token string) string {
	sum := sha1.Sum([]byte(token))
	return revokedKey + hex.EncodeToString(sum[:])
}

// Revoke 拉黑令牌；已过期的令牌无需记录
func (r *Revocations) Revoke(ctx context.Context, token string, claims *Claims) error {
	if r == nil || r.redis == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.redis.Do(radix.FlatCmd(nil, "SET", r.key(token), claims.UserID, "PX", ttl.Milliseconds()))
}

// IsRevoked 令牌是否已注销
func (r *Revocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	if r == nil || r.redis == nil {
		return false, nil
	}
	var n int
	if err := r.redis.Do(radix.Cmd(&n, "EXISTS", r.key(token))); err != nil {
		return false, err
	}
	return n > 0, nil
}
