package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	radix "github.com/mediocregopher/radix/v3"
)

var ErrLocked = errors.New("lock is held by another request")

// 只有持有者才能释放
var unlockScript = radix.NewEvalScript(1, `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker Redis 互斥锁（SET NX PX），用于跨进程串行化同一会话的下单
type Locker struct {
	redis radix.Client
}

// NewLocker 创建锁
func NewLocker(redis radix.Client) *Locker {
	return &Locker{redis: redis}
}

// Lock 尝试加锁，失败立即返回 ErrLocked；返回的 unlock 可重复调用
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	var reply string
	mn := radix.MaybeNil{Rcv: &reply}
	if err := l.redis.Do(radix.FlatCmd(&mn, "SET", key, token, "NX", "PX", ttl.Milliseconds())); err != nil {
		return nil, err
	}
	if mn.Nil {
		return nil, ErrLocked
	}
	unlock := func() {
		_ = l.redis.Do(unlockScript.Cmd(nil, key, token))
	}
	return unlock, nil
}
