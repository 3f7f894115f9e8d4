// Package session 把会话数据保存在 Redis 中，按浏览器会话 id 分片。
// 每个会话一个 hash：carmarket:session:<sid>，字段为业务 key（cart、viewed），值为 JSON。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

const keyPattern = "carmarket:session:%s"

var ErrNoSession = errors.New("empty session id")

// Store 基于 Redis hash 的会话存储，写入时刷新过期时间
type Store struct {
	redis radix.Client
	ttl   time.Duration
}

// NewStore 创建会话存储
func NewStore(redis radix.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{redis: redis, ttl: ttl}
}

func sessionKey(sid string) string {
	return fmt.Sprintf(keyPattern, sid)
}

// Get 读取字段并解码到 dst，字段不存在时返回 false
func (s *Store) Get(ctx context.Context, sid, field string, dst any) (bool, error) {
	if sid == "" {
		return false, ErrNoSession
	}
	var raw []byte
	mn := radix.MaybeNil{Rcv: &raw}
	if err := s.redis.Do(radix.Cmd(&mn, "HGET", sessionKey(sid), field)); err != nil {
		return false, err
	}
	if mn.Nil || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode session field %s: %w", field, err)
	}
	return true, nil
}

// Set 编码并写入字段，同时滑动续期整个会话
func (s *Store) Set(ctx context.Context, sid, field string, v any) error {
	if sid == "" {
		return ErrNoSession
	}
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	key := sessionKey(sid)
	return s.redis.Do(radix.Pipeline(
		radix.FlatCmd(nil, "HSET", key, field, body),
		radix.FlatCmd(nil, "EXPIRE", key, int64(s.ttl/time.Second)),
	))
}

// Clear 删除字段，字段不存在也视为成功
func (s *Store) Clear(ctx context.Context, sid, field string) error {
	if sid == "" {
		return ErrNoSession
	}
	return s.redis.Do(radix.Cmd(nil, "HDEL", sessionKey(sid), field))
}
