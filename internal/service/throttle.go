// File: internal/service/throttle.go
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"quiz-api/internal/cache"

	"github.com/redis/go-redis/v9"
)

const loginFailureKeyPrefix = "login:fail:"

// LoginThrottle 以 redis 計數每個使用者名稱的登入失敗次數
// 快取故障時一律放行，只回傳錯誤讓呼叫端記錄
type LoginThrottle struct {
	cache       cache.Cache
	maxFailures int
	window      time.Duration
}

func NewLoginThrottle(c cache.Cache, maxFailures int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{cache: c, maxFailures: maxFailures, window: window}
}

func loginFailureKey(username string) string {
	return loginFailureKeyPrefix + strings.ToLower(username)
}

// Allowed 失敗次數尚未達上限時回傳 true
func (t *LoginThrottle) Allowed(ctx context.Context, username string) (bool, error) {
	n, err := t.cache.Get(ctx, loginFailureKey(username)).Int()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return n < t.maxFailures, nil
}

// RecordFailure 累加失敗次數；第一次失敗時設定視窗過期時間
func (t *LoginThrottle) RecordFailure(ctx context.Context, username string) error {
	key := loginFailureKey(username)
	n, err := t.cache.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 1 {
		return t.cache.Expire(ctx, key, t.window).Err()
	}
	return nil
}

// Reset 登入成功後清除計數
func (t *LoginThrottle) Reset(ctx context.Context, username string) error {
	return t.cache.Del(ctx, loginFailureKey(username)).Err()
}
