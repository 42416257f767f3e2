// Package throttle ограничивает частоту запросов кода сброса пароля.
//
// Отметка о последнем запросе хранится в Redis ключом с TTL,
// поэтому ограничение общее для всех экземпляров сервера.
package throttle

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// setNXer - то, что нужно от клиента Redis.
type setNXer interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Redis - троттлинг на SET NX EX.
type Redis struct {
	rdb    setNXer
	closer func() error
	prefix string
}

// NewRedis подключается к Redis по URL (redis://:pass@host:6379/0) и проверяет соединение.
// Если prefix пустой - используется "carrental:otp:".
func NewRedis(ctx context.Context, redisURL, prefix string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return newRedis(rdb, rdb.Close, prefix), nil
}

func newRedis(rdb setNXer, closer func() error, prefix string) *Redis {
	if prefix == "" {
		prefix = "carrental:otp:"
	}
	return &Redis{rdb: rdb, closer: closer, prefix: prefix}
}

// Allow ставит ключ на interval; если ключ уже есть, действие запрещено.
func (r *Redis) Allow(ctx context.Context, key string, interval time.Duration) (bool, error) {
	return r.rdb.SetNX(ctx, r.prefix+key, time.Now().Unix(), interval).Result()
}

// Release удаляет ключ, следующий Allow по нему сразу разрешён.
func (r *Redis) Release(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.prefix+key).Err()
}

// Close закрывает клиент Redis.
func (r *Redis) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

// Noop пропускает всё; используется, когда redis выключен в конфиге.
type Noop struct{}

func (Noop) Allow(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (Noop) Release(context.Context, string) error                      { return nil }
