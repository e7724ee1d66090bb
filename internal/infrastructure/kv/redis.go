package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore implementación del almacén sobre Redis. Es la opción para
// despliegues con más de una réplica: SetNX e INCR son atómicos a nivel
// del servidor, no del proceso.
type RedisStore struct {
	client redis.Cmdable
	closer interface{ Close() error }
}

// NewRedisStore conecta a Redis y verifica la conexión.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client, closer: client}, nil
}

// GetInt64 devuelve el valor numérico de la clave; ok=false si no existe.
func (r *RedisStore) GetInt64(ctx context.Context, key string) (int64, bool, error) {
	val, err := r.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get %s: %w", key, err)
	}
	return val, true, nil
}

// SetInt64 fija un valor numérico con TTL.
func (r *RedisStore) SetInt64(ctx context.Context, key string, value int64, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// SetNX fija el valor solo si la clave no existe (operación atómica en Redis).
func (r *RedisStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", key, err)
	}
	return ok, nil
}

// Incr incrementa el contador; si la clave acaba de crearse le fija el TTL.
func (r *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	val, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	if val == 1 {
		_ = r.client.Expire(ctx, key, ttl).Err()
	}
	return val, nil
}

// Del elimina claves.
func (r *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("del: %w", err)
	}
	return nil
}

// Ping verifica la conexión.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close cierra la conexión.
func (r *RedisStore) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
