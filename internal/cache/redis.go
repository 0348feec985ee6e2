package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/gamerfeeds/internal/models"
)

// maxApplyRetries — сколько раз повторять WATCH-транзакцию при конфликте.
const maxApplyRetries = 3

// Redis — кэш веток в Redis. Значение — JSON леса, ключ — prefix + "type:id".
type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "gamerfeeds:thread:".
func NewRedis(ctx context.Context, redisURL, prefix string, ttl time.Duration) (*Redis, error) {
	if prefix == "" {
		prefix = "gamerfeeds:thread:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}

	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl}, nil
}

func (c *Redis) key(target models.Target) string { return c.prefix + target.String() }

// genKey — счётчик поколения ветки (INCR при каждом изменении).
func (c *Redis) genKey(target models.Target) string { return c.key(target) + ":gen" }

// errGenerationChanged прерывает Fill, если ветку изменили после чтения поколения.
var errGenerationChanged = errors.New("cache: generation changed")

func (c *Redis) Get(ctx context.Context, target models.Target) (models.Forest, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(target)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var f models.Forest
	if err := json.Unmarshal(raw, &f); err != nil {
		// Битое значение — то же, что промах.
		_ = c.rdb.Del(ctx, c.key(target)).Err()
		return nil, false, nil
	}

	return f, true, nil
}

func (c *Redis) Set(ctx context.Context, target models.Target, forest models.Forest) error {
	data, err := json.Marshal(forest)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, c.key(target), data, c.ttl).Err()
}

func (c *Redis) Generation(ctx context.Context, target models.Target) (uint64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey(target)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return gen, nil
}

// Fill записывает лес под WATCH счётчика поколения: конкурентный Apply/Invalidate
// между Generation и Fill отменяет запись.
func (c *Redis) Fill(ctx context.Context, target models.Target, forest models.Forest, gen uint64) (bool, error) {
	data, err := json.Marshal(forest)
	if err != nil {
		return false, err
	}

	genKey := c.genKey(target)

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Uint64()
		switch {
		case errors.Is(err, redis.Nil):
			cur = 0
		case err != nil:
			return err
		}

		if cur != gen {
			return errGenerationChanged
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(target), data, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errGenerationChanged), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, err
	}
}

// bumpGen добавляет в pipeline увеличение поколения ветки.
func (c *Redis) bumpGen(ctx context.Context, pipe redis.Pipeliner, target models.Target) {
	genKey := c.genKey(target)
	pipe.Incr(ctx, genKey)
	if c.ttl > 0 {
		pipe.Expire(ctx, genKey, c.ttl)
	}
}

// applyError отделяет ошибку синхронизатора от ошибок Redis внутри транзакции.
type applyError struct{ err error }

func (e *applyError) Error() string { return e.err.Error() }
func (e *applyError) Unwrap() error { return e.err }

// Apply читает лес под WATCH, применяет fn и записывает результат, сохраняя остаток TTL.
// Поколение ветки увеличивается всегда, даже если ветки в кэше нет.
// Конкурентная запись в тот же ключ приводит к повтору; после maxApplyRetries
// ключ удаляется и возвращается ErrContention.
func (c *Redis) Apply(ctx context.Context, target models.Target, fn ApplyFunc) error {
	key := c.key(target)

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				c.bumpGen(ctx, pipe, target)
				return nil
			})
			return err
		}
		if err != nil {
			return err
		}

		var f models.Forest
		if err := json.Unmarshal(raw, &f); err != nil {
			return &applyError{err: fmt.Errorf("decode cached forest: %w", err)}
		}

		next, err := fn(f)
		if err != nil {
			return &applyError{err: err}
		}

		data, err := json.Marshal(next)
		if err != nil {
			return &applyError{err: err}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, data, redis.SetArgs{KeepTTL: true})
			c.bumpGen(ctx, pipe, target)
			return nil
		})
		return err
	}

	for i := 0; i < maxApplyRetries; i++ {
		err := c.rdb.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		_ = c.Invalidate(ctx, target)

		var ae *applyError
		if errors.As(err, &ae) {
			return ae.err
		}
		return err
	}

	_ = c.Invalidate(ctx, target)
	return ErrContention
}

func (c *Redis) Invalidate(ctx context.Context, target models.Target) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key(target))
		c.bumpGen(ctx, pipe, target)
		return nil
	})
	return err
}

func (c *Redis) Close() error { return c.rdb.Close() }
