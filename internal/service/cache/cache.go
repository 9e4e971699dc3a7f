package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrConflict means another writer changed a watched key first.
var ErrConflict = errors.New("cache key modified concurrently")

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("redis host required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 6379
	}
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewFromClient(client, logger), nil
}

func NewFromClient(client *redis.Client, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{client: client, logger: logger}
}

func (c *CacheService) Client() *redis.Client {
	return c.client
}

func (c *CacheService) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *CacheService) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get decodes the JSON value at key into dest. A missing key leaves dest
// untouched and returns nil.
func (c *CacheService) Get(ctx context.Context, key string, dest any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *CacheService) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// UpdateFunc receives the current raw value (nil when missing) and returns the
// replacement. Returning nil bytes deletes the key.
type UpdateFunc func(raw []byte, exists bool) ([]byte, error)

// maxUpdateAttempts bounds how often Update re-runs fn after a WATCH conflict.
const maxUpdateAttempts = 3

// Update runs fn under WATCH on key and commits its result atomically. When the
// key changes between read and commit, fn runs again on the fresh value, up to
// maxUpdateAttempts times; after that Update returns ErrConflict.
func (c *CacheService) Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := c.update(ctx, key, ttl, fn)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		c.logger.Info("cache watch conflict", zap.String("key", key), zap.Int("attempt", attempt))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return ErrConflict
}

func (c *CacheService) update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error {
	return c.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		exists := true
		if errors.Is(err, redis.Nil) {
			raw, exists = nil, false
		} else if err != nil {
			return err
		}

		next, err := fn(raw, exists)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, next, ttl)
			return nil
		})
		return err
	}, key)
}
