package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Redis shares cached values between api and admin processes.
type Redis struct {
	RDB    *redis.Client
	TTL    time.Duration
	Prefix string
	sf     singleflight.Group
}

func NewRedis(addr, pass string, db int, ttl time.Duration) *Redis {
	return &Redis{
		RDB:    redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		TTL:    ttl,
		Prefix: "docuisine:",
	}
}

func (c *Redis) GetOrLoad(ctx context.Context, key string, load LoadFunc) ([]byte, error) {
	k := c.Prefix + key
	if b, err := c.RDB.Get(ctx, k).Bytes(); err == nil {
		return b, nil
	}
	v, err, _ := c.sf.Do(k, func() (any, error) {
		b, err := load(ctx)
		if err != nil {
			return nil, err
		}
		// a failed write only costs a reload
		_ = c.RDB.Set(ctx, k, b, c.TTL).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Redis) Close() error { return c.RDB.Close() }
