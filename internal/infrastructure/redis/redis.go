package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/afisha-events/afisha/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// View counts move slowly compared to how often public listings are
// requested, so a short TTL keeps the stats service off the hot path.
const viewsTTL = 2 * time.Minute

type Cache struct {
	Client *redis.Client
}

func New(addr, pass string, db int) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr, Password: pass, DB: db,
	})
	return &Cache{Client: rdb}
}

func (c *Cache) GetEventViews(ctx context.Context, eventID uuid.UUID) (int64, error) {
	val, err := c.Client.Get(ctx, "event:views:"+eventID.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrCacheMiss
		}
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

func (c *Cache) SetEventViews(ctx context.Context, eventID uuid.UUID, views int64) error {
	return c.Client.Set(ctx, "event:views:"+eventID.String(), views, viewsTTL).Err()
}
