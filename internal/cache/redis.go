package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ccrew/flightinventory/config"
	"github.com/ccrew/flightinventory/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps one-way search results for a short TTL. Bookings and
// cancellations are not written through; the TTL bounds how stale an offer
// can get, and the reservation commit re-validates availability anyway.
type RedisCache struct {
	client    *redis.Client
	offersTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, offersTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		offersTTL: offersTTL,
	}
}

func (c *RedisCache) GetOneWayOffers(ctx context.Context, originCity, destinationCity string, date time.Time) ([]domain.OneWayOffer, error) {
	data, err := c.client.Get(ctx, offersKey(originCity, destinationCity, date)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var offers []domain.OneWayOffer
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

func (c *RedisCache) SetOneWayOffers(ctx context.Context, originCity, destinationCity string, date time.Time, offers []domain.OneWayOffer) error {
	payload, err := json.Marshal(offers)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, offersKey(originCity, destinationCity, date), payload, c.offersTTL).Err()
}

func offersKey(originCity, destinationCity string, date time.Time) string {
	return fmt.Sprintf("cache:oneway:%s:%s:%s", originCity, destinationCity, date.Format("2006-01-02"))
}
