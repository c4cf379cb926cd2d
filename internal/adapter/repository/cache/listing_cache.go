package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const allListingsKey = "listings:all"

func listingKey(id string) string {
	return "listing:" + id
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, addr, password string, db int, log *logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Error("Failed to connect to Redis", zap.String("address", addr), zap.Error(err))
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	log.Info("Successfully connected to Redis", zap.String("address", addr))
	return rdb, nil
}

// ListingRepository is a read-through cache in front of another repository. Writes go
// to the backing store first and then invalidate the affected keys. Redis failures
// degrade to the backing store and are only logged.
type ListingRepository struct {
	next   domain.ListingRepository
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewListingRepository(next domain.ListingRepository, client *redis.Client, ttl time.Duration, log *logger.Logger) *ListingRepository {
	return &ListingRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: log.Named("ListingCache"),
	}
}

func (c *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	if err := c.next.Create(ctx, listing); err != nil {
		return err
	}
	c.invalidate(ctx, allListingsKey)
	return nil
}

func (c *ListingRepository) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	var cached []*domain.Listing
	if c.get(ctx, allListingsKey, &cached) {
		return cached, nil
	}
	listings, err := c.next.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, allListingsKey, listings)
	return listings, nil
}

func (c *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	var cached domain.Listing
	if c.get(ctx, listingKey(id), &cached) {
		return &cached, nil
	}
	listing, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, listingKey(id), listing)
	return listing, nil
}

func (c *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	if err := c.next.Update(ctx, listing); err != nil {
		return err
	}
	c.invalidate(ctx, listingKey(listing.ID), allListingsKey)
	return nil
}

func (c *ListingRepository) Delete(ctx context.Context, id string) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, listingKey(id), allListingsKey)
	return nil
}

func (c *ListingRepository) get(ctx context.Context, key string, dst interface{}) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Redis Get failed, reading from store", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("Cached value is corrupt, dropping it", zap.String("key", key), zap.Error(err))
		c.invalidate(ctx, key)
		return false
	}
	return true
}

func (c *ListingRepository) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Redis Set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *ListingRepository) invalidate(ctx context.Context, keys ...string) {
	if err := c.client.Del(context.WithoutCancel(ctx), keys...).Err(); err != nil {
		c.logger.Warn("Redis Del failed, cached entries may be stale until TTL", zap.Strings("keys", keys), zap.Error(err))
	}
}
