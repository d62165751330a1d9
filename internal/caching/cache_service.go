package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"indumart/internal/models"
)

// CachedResponse is a replayable HTTP response stored under an idempotency
// key. Records past their TTL are invisible; redis purges them physically.
type CachedResponse struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
}

type CacheService interface {
	// Product caching
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	// Idempotency records: Get returns (nil, nil) for both unknown and
	// expired keys; Put overwrites any prior record and resets the TTL.
	GetIdempotencyRecord(ctx context.Context, key string) (*CachedResponse, error)
	PutIdempotencyRecord(ctx context.Context, key string, resp *CachedResponse, ttl time.Duration) error

	// Rate limiting
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)

	// Generic string operations for refresh-token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept both host:port and redis://host:port forms
	parsedAddr := addr
	if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
		parsedAddr = hostPort
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	key := fmt.Sprintf("indumart:product:%s", productID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	key := fmt.Sprintf("indumart:product:%s", product.ID.String())
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	key := fmt.Sprintf("indumart:product:%s", productID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetIdempotencyRecord(ctx context.Context, key string) (*CachedResponse, error) {
	cacheKey := fmt.Sprintf("indumart:idempotency:%s", key)
	data, err := r.client.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // unknown or expired
		}
		return nil, err
	}

	var resp CachedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *redisCacheService) PutIdempotencyRecord(ctx context.Context, key string, resp *CachedResponse, ttl time.Duration) error {
	cacheKey := fmt.Sprintf("indumart:idempotency:%s", key)
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, cacheKey, data, ttl).Err()
}

func (r *redisCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	cacheKey := fmt.Sprintf("indumart:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return 0, 0, err
	}

	// Set expiry on first request in the window
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	remaining, err := r.client.TTL(ctx, cacheKey).Result()
	if err != nil || remaining < 0 {
		remaining = window
	}
	return count, remaining, nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
