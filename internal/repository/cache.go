package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sagarchy-05/ecommerce-backend/internal/config"
	"github.com/sagarchy-05/ecommerce-backend/internal/models"
)

const (
	productKeyPrefix = "product:"
	productListKey   = "products:all"
	defaultCacheTTL  = 5 * time.Minute
)

// CatalogCache fronts catalog reads only. The order engine never consults
// it; stock is always re-read inside the placement transaction.
type CatalogCache interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	SetProduct(ctx context.Context, p *models.Product) error
	GetProductList(ctx context.Context) ([]*models.Product, error)
	SetProductList(ctx context.Context, products []*models.Product) error
	Invalidate(ctx context.Context, productID string) error
}

// RedisCatalogCache implements CatalogCache on Redis.
type RedisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCatalogCache(cfg config.RedisConfig, logger *slog.Logger) *RedisCatalogCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &RedisCatalogCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// GetProduct returns (nil, nil) on a cache miss.
func (c *RedisCatalogCache) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	data, err := c.client.Get(ctx, productKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		c.logger.Error("cache get failed", "product_id", id, "error", err)
		return nil, err
	}

	var p models.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *RedisCatalogCache) SetProduct(ctx context.Context, p *models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, productKeyPrefix+p.ID, data, c.ttl).Err()
}

func (c *RedisCatalogCache) GetProductList(ctx context.Context) ([]*models.Product, error) {
	data, err := c.client.Get(ctx, productListKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var products []*models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *RedisCatalogCache) SetProductList(ctx context.Context, products []*models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, productListKey, data, c.ttl).Err()
}

// Invalidate drops the product's entry and the list entry after an admin
// write or a stock mutation becomes visible.
func (c *RedisCatalogCache) Invalidate(ctx context.Context, productID string) error {
	return c.client.Del(ctx, productKeyPrefix+productID, productListKey).Err()
}

// NopCatalogCache satisfies CatalogCache when caching is disabled. Every
// read is a miss.
type NopCatalogCache struct{}

func (NopCatalogCache) GetProduct(context.Context, string) (*models.Product, error) {
	return nil, nil
}
func (NopCatalogCache) SetProduct(context.Context, *models.Product) error { return nil }
func (NopCatalogCache) GetProductList(context.Context) ([]*models.Product, error) {
	return nil, nil
}
func (NopCatalogCache) SetProductList(context.Context, []*models.Product) error { return nil }
func (NopCatalogCache) Invalidate(context.Context, string) error                { return nil }
