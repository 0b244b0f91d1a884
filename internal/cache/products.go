package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/favcart/internal/models"
)

const (
	versionKey     = "favcart:products:version"
	productsKeyFmt = "favcart:products:v%d"
)

// ProductCache holds the full product listing under a version. Invalidate
// moves to a new version, so a listing read before a write and stored after
// it lands under a version nobody reads again.
type ProductCache interface {
	Version(ctx context.Context) (int64, error)
	GetProducts(ctx context.Context, version int64) ([]models.Product, bool, error)
	SetProducts(ctx context.Context, version int64, products []models.Product) error
	Invalidate(ctx context.Context) error
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func productsKey(version int64) string {
	return fmt.Sprintf(productsKeyFmt, version)
}

func (c *Redis) Version(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *Redis) GetProducts(ctx context.Context, version int64) ([]models.Product, bool, error) {
	res, err := c.rdb.Get(ctx, productsKey(version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var products []models.Product
	if err := json.Unmarshal(res, &products); err != nil {
		return nil, false, err
	}
	return products, true, nil
}

func (c *Redis) SetProducts(ctx context.Context, version int64, products []models.Product) error {
	b, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productsKey(version), b, c.ttl).Err()
}

// Invalidate bumps the version. Listings under older versions expire with
// their TTL.
func (c *Redis) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, versionKey).Err()
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

type Nop struct{}

func (Nop) Version(context.Context) (int64, error) {
	return 0, nil
}

func (Nop) GetProducts(context.Context, int64) ([]models.Product, bool, error) {
	return nil, false, nil
}

func (Nop) SetProducts(context.Context, int64, []models.Product) error {
	return nil
}

func (Nop) Invalidate(context.Context) error {
	return nil
}
