// Package cache keeps menu reads out of Postgres.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"restaurant-service/models"
	awspkg "restaurant-service/pkg/aws"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	menuItemPrefix = "menu:item:v"
	menuListPrefix = "menu:list:v"
	// VersionKey is bumped on every catalog write; keys built from an older
	// version are never read again and expire by TTL.
	VersionKey = "menu:version"

	DefaultTTL = 5 * time.Minute
)

// MenuPage is one cached page of a menu listing.
type MenuPage struct {
	Items []models.MenuItem `json:"items"`
	Total int64             `json:"total"`
}

// MenuCache caches menu listings and single items. The version returned by
// a Get must be passed to the matching Set so a value read before an
// invalidation is never stored under the newer version.
type MenuCache interface {
	GetList(ctx context.Context, filter models.MenuItemFilter) (*MenuPage, int64, bool)
	SetList(version int64, filter models.MenuItemFilter, page *MenuPage)
	GetItem(ctx context.Context, id uint) (*models.MenuItem, int64, bool)
	SetItem(version int64, item *models.MenuItem)
	Invalidate(ctx context.Context) error
}

// RedisMenuCache implements MenuCache on Redis.
type RedisMenuCache struct {
	redis   *redis.Client
	ttl     time.Duration
	logger  *zap.Logger
	metrics awspkg.Counter
}

// NewRedisMenuCache creates a RedisMenuCache. A non-positive ttl falls back
// to DefaultTTL. metrics may be nil.
func NewRedisMenuCache(client *redis.Client, ttl time.Duration, logger *zap.Logger, metrics awspkg.Counter) *RedisMenuCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisMenuCache{redis: client, ttl: ttl, logger: logger, metrics: metrics}
}

func (c *RedisMenuCache) GetList(ctx context.Context, filter models.MenuItemFilter) (*MenuPage, int64, bool) {
	version, err := c.version(ctx)
	if err != nil {
		return nil, 0, false
	}

	var page MenuPage
	if !c.get(ctx, ListKey(version, filter), &page) {
		return nil, version, false
	}
	return &page, version, true
}

func (c *RedisMenuCache) SetList(version int64, filter models.MenuItemFilter, page *MenuPage) {
	if version == 0 || page == nil {
		return
	}
	c.setAsync(ListKey(version, filter), page)
}

func (c *RedisMenuCache) GetItem(ctx context.Context, id uint) (*models.MenuItem, int64, bool) {
	version, err := c.version(ctx)
	if err != nil {
		return nil, 0, false
	}

	var item models.MenuItem
	if !c.get(ctx, ItemKey(version, id), &item) {
		return nil, version, false
	}
	return &item, version, true
}

func (c *RedisMenuCache) SetItem(version int64, item *models.MenuItem) {
	if version == 0 || item == nil {
		return
	}
	c.setAsync(ItemKey(version, item.ID), item)
}

// Invalidate retires every cached list and item by bumping the version.
func (c *RedisMenuCache) Invalidate(ctx context.Context) error {
	newVersion, err := c.redis.Incr(ctx, VersionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate menu cache: %w", err)
	}
	c.logger.Debug("Menu cache invalidated", zap.Int64("version", newVersion))
	return nil
}

func (c *RedisMenuCache) get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Menu cache read failed", zap.String("key", key), zap.Error(err))
		}
		awspkg.CountAsync(c.metrics, awspkg.MetricMenuCacheMiss, nil)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("Failed to unmarshal cached menu entry", zap.String("key", key), zap.Error(err))
		awspkg.CountAsync(c.metrics, awspkg.MetricMenuCacheMiss, nil)
		return false
	}
	awspkg.CountAsync(c.metrics, awspkg.MetricMenuCacheHits, nil)
	return true
}

func (c *RedisMenuCache) setAsync(key string, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Failed to marshal menu entry for cache", zap.String("key", key), zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("Failed to cache menu entry", zap.String("key", key), zap.Error(err))
		}
	}()
}

// version returns the current cache version, initialising it to 1.
func (c *RedisMenuCache) version(ctx context.Context) (int64, error) {
	ver, err := c.redis.Get(ctx, VersionKey).Int64()
	if err == nil && ver > 0 {
		return ver, nil
	}
	if errors.Is(err, redis.Nil) {
		// SETNX so two first readers cannot reset a bump made in between.
		if err := c.redis.SetNX(ctx, VersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.redis.Get(ctx, VersionKey).Int64()
	}
	if err == nil {
		err = fmt.Errorf("invalid menu cache version %d", ver)
	}
	return 0, err
}

// ItemKey is the cache key of a single menu item.
func ItemKey(version int64, id uint) string {
	return menuItemPrefix + strconv.FormatInt(version, 10) + ":" + strconv.FormatUint(uint64(id), 10)
}

// ListKey is the cache key of one menu listing page.
func ListKey(version int64, f models.MenuItemFilter) string {
	featured := ""
	if f.Featured != nil {
		featured = strconv.FormatBool(*f.Featured)
	}
	return fmt.Sprintf("%s%d:p:%d:l:%d:c:%s:f:%s:o:%s",
		menuListPrefix, version, f.Page, f.Limit, strings.ToLower(f.Category), featured, f.Ordering)
}

// Noop is a MenuCache that never hits. It is used when Redis is not
// configured.
type Noop struct{}

func (Noop) GetList(context.Context, models.MenuItemFilter) (*MenuPage, int64, bool) { return nil, 0, false }
func (Noop) SetList(int64, models.MenuItemFilter, *MenuPage)                         {}
func (Noop) GetItem(context.Context, uint) (*models.MenuItem, int64, bool)           { return nil, 0, false }
func (Noop) SetItem(int64, *models.MenuItem)                                         {}
func (Noop) Invalidate(context.Context) error                                        { return nil }
