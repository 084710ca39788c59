package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 5 * time.Minute

// Cache кэш занятости площадок в Redis.
// Каждая площадка имеет счётчик версии; ключ значения включает текущую версию,
// поэтому Invalidate делает все ранее записанные значения площадки недостижимыми.
type Cache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCache создает кэш поверх клиента Redis
func NewCache(rdb *redis.Client, prefix string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if prefix == "" {
		prefix = "venuebooking"
	}
	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Get читает значение в dst. Возвращает версию площадки, под которой искали,
// и false при промахе. Эту версию нужно передать в Set.
func (c *Cache) Get(ctx context.Context, venueID int64, rangeKey string, dst any) (int64, bool, error) {
	version, err := c.version(ctx, venueID)
	if err != nil {
		return 0, false, err
	}

	raw, err := c.rdb.Get(ctx, c.valueKey(venueID, version, rangeKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return version, false, nil
	}
	if err != nil {
		return version, false, fmt.Errorf("%w: get: %v", ErrCache, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return version, false, fmt.Errorf("%w: decode: %v", ErrEncode, err)
	}
	return version, true, nil
}

// Set сохраняет значение под версией, прочитанной в Get до загрузки данных.
// Если площадку успели сбросить, запись попадает под устаревшую версию и не читается.
func (c *Cache) Set(ctx context.Context, venueID, version int64, rangeKey string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	if err := c.rdb.SetEx(ctx, c.valueKey(venueID, version, rangeKey), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %v", ErrCache, err)
	}
	return nil
}

// Invalidate увеличивает версию площадки
func (c *Cache) Invalidate(ctx context.Context, venueID int64) error {
	if err := c.rdb.Incr(ctx, c.versionKey(venueID)).Err(); err != nil {
		return fmt.Errorf("%w: incr: %v", ErrCache, err)
	}
	return nil
}

func (c *Cache) version(ctx context.Context, venueID int64) (int64, error) {
	v, err := c.rdb.Get(ctx, c.versionKey(venueID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: version: %v", ErrCache, err)
	}
	return v, nil
}

func (c *Cache) versionKey(venueID int64) string {
	return fmt.Sprintf("%s:availability:%d:version", c.prefix, venueID)
}

func (c *Cache) valueKey(venueID, version int64, rangeKey string) string {
	return fmt.Sprintf("%s:availability:%d:v%d:%s", c.prefix, venueID, version, rangeKey)
}

// Nop кэш, который всегда промахивается; используется, когда Redis отключен
type Nop struct{}

func (Nop) Get(context.Context, int64, string, any) (int64, bool, error) { return 0, false, nil }
func (Nop) Set(context.Context, int64, int64, string, any) error         { return nil }
func (Nop) Invalidate(context.Context, int64) error                      { return nil }
