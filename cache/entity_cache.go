package cache

import (
	"context"
	"reflect"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/rs/zerolog"
)

// ErrNilValue is returned when a nil entity is handed to a put operation.
var ErrNilValue = errors.New("cannot cache a nil value", errors.CategoryBadInput).
	WithTextCode("CACHE_NIL_VALUE")

// ErrEmptyKey is returned when an id or name is empty.
var ErrEmptyKey = errors.New("cache key segment is empty", errors.CategoryBadInput).
	WithTextCode("CACHE_EMPTY_KEY")

// EntityCache stores single entities under <prefix><id> (field BY_ID)
// or <prefix><name> (field BY_NAME). The prefix is resolved once from T.
//
// Store and codec failures never reach the caller: reads report a miss
// and writes become no-ops, both logged.
type EntityCache[T Cacheable] struct {
	store  Store
	kind   Kind
	prefix string
	opts   options
	logger zerolog.Logger
}

// NewEntityCache builds a cache for T. It fails when T's kind has no prefix.
func NewEntityCache[T Cacheable](store Store, opts ...Option) (*EntityCache[T], error) {
	var zero T
	kind := zero.CacheKind()
	prefix, err := kind.Prefix()
	if err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	return &EntityCache[T]{
		store:  store,
		kind:   kind,
		prefix: prefix,
		opts:   o,
		logger: o.logger.With().Str("cache", "entity").Str("kind", kind.String()).Logger(),
	}, nil
}

// Kind returns the kind bound to T.
func (c *EntityCache[T]) Kind() Kind { return c.kind }

// Key returns the store key for an id or name.
func (c *EntityCache[T]) Key(idOrName string) string {
	return c.prefix + idOrName
}

// PutByID caches value under its id. A ttl <= 0 uses the default ttl.
func (c *EntityCache[T]) PutByID(ctx context.Context, id string, value T, ttl time.Duration) error {
	return c.put(ctx, FieldByID, id, value, ttl)
}

// PutByName caches value under an alternate name such as a username.
func (c *EntityCache[T]) PutByName(ctx context.Context, name string, value T, ttl time.Duration) error {
	return c.put(ctx, FieldByName, name, value, ttl)
}

// GetByID returns the cached entity for id, if any.
func (c *EntityCache[T]) GetByID(ctx context.Context, id string) (T, bool) {
	return c.get(ctx, FieldByID, id)
}

// GetByName returns the cached entity for name, if any.
func (c *EntityCache[T]) GetByName(ctx context.Context, name string) (T, bool) {
	return c.get(ctx, FieldByName, name)
}

// DeleteByID removes the entry for id. Deleting a missing key is a no-op.
func (c *EntityCache[T]) DeleteByID(ctx context.Context, id string) {
	c.delete(ctx, id)
}

// DeleteByName removes the entry for name.
func (c *EntityCache[T]) DeleteByName(ctx context.Context, name string) {
	c.delete(ctx, name)
}

func (c *EntityCache[T]) put(ctx context.Context, field, segment string, value T, ttl time.Duration) error {
	if isNil(value) {
		return ErrNilValue
	}
	if segment == "" {
		return ErrEmptyKey
	}

	key := c.Key(segment)
	payload, err := c.opts.codec.Marshal(value)
	if err != nil {
		c.fail("encode", key, err)
		return nil
	}

	if err := c.store.HashPut(ctx, key, field, string(payload), c.opts.ttl(ttl)); err != nil {
		c.fail("put", key, err)
		return nil
	}

	c.opts.recorder.Observe("entity", c.kind.String(), ResultWrite)
	return nil
}

func (c *EntityCache[T]) get(ctx context.Context, field, segment string) (T, bool) {
	var out T
	if segment == "" {
		return out, false
	}

	key := c.Key(segment)
	payload, ok, err := c.store.HashGet(ctx, key, field)
	if err != nil {
		c.fail("get", key, err)
		return out, false
	}
	if !ok {
		c.opts.recorder.Observe("entity", c.kind.String(), ResultMiss)
		return out, false
	}

	if err := c.opts.codec.Unmarshal([]byte(payload), &out); err != nil {
		c.fail("decode", key, err)
		var zero T
		return zero, false
	}
	if isNil(out) {
		c.opts.recorder.Observe("entity", c.kind.String(), ResultMiss)
		return out, false
	}

	c.opts.recorder.Observe("entity", c.kind.String(), ResultHit)
	c.logger.Debug().Str("key", key).Str("field", field).Msg("cache hit")
	return out, true
}

func (c *EntityCache[T]) delete(ctx context.Context, segment string) {
	if segment == "" {
		return
	}
	key := c.Key(segment)
	if err := c.store.Delete(ctx, key); err != nil {
		c.fail("delete", key, err)
	}
}

func (c *EntityCache[T]) fail(op, key string, err error) {
	c.opts.recorder.Observe("entity", c.kind.String(), ResultError)
	c.logger.Warn().Err(err).Str("op", op).Str("key", key).Msg("cache operation failed")
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
