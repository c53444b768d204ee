package cacheinfra

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/viccon/sturdyc"
)

// memoryEntry is one key in the memory store. A key holds either a plain
// value or a hash, never both, mirroring redis key types.
type memoryEntry struct {
	value     string
	hash      map[string]string
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is an in-process store backed by a sharded sturdyc client.
// sturdyc bounds size and global ttl; per key ttls are tracked on the entry.
// Counters created without a ttl through SetIfAbsent or Increment live in a
// separate map that sturdyc never evicts, so a full cache cannot reset a
// collection version to 1 and resurrect pages cached under it.
// A single mutex serializes mutations so compound operations stay atomic.
type MemoryStore struct {
	mu       sync.Mutex
	client   *sturdyc.Client[*memoryEntry]
	counters map[string]int64
	now      func() time.Time
	logger   zerolog.Logger
}

// NewMemoryStore validates cfg and builds the sturdyc client.
func NewMemoryStore(cfg MemoryConfig, opts ...Option) (*MemoryStore, error) {
	check := Config{Driver: DriverMemory, DefaultTTL: time.Hour, Memory: cfg}
	if err := check.Validate(); err != nil {
		return nil, err
	}

	var sturdyOpts []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		sturdyOpts = append(sturdyOpts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	o := newBackendOptions(opts)
	return &MemoryStore{
		client: sturdyc.New[*memoryEntry](
			cfg.Capacity,
			cfg.NumShards,
			cfg.MaxTTL,
			cfg.EvictionPercentage,
			sturdyOpts...,
		),
		counters: map[string]int64{},
		now:      time.Now,
		logger:   o.logger.With().Str("component", "memory_store").Logger(),
	}, nil
}

// load returns a live entry, dropping it when its own ttl has passed.
// Callers must hold s.mu.
func (s *MemoryStore) load(key string) (*memoryEntry, bool) {
	entry, ok := s.client.Get(key)
	if !ok || entry == nil {
		return nil, false
	}
	if entry.expired(s.now()) {
		s.client.Delete(key)
		return nil, false
	}
	return entry, true
}

func (s *MemoryStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

func (s *MemoryStore) HashGet(_ context.Context, key, field string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.load(key)
	if !ok || entry.hash == nil {
		return "", false, nil
	}
	val, ok := entry.hash[field]
	return val, ok, nil
}

func (s *MemoryStore) HashPut(_ context.Context, key, field, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.counters, key)
	entry, ok := s.load(key)
	next := &memoryEntry{hash: map[string]string{}}
	if ok && entry.hash != nil {
		for k, v := range entry.hash {
			next.hash[k] = v
		}
		next.expiresAt = entry.expiresAt
	}
	next.hash[field] = value
	if ttl > 0 {
		next.expiresAt = s.expiry(ttl)
	}

	s.client.Set(key, next)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.counters[key]; ok {
		return strconv.FormatInt(n, 10), true, nil
	}
	entry, ok := s.load(key)
	if !ok || entry.hash != nil {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.counters, key)
	s.client.Set(key, &memoryEntry{value: value, expiresAt: s.expiry(ttl)})
	return nil
}

func (s *MemoryStore) SetIfAbsent(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.counters[key]; ok {
		return false, nil
	}
	if _, ok := s.load(key); ok {
		return false, nil
	}
	if ttl <= 0 {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			s.counters[key] = n
			return true, nil
		}
	}
	s.client.Set(key, &memoryEntry{value: value, expiresAt: s.expiry(ttl)})
	return true, nil
}

func (s *MemoryStore) Increment(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.counters[key]; ok {
		n++
		s.counters[key] = n
		return n, nil
	}

	var current int64
	if entry, ok := s.load(key); ok {
		if entry.hash != nil {
			return 0, errWrongType(key)
		}
		n, err := strconv.ParseInt(entry.value, 10, 64)
		if err != nil {
			return 0, errNotInteger(key)
		}
		current = n
		if !entry.expiresAt.IsZero() {
			current++
			s.client.Set(key, &memoryEntry{value: strconv.FormatInt(current, 10), expiresAt: entry.expiresAt})
			return current, nil
		}
		s.client.Delete(key)
	}

	current++
	s.counters[key] = current
	return current, nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.counters, key)
		s.client.Delete(key)
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of keys held, including ones past their own ttl
// that have not been read since.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client.Size() + len(s.counters)
}
