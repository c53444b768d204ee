package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"
)

var errStoreDown = errors.New("store unavailable")

// mockStore is a map backed Store that records calls and can be told to fail.
type mockStore struct {
	mu     sync.Mutex
	values map[string]string
	hashes map[string]map[string]string
	ttls   map[string]time.Duration
	calls  []string
	fail   bool
}

func newMockStore() *mockStore {
	return &mockStore{
		values: map[string]string{},
		hashes: map[string]map[string]string{},
		ttls:   map[string]time.Duration{},
	}
}

func (m *mockStore) recordCall(method string) {
	m.calls = append(m.calls, method)
}

func (m *mockStore) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockStore) setFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func (m *mockStore) HashGet(_ context.Context, key, field string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("HashGet")
	if m.fail {
		return "", false, errStoreDown
	}
	v, ok := m.hashes[key][field]
	return v, ok, nil
}

func (m *mockStore) HashPut(_ context.Context, key, field, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("HashPut")
	if m.fail {
		return errStoreDown
	}
	if m.hashes[key] == nil {
		m.hashes[key] = map[string]string{}
	}
	m.hashes[key][field] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("Get")
	if m.fail {
		return "", false, errStoreDown
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mockStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("Set")
	if m.fail {
		return errStoreDown
	}
	m.values[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) SetIfAbsent(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("SetIfAbsent")
	if m.fail {
		return false, errStoreDown
	}
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value
	m.ttls[key] = ttl
	return true, nil
}

func (m *mockStore) Increment(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("Increment")
	if m.fail {
		return 0, errStoreDown
	}
	n, _ := strconv.ParseInt(m.values[key], 10, 64)
	n++
	m.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *mockStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("Delete")
	if m.fail {
		return errStoreDown
	}
	for _, key := range keys {
		delete(m.values, key)
		delete(m.hashes, key)
		delete(m.ttls, key)
	}
	return nil
}

func (m *mockStore) ttl(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key]
}

// recordingRecorder counts observations by cache and result, and by
// cache, kind and result.
type recordingRecorder struct {
	mu       sync.Mutex
	observed map[string]int
	bumps    map[string]int
}

func newRecordingRecorder() *recordingRecorder {
	return &recordingRecorder{observed: map[string]int{}, bumps: map[string]int{}}
}

func (r *recordingRecorder) Observe(cache, kind, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed[cache+":"+result]++
	r.observed[cache+":"+kind+":"+result]++
}

func (r *recordingRecorder) VersionBumped(collection string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bumps[collection]++
}

func (r *recordingRecorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.observed[key]
}

// testEntity is a minimal Cacheable used across the package tests.
type testEntity struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	LikeCount int    `json:"likeCount"`
}

func (*testEntity) CacheKind() Kind { return KindPost }

type unknownEntity struct {
	ID string `json:"id"`
}

func (*unknownEntity) CacheKind() Kind { return Kind(99) }
