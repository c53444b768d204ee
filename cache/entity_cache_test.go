package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestEntityCache(t *testing.T, store Store, opts ...Option) *EntityCache[*testEntity] {
	t.Helper()
	c, err := NewEntityCache[*testEntity](store, opts...)
	if err != nil {
		t.Fatalf("unexpected error building cache: %v", err)
	}
	return c
}

func TestNewEntityCache_UnknownKind(t *testing.T) {
	_, err := NewEntityCache[*unknownEntity](newMockStore())
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestEntityCache_RoundTripByID(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	c := newTestEntityCache(t, store)

	in := &testEntity{ID: "p1", Username: "alice", LikeCount: 3}
	if err := c.PutByID(ctx, "p1", in, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := store.hashes["posts:p1"][FieldByID]; !ok {
		t.Fatalf("expected hash field %s under posts:p1, got %v", FieldByID, store.hashes)
	}

	out, ok := c.GetByID(ctx, "p1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if *out != *in {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestEntityCache_ByNameIsIndependent(t *testing.T) {
	ctx := context.Background()
	c := newTestEntityCache(t, newMockStore())

	v := &testEntity{ID: "u1", Username: "alice"}
	if err := c.PutByName(ctx, "alice", v, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := c.GetByID(ctx, "alice"); ok {
		t.Error("by-id lookup must not see the by-name field")
	}
	got, ok := c.GetByName(ctx, "alice")
	if !ok || got.ID != "u1" {
		t.Errorf("expected by-name hit for u1, got %+v ok=%v", got, ok)
	}
}

func TestEntityCache_TTLFallback(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want time.Duration
	}{
		{name: "explicit", ttl: 5 * time.Minute, want: 5 * time.Minute},
		{name: "zero", ttl: 0, want: DefaultTTL},
		{name: "negative", ttl: -time.Second, want: DefaultTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			c := newTestEntityCache(t, store)
			if err := c.PutByID(context.Background(), "p1", &testEntity{ID: "p1"}, tt.ttl); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := store.ttl("posts:p1"); got != tt.want {
				t.Errorf("expected ttl %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEntityCache_RejectsNilAndEmpty(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	c := newTestEntityCache(t, store)

	if err := c.PutByID(ctx, "p1", nil, 0); !errors.Is(err, ErrNilValue) {
		t.Errorf("expected ErrNilValue, got %v", err)
	}
	if err := c.PutByName(ctx, "", &testEntity{}, 0); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
	if calls := store.getCalls(); len(calls) != 0 {
		t.Errorf("expected no store calls, got %v", calls)
	}
}

func TestEntityCache_MissDoesNotError(t *testing.T) {
	c := newTestEntityCache(t, newMockStore())
	if v, ok := c.GetByID(context.Background(), "absent"); ok || v != nil {
		t.Errorf("expected miss, got %+v", v)
	}
}

func TestEntityCache_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := newTestEntityCache(t, newMockStore())

	_ = c.PutByID(ctx, "p1", &testEntity{ID: "p1"}, 0)
	c.DeleteByID(ctx, "p1")
	c.DeleteByID(ctx, "p1")

	if _, ok := c.GetByID(ctx, "p1"); ok {
		t.Error("expected miss after delete")
	}
}

func TestEntityCache_StoreFailureIsAMiss(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	rec := newRecordingRecorder()
	c := newTestEntityCache(t, store, WithRecorder(rec))

	_ = c.PutByID(ctx, "p1", &testEntity{ID: "p1"}, 0)
	store.setFail(true)

	if _, ok := c.GetByID(ctx, "p1"); ok {
		t.Error("expected miss while the store fails")
	}
	if err := c.PutByID(ctx, "p2", &testEntity{ID: "p2"}, 0); err != nil {
		t.Errorf("store failures must not surface, got %v", err)
	}
	c.DeleteByID(ctx, "p1")

	if got := rec.count("entity:error"); got != 3 {
		t.Errorf("expected 3 recorded errors, got %d", got)
	}
}

func TestEntityCache_MalformedPayloadIsAMiss(t *testing.T) {
	store := newMockStore()
	store.hashes["posts:p1"] = map[string]string{FieldByID: "{not json"}
	c := newTestEntityCache(t, store)

	if _, ok := c.GetByID(context.Background(), "p1"); ok {
		t.Error("expected miss on malformed payload")
	}
}

func TestEntityCache_MsgpackCodec(t *testing.T) {
	ctx := context.Background()
	c := newTestEntityCache(t, newMockStore(), WithCodec(MsgpackCodec{}))

	in := &testEntity{ID: "p9", Username: "bob", LikeCount: 42}
	_ = c.PutByID(ctx, "p9", in, 0)

	out, ok := c.GetByID(ctx, "p9")
	if !ok || *out != *in {
		t.Errorf("expected %+v, got %+v ok=%v", in, out, ok)
	}
}
