package cacheinfra

import (
	"context"
	"time"
)

// DisabledStore misses every read and drops every write.
type DisabledStore struct{}

func NewDisabledStore() DisabledStore { return DisabledStore{} }

func (DisabledStore) HashGet(context.Context, string, string) (string, bool, error) {
	return "", false, nil
}

func (DisabledStore) HashPut(context.Context, string, string, string, time.Duration) error {
	return nil
}

func (DisabledStore) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (DisabledStore) Set(context.Context, string, string, time.Duration) error { return nil }

func (DisabledStore) SetIfAbsent(context.Context, string, string, time.Duration) (bool, error) {
	return false, nil
}

func (DisabledStore) Increment(context.Context, string) (int64, error) { return 0, nil }

func (DisabledStore) Delete(context.Context, ...string) error { return nil }

func (DisabledStore) Ping(context.Context) error { return nil }

func (DisabledStore) Close() error { return nil }
