package cacheinfra

import (
	"github.com/goliatone/go-errors"
)

func errWrongType(key string) error {
	return errors.New("operation against a key holding the wrong kind of value", errors.CategoryBadInput).
		WithTextCode("WRONGTYPE").
		WithMetadata(map[string]any{"key": key})
}

func errNotInteger(key string) error {
	return errors.New("value is not an integer", errors.CategoryBadInput).
		WithTextCode("NOT_INTEGER").
		WithMetadata(map[string]any{"key": key})
}
