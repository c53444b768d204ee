package cache

import (
	"fmt"

	"github.com/goliatone/go-errors"
)

// Kind identifies a cached entity type and, through it, its key prefix.
type Kind int

const (
	KindUnknown Kind = iota
	KindUser
	KindPost
	KindComment
	KindSavedPost
	KindLike
)

var kindPrefixes = map[Kind]string{
	KindUser:      "users:",
	KindPost:      "posts:",
	KindComment:   "comments:",
	KindSavedPost: "saved-posts:",
	KindLike:      "likes:",
}

var kindNames = map[Kind]string{
	KindUser:      "user",
	KindPost:      "post",
	KindComment:   "comment",
	KindSavedPost: "saved_post",
	KindLike:      "like",
}

// ErrUnknownKind is returned when a Kind has no registered prefix.
var ErrUnknownKind = errors.New("unknown cache kind", errors.CategoryInternal).
	WithTextCode("UNKNOWN_CACHE_KIND")

// Cacheable is implemented by entity types that can live in an EntityCache.
// CacheKind must not dereference its receiver: it is called on nil values.
type Cacheable interface {
	CacheKind() Kind
}

// Prefix returns the key prefix for k. An unregistered kind yields the
// ErrUnknownKind sentinel itself so callers can match it with errors.Is.
func (k Kind) Prefix() (string, error) {
	prefix, ok := kindPrefixes[k]
	if !ok {
		return "", ErrUnknownKind
	}
	return prefix, nil
}

// MustPrefix is Prefix for package level wiring where an unknown kind is a bug.
func (k Kind) MustPrefix() string {
	prefix, err := k.Prefix()
	if err != nil {
		panic(fmt.Sprintf("%v: kind %d", err, int(k)))
	}
	return prefix
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether k has a registered prefix.
func (k Kind) Valid() bool {
	_, ok := kindPrefixes[k]
	return ok
}
