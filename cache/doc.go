// Package cache provides the point lookup and paged result caches that sit
// between the repositories and the primary store.
//
// # Overview
//
// The package exports three layers:
//
//   - Store: hash field get/put, plain get/set with ttl, set-if-absent,
//     atomic increment and delete. Backends live in internal/cacheinfra
//     and are built with NewStore.
//   - EntityCache: caches one entity under <prefix><id> (field BY_ID) or
//     <prefix><name> (field BY_NAME). The prefix comes from the entity's Kind.
//   - PaginationCache: caches whole pages under a key that embeds the owner's
//     collection version.
//
// # Key Layout
//
//	users:<id>                     hash, field BY_ID
//	users:<username>               hash, field BY_NAME
//	posts:<authorID>:version       integer counter
//	posts:<authorID>:v3:page:0:size:20:sortBy:createdAt:isNewest:true
//
// # Versioned Pages
//
// Pages are never deleted. A write that changes an owner's collection calls
// IncrementVersion, after which every page key for that owner resolves to a
// new version and the old entries are simply never read again. They expire
// through their ttl.
//
//	page, ok := cache.GetPage[model.PostView](ctx, pages, authorID, req, "posts:")
//	if !ok {
//		page = loadFromStore(ctx, authorID, req)
//		cache.PutPage(ctx, pages, authorID, req, "posts:", page, 10*time.Minute)
//	}
//
// # Failure Semantics
//
// Store and codec errors are logged and counted, then reported as a miss on
// read and ignored on write. Only programming errors cross the package
// boundary: an unregistered Kind when building an EntityCache, or a nil value
// handed to a put.
//
// # Codecs
//
// JSONCodec (goccy/go-json) is the default. MsgpackCodec trades readability
// in redis-cli for smaller payloads; it reads the json struct tags.
package cache
