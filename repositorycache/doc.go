// Package repositorycache provides cached repositories for the blog entities.
//
// # Overview
//
// Each repository composes a primary store from the store package with an
// EntityCache and/or a PaginationCache from the cache package. Reads go
// through the cache, writes go to the store first and then refresh or
// invalidate what the cache holds.
//
//	users := repositorycache.NewUsers(bunstore.NewUsers(db), userCache)
//	posts := repositorycache.NewPosts(bunstore.NewPosts(db), postCache, pages)
//
//	post, err := posts.FindByID(ctx, id)
//	page, err := posts.FindByAuthor(ctx, authorID, pagination.DefaultRequest())
//
// # Reads
//
// Lookups by id check the entity cache first. On a miss the store is queried
// and the result cached. Store errors, including not found, are returned
// unchanged and nothing is cached for them.
//
// Owner scoped listings (posts by author, comments by post, replies by
// comment, bookmarks by user) are cached as whole pages. The page key embeds
// the owner's collection version.
//
// # Writes
//
//	| Mutation                 | Entity cache            | Version bumped                     |
//	|--------------------------|-------------------------|------------------------------------|
//	| user save                | refresh id and name     |                                    |
//	| user delete              | drop id and name        |                                    |
//	| post save                | refresh id              | posts: for author                  |
//	| post delete              | drop id                 | posts: for author                  |
//	| post counters            | drop id                 |                                    |
//	| comment create           |                         | comments: for post, replies parent |
//	| comment edit / delete    | drop id                 | comments: for post, replies parent |
//	| comment counters         | drop id                 |                                    |
//	| saved post save / delete |                         | saved-posts: for user              |
//
// Versions are bumped only after the store write succeeded. A reader racing
// a write can still cache a page computed before the write under the old
// version; that page is served until its ttl runs out.
//
// Search results are keyed by a digest of the filter and are not
// invalidated by writes.
//
// # Bypass
//
// WithoutCache marks a context so reads skip the cache entirely.
// Invalidation on writes still happens.
//
// # Failure handling
//
// Cache failures degrade to misses and skipped writes. They are logged and
// never returned to the caller.
package repositorycache
