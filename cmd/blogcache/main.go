// Command blogcache walks through the cached repositories against the
// configured cache store and database, printing what each step hits.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-blog-cache/internal/config"
	"github.com/goliatone/go-blog-cache/model"
	"github.com/goliatone/go-blog-cache/pagination"
	"github.com/goliatone/go-blog-cache/pkg/di"
	"github.com/goliatone/go-blog-cache/repositorycache"
	"github.com/goliatone/go-blog-cache/store"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "blogcache: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	container, err := di.NewContainer(ctx, cfg, di.WithRegisterer(registry))
	if err != nil {
		return err
	}
	defer container.Close()

	logger := container.Logger()
	if err := container.Ping(ctx); err != nil {
		logger.Warn().Err(err).Msg("cache or database unreachable, reads will go to the database")
	}

	fmt.Printf("Step 1: cache driver=%s codec=%s database=%s\n\n", cfg.Cache.Driver, cfg.Cache.Codec, cfg.Database.Driver)

	author, posts, err := seed(ctx, container)
	if err != nil {
		return err
	}
	fmt.Printf("Step 2: seeded %s with %d posts\n\n", author.Username, len(posts))

	fmt.Println("Step 3: read-through by id")
	for i := 1; i <= 2; i++ {
		start := time.Now()
		if _, err := container.Users().FindByID(ctx, author.ID); err != nil {
			return err
		}
		fmt.Printf("   call %d took %v\n", i, time.Since(start))
	}
	fmt.Println()

	if err := demoPagination(ctx, container, author); err != nil {
		return err
	}
	if err := demoInteractions(ctx, container, author, posts[0]); err != nil {
		return err
	}

	fmt.Println("Step 7: cache metrics")
	printMetrics(registry, logger)
	return nil
}

func seed(ctx context.Context, c *di.Container) (*model.User, []*model.Post, error) {
	suffix := uuid.NewString()[:8]
	author, err := c.Users().Save(ctx, &model.User{
		Username: "writer-" + suffix,
		Email:    "writer-" + suffix + "@example.com",
		FullName: "Demo Writer",
	})
	if err != nil {
		return nil, nil, err
	}

	var posts []*model.Post
	for _, title := range []string{"Caching pages", "Versioned keys", "Read-through"} {
		post, err := c.Posts().Save(ctx, &model.Post{
			Title:    title,
			Content:  "Demo content for " + strings.ToLower(title),
			Tags:     []string{"cache", "demo"},
			AuthorID: author.ID,
			IsActive: true,
		})
		if err != nil {
			return nil, nil, err
		}
		posts = append(posts, post)
	}
	return author, posts, nil
}

func demoPagination(ctx context.Context, c *di.Container, author *model.User) error {
	fmt.Println("Step 4: versioned pagination")
	pages := cache.NewPaginationCache(c.Store())
	req := pagination.Request{Page: 0, Size: 2, SortBy: pagination.DefaultSortBy, IsNewest: true}
	owner := author.ID.String()

	show := func(label string) error {
		start := time.Now()
		page, err := c.Posts().FindByAuthor(ctx, author.ID, req)
		if err != nil {
			return err
		}
		version, _ := pages.GetVersion(ctx, owner, repositorycache.PostsByAuthor)
		fmt.Printf("   %-22s v%d total=%d pages=%d took %v\n", label, version, page.TotalElements, page.TotalPages, time.Since(start))
		return nil
	}

	if err := show("first read"); err != nil {
		return err
	}
	if err := show("second read"); err != nil {
		return err
	}
	if _, err := c.Posts().Save(ctx, &model.Post{Title: "Fresh post", AuthorID: author.ID, IsActive: true}); err != nil {
		return err
	}
	if err := show("after new post"); err != nil {
		return err
	}

	found, err := c.Posts().Search(ctx, store.PostSearch{Tags: []string{"demo"}}, pagination.DefaultRequest())
	if err != nil {
		return err
	}
	fmt.Printf("   search tag=demo        %d results\n\n", found.TotalElements)
	return nil
}

func demoInteractions(ctx context.Context, c *di.Container, author *model.User, post *model.Post) error {
	fmt.Println("Step 5: likes and bookmarks")
	if _, err := c.LikeService().Like(ctx, author.ID, post.ID, model.TargetPost, model.LikeLove); err != nil {
		return err
	}
	if _, err := c.BookmarkService().Save(ctx, author.ID, post.ID, "reread later"); err != nil {
		return err
	}
	current, err := c.Posts().FindByID(ctx, post.ID)
	if err != nil {
		return err
	}
	fmt.Printf("   %q likes=%d saves=%d\n\n", current.Title, current.Stats.LikeCount, current.Stats.SaveCount)

	fmt.Println("Step 6: comment thread")
	root, err := c.CommentService().Add(ctx, author.ID, post.ID, "Opening the thread")
	if err != nil {
		return err
	}
	if _, err := c.CommentService().Reply(ctx, author.ID, post.ID, root.ID, "And replying to it"); err != nil {
		return err
	}
	thread, err := c.Comments().FindByPost(ctx, post.ID, pagination.DefaultRequest())
	if err != nil {
		return err
	}
	for _, comment := range thread.Content {
		fmt.Printf("   %s (%d replies)\n", comment.Description, comment.ReplyCount)
	}
	fmt.Println()
	return nil
}

func printMetrics(registry *prometheus.Registry, logger zerolog.Logger) {
	families, err := registry.Gather()
	if err != nil {
		logger.Error().Err(err).Msg("gather metrics")
		return
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			value := m.GetCounter().GetValue()
			if m.GetGauge() != nil {
				value = m.GetGauge().GetValue()
			}
			lines = append(lines, fmt.Sprintf("   %s{%s} %v", mf.GetName(), strings.Join(labels, ","), value))
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Println(line)
	}
}
