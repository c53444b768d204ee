package testsupport

import (
	"context"
	_ "embed"
	"fmt"
	"testing"

	"github.com/goccy/go-json"
	"github.com/goliatone/go-blog-cache/model"
)

//go:embed testdata/blog.json
var blogJSON []byte

// Dataset is a small blog described by usernames and titles instead of ids,
// so fixture files stay readable.
type Dataset struct {
	Users    []SeedUser    `json:"users"`
	Posts    []SeedPost    `json:"posts"`
	Comments []SeedComment `json:"comments"`
}

type SeedUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type SeedPost struct {
	Title   string   `json:"title"`
	Author  string   `json:"author"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type SeedComment struct {
	Post   string `json:"post"`
	Author string `json:"author"`
	Text   string `json:"text"`
}

// Seeded holds the records a Dataset produced, keyed the way the dataset
// refers to them.
type Seeded struct {
	Users    map[string]*model.User
	Posts    map[string]*model.Post
	Comments []*model.Comment
}

type UserSaver interface {
	Save(ctx context.Context, user *model.User) (*model.User, error)
}

type PostSaver interface {
	Save(ctx context.Context, post *model.Post) (*model.Post, error)
}

type CommentSaver interface {
	Save(ctx context.Context, comment *model.Comment) (*model.Comment, error)
}

// ParseDataset decodes a JSON dataset.
func ParseDataset(data []byte) (Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, nil
}

// BlogDataset returns the dataset shipped in testdata/blog.json.
func BlogDataset(t testing.TB) Dataset {
	t.Helper()

	ds, err := ParseDataset(blogJSON)
	if err != nil {
		t.Fatalf("failed to load blog dataset: %v", err)
	}
	return ds
}

// Seed saves every record of ds in dependency order. Posts and comments
// must reference users and posts declared earlier in the dataset.
func Seed(ctx context.Context, ds Dataset, users UserSaver, posts PostSaver, comments CommentSaver) (*Seeded, error) {
	out := &Seeded{
		Users: make(map[string]*model.User, len(ds.Users)),
		Posts: make(map[string]*model.Post, len(ds.Posts)),
	}

	for _, u := range ds.Users {
		saved, err := users.Save(ctx, &model.User{Username: u.Username, Email: u.Email, FullName: u.FullName})
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", u.Username, err)
		}
		out.Users[u.Username] = saved
	}

	for _, p := range ds.Posts {
		author, ok := out.Users[p.Author]
		if !ok {
			return nil, fmt.Errorf("seed post %q: unknown author %s", p.Title, p.Author)
		}
		saved, err := posts.Save(ctx, &model.Post{
			Title:    p.Title,
			Content:  p.Content,
			Tags:     p.Tags,
			AuthorID: author.ID,
			IsActive: true,
		})
		if err != nil {
			return nil, fmt.Errorf("seed post %q: %w", p.Title, err)
		}
		out.Posts[p.Title] = saved
	}

	for _, c := range ds.Comments {
		post, ok := out.Posts[c.Post]
		if !ok {
			return nil, fmt.Errorf("seed comment: unknown post %q", c.Post)
		}
		author, ok := out.Users[c.Author]
		if !ok {
			return nil, fmt.Errorf("seed comment: unknown author %s", c.Author)
		}
		saved, err := comments.Save(ctx, &model.Comment{PostID: post.ID, UserID: author.ID, Description: c.Text})
		if err != nil {
			return nil, fmt.Errorf("seed comment on %q: %w", c.Post, err)
		}
		out.Comments = append(out.Comments, saved)
	}

	return out, nil
}

// MustSeed is Seed for tests.
func MustSeed(t testing.TB, ds Dataset, users UserSaver, posts PostSaver, comments CommentSaver) *Seeded {
	t.Helper()

	seeded, err := Seed(context.Background(), ds, users, posts, comments)
	if err != nil {
		t.Fatalf("failed to seed dataset: %v", err)
	}
	return seeded
}
