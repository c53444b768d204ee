package repositorycache

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-blog-cache/model"
	"github.com/goliatone/go-blog-cache/pagination"
	"github.com/goliatone/go-blog-cache/store"
	"github.com/google/uuid"
)

var (
	errCacheDown = errors.New("cache unavailable")
	errDBDown    = errors.New("database unavailable")
)

// callRecorder tracks method names in call order.
type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) recordCall(method string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, method)
}

func (r *callRecorder) getCalls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *callRecorder) clearCalls() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *callRecorder) count(method string) int {
	n := 0
	for _, call := range r.getCalls() {
		if call == method {
			n++
		}
	}
	return n
}

// memoryStore is a map backed cache.Store that can be switched off.
type memoryStore struct {
	callRecorder
	mu     sync.Mutex
	values map[string]string
	hashes map[string]map[string]string
	down   bool
}

var _ cache.Store = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}, hashes: map[string]map[string]string{}}
}

func (m *memoryStore) setDown(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down = down
}

func (m *memoryStore) HashGet(_ context.Context, key, field string) (string, bool, error) {
	m.recordCall("HashGet")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return "", false, errCacheDown
	}
	v, ok := m.hashes[key][field]
	return v, ok, nil
}

func (m *memoryStore) HashPut(_ context.Context, key, field, value string, _ time.Duration) error {
	m.recordCall("HashPut")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errCacheDown
	}
	if m.hashes[key] == nil {
		m.hashes[key] = map[string]string{}
	}
	m.hashes[key][field] = value
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.recordCall("Get")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return "", false, errCacheDown
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.recordCall("Set")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errCacheDown
	}
	m.values[key] = value
	return nil
}

func (m *memoryStore) SetIfAbsent(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	m.recordCall("SetIfAbsent")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return false, errCacheDown
	}
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value
	return true, nil
}

func (m *memoryStore) Increment(_ context.Context, key string) (int64, error) {
	m.recordCall("Increment")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return 0, errCacheDown
	}
	n, _ := strconv.ParseInt(m.values[key], 10, 64)
	n++
	m.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *memoryStore) Delete(_ context.Context, keys ...string) error {
	m.recordCall("Delete")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errCacheDown
	}
	for _, key := range keys {
		delete(m.values, key)
		delete(m.hashes, key)
	}
	return nil
}

func (m *memoryStore) hasHash(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.hashes[key]
	return ok
}

func (m *memoryStore) value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func (m *memoryStore) keysWithSuffix(suffix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for key := range m.values {
		if strings.HasSuffix(key, suffix) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func page[T any](items []T, req pagination.Request) ([]T, int64) {
	start := req.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + req.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], int64(len(items))
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

type fakeUserStore struct {
	callRecorder
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
	err   error
}

var _ store.UserStore = (*fakeUserStore)(nil)

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	s := &fakeUserStore{users: map[uuid.UUID]*model.User{}}
	for _, u := range users {
		s.users[u.ID] = clone(u)
	}
	return s
}

func (s *fakeUserStore) find(method string, match func(*model.User) bool) (*model.User, error) {
	s.recordCall(method)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, store.NotFound("user", method, "")
}

func (s *fakeUserStore) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return s.find("FindByID", func(u *model.User) bool { return u.ID == id })
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return s.find("FindByUsername", func(u *model.User) bool { return u.Username == username })
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return s.find("FindByEmail", func(u *model.User) bool { return u.Email == email })
}

func (s *fakeUserStore) FindByUsernameOrEmail(_ context.Context, value string) (*model.User, error) {
	return s.find("FindByUsernameOrEmail", func(u *model.User) bool { return u.Username == value || u.Email == value })
}

func (s *fakeUserStore) FindByProviderID(_ context.Context, providerID string) (*model.User, error) {
	return s.find("FindByProviderID", func(u *model.User) bool { return u.ProviderID == providerID })
}

func (s *fakeUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := s.FindByUsername(ctx, username)
	return err == nil, nil
}

func (s *fakeUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	return err == nil, nil
}

func (s *fakeUserStore) ExistsByProviderID(ctx context.Context, providerID string) (bool, error) {
	_, err := s.FindByProviderID(ctx, providerID)
	return err == nil, nil
}

func (s *fakeUserStore) FindAll(_ context.Context, req pagination.Request) ([]*model.User, int64, error) {
	s.recordCall("FindAll")
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, clone(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	items, total := page(all, req)
	return items, total, nil
}

func (s *fakeUserStore) Save(_ context.Context, user *model.User) (*model.User, error) {
	s.recordCall("Save")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	model.EnsureID(&user.ID)
	s.users[user.ID] = clone(user)
	return clone(user), nil
}

func (s *fakeUserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.recordCall("Delete")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	delete(s.users, id)
	return nil
}

type fakePostStore struct {
	callRecorder
	mu    sync.Mutex
	posts map[uuid.UUID]*model.Post
	order []uuid.UUID
	err   error
}

var _ store.PostStore = (*fakePostStore)(nil)

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: map[uuid.UUID]*model.Post{}}
}

func (s *fakePostStore) get(id uuid.UUID) (*model.Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, store.NotFound("post", "id", id.String())
	}
	return p, nil
}

// newestFirst returns matching posts, latest saved first.
func (s *fakePostStore) newestFirst(match func(*model.Post) bool) []*model.Post {
	var out []*model.Post
	for i := len(s.order) - 1; i >= 0; i-- {
		if p, ok := s.posts[s.order[i]]; ok && match(p) {
			out = append(out, clone(p))
		}
	}
	return out
}

func (s *fakePostStore) FindByID(_ context.Context, id uuid.UUID) (*model.Post, error) {
	s.recordCall("FindByID")
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return clone(p), nil
}

func (s *fakePostStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	s.recordCall("Exists")
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.posts[id]
	return ok, nil
}

func (s *fakePostStore) FindAll(_ context.Context, req pagination.Request) ([]*model.Post, int64, error) {
	return s.list("FindAll", req, func(*model.Post) bool { return true })
}

func (s *fakePostStore) FindByAuthor(_ context.Context, authorID uuid.UUID, req pagination.Request) ([]*model.Post, int64, error) {
	return s.list("FindByAuthor", req, func(p *model.Post) bool { return p.AuthorID == authorID })
}

func (s *fakePostStore) Search(_ context.Context, filter store.PostSearch, req pagination.Request) ([]*model.Post, int64, error) {
	return s.list("Search", req, func(p *model.Post) bool {
		for _, want := range filter.Tags {
			for _, tag := range p.Tags {
				if tag == want {
					return true
				}
			}
		}
		return len(filter.Tags) == 0
	})
}

func (s *fakePostStore) Recommend(_ context.Context, _ []string, _ []uuid.UUID, req pagination.Request) ([]*model.Post, int64, error) {
	return s.list("Recommend", req, func(p *model.Post) bool { return p.IsActive })
}

func (s *fakePostStore) list(method string, req pagination.Request, match func(*model.Post) bool) ([]*model.Post, int64, error) {
	s.recordCall(method)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, 0, s.err
	}
	items, total := page(s.newestFirst(match), req)
	return items, total, nil
}

func (s *fakePostStore) Save(_ context.Context, post *model.Post) (*model.Post, error) {
	s.recordCall("Save")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if post == nil {
		return nil, store.ErrNilRecord
	}
	model.EnsureID(&post.ID)
	if _, ok := s.posts[post.ID]; !ok {
		s.order = append(s.order, post.ID)
	}
	s.posts[post.ID] = clone(post)
	return clone(post), nil
}

func (s *fakePostStore) Delete(_ context.Context, id uuid.UUID) error {
	s.recordCall("Delete")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.get(id); err != nil {
		return err
	}
	delete(s.posts, id)
	return nil
}

func (s *fakePostStore) adjust(method string, id uuid.UUID, fn func(*model.Post)) error {
	s.recordCall(method)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.get(id)
	if err != nil {
		return err
	}
	fn(p)
	return nil
}

func (s *fakePostStore) AdjustLikeCount(_ context.Context, id uuid.UUID, delta int64) error {
	return s.adjust("AdjustLikeCount", id, func(p *model.Post) { p.Stats.LikeCount = max(0, p.Stats.LikeCount+delta) })
}

func (s *fakePostStore) AdjustSaveCount(_ context.Context, id uuid.UUID, delta int64) error {
	return s.adjust("AdjustSaveCount", id, func(p *model.Post) { p.Stats.SaveCount = max(0, p.Stats.SaveCount+delta) })
}

func (s *fakePostStore) MarkNewComment(_ context.Context, id uuid.UUID) error {
	return s.adjust("MarkNewComment", id, func(p *model.Post) {
		p.HasComments = true
		p.Stats.CommentCount++
	})
}

type fakeCommentStore struct {
	callRecorder
	mu       sync.Mutex
	comments map[uuid.UUID]*model.Comment
	order    []uuid.UUID
	err      error
}

var _ store.CommentStore = (*fakeCommentStore)(nil)

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: map[uuid.UUID]*model.Comment{}}
}

func (s *fakeCommentStore) get(id uuid.UUID) (*model.Comment, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.comments[id]
	if !ok {
		return nil, store.NotFound("comment", "id", id.String())
	}
	return c, nil
}

func (s *fakeCommentStore) matching(match func(*model.Comment) bool) []*model.Comment {
	var out []*model.Comment
	for _, id := range s.order {
		if c, ok := s.comments[id]; ok && match(c) {
			out = append(out, clone(c))
		}
	}
	return out
}

func (s *fakeCommentStore) list(method string, req pagination.Request, match func(*model.Comment) bool) ([]*model.Comment, int64, error) {
	s.recordCall(method)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, 0, s.err
	}
	items, total := page(s.matching(match), req)
	return items, total, nil
}

func (s *fakeCommentStore) FindByID(_ context.Context, id uuid.UUID) (*model.Comment, error) {
	s.recordCall("FindByID")
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return clone(c), nil
}

func (s *fakeCommentStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	s.recordCall("Exists")
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.comments[id]
	return ok, nil
}

func (s *fakeCommentStore) FindAll(_ context.Context, req pagination.Request) ([]*model.Comment, int64, error) {
	return s.list("FindAll", req, func(*model.Comment) bool { return true })
}

func (s *fakeCommentStore) FindByPost(_ context.Context, postID uuid.UUID, req pagination.Request) ([]*model.Comment, int64, error) {
	return s.list("FindByPost", req, func(c *model.Comment) bool { return c.PostID == postID && !c.IsReply() })
}

func (s *fakeCommentStore) FindByUser(_ context.Context, userID uuid.UUID, req pagination.Request) ([]*model.Comment, int64, error) {
	return s.list("FindByUser", req, func(c *model.Comment) bool { return c.UserID == userID })
}

func (s *fakeCommentStore) FindReplies(_ context.Context, parentID uuid.UUID, req pagination.Request) ([]*model.Comment, int64, error) {
	return s.list("FindReplies", req, func(c *model.Comment) bool { return c.IsReply() && *c.ParentCommentID == parentID })
}

func (s *fakeCommentStore) FindAllReplies(_ context.Context, parentID uuid.UUID) ([]*model.Comment, error) {
	s.recordCall("FindAllReplies")
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matching(func(c *model.Comment) bool { return c.IsReply() && *c.ParentCommentID == parentID }), nil
}

func (s *fakeCommentStore) Save(_ context.Context, comment *model.Comment) (*model.Comment, error) {
	s.recordCall("Save")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	model.EnsureID(&comment.ID)
	if _, ok := s.comments[comment.ID]; !ok {
		s.order = append(s.order, comment.ID)
	}
	s.comments[comment.ID] = clone(comment)
	return clone(comment), nil
}

func (s *fakeCommentStore) Delete(_ context.Context, id uuid.UUID) error {
	s.recordCall("Delete")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.get(id); err != nil {
		return err
	}
	delete(s.comments, id)
	return nil
}

func (s *fakeCommentStore) IncrementReplyCount(_ context.Context, id uuid.UUID) error {
	s.recordCall("IncrementReplyCount")
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.get(id)
	if err != nil {
		return err
	}
	c.ReplyCount++
	return nil
}

func (s *fakeCommentStore) AdjustLikeCount(_ context.Context, id uuid.UUID, delta int64) error {
	s.recordCall("AdjustLikeCount")
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.get(id)
	if err != nil {
		return err
	}
	c.Stats.LikeCount = max(0, c.Stats.LikeCount+delta)
	return nil
}

type fakeSavedPostStore struct {
	callRecorder
	mu    sync.Mutex
	saved map[uuid.UUID]*model.SavedPost
	order []uuid.UUID
}

var _ store.SavedPostStore = (*fakeSavedPostStore)(nil)

func newFakeSavedPostStore() *fakeSavedPostStore {
	return &fakeSavedPostStore{saved: map[uuid.UUID]*model.SavedPost{}}
}

func (s *fakeSavedPostStore) FindByID(_ context.Context, id uuid.UUID) (*model.SavedPost, error) {
	s.recordCall("FindByID")
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.saved[id]
	if !ok {
		return nil, store.NotFound("saved_post", "id", id.String())
	}
	return clone(sp), nil
}

func (s *fakeSavedPostStore) FindByUserAndPost(_ context.Context, userID, postID uuid.UUID) (*model.SavedPost, error) {
	s.recordCall("FindByUserAndPost")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.saved {
		if sp.UserID == userID && sp.PostID == postID {
			return clone(sp), nil
		}
	}
	return nil, store.NotFound("saved_post", "user_post", userID.String())
}

func (s *fakeSavedPostStore) FindByUser(_ context.Context, userID uuid.UUID, req pagination.Request) ([]*model.SavedPost, int64, error) {
	s.recordCall("FindByUser")
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*model.SavedPost
	for _, id := range s.order {
		if sp, ok := s.saved[id]; ok && sp.UserID == userID {
			all = append(all, clone(sp))
		}
	}
	items, total := page(all, req)
	return items, total, nil
}

func (s *fakeSavedPostStore) Save(_ context.Context, saved *model.SavedPost) (*model.SavedPost, error) {
	s.recordCall("Save")
	s.mu.Lock()
	defer s.mu.Unlock()
	model.EnsureID(&saved.ID)
	if _, ok := s.saved[saved.ID]; !ok {
		s.order = append(s.order, saved.ID)
	}
	s.saved[saved.ID] = clone(saved)
	return clone(saved), nil
}

func (s *fakeSavedPostStore) Delete(_ context.Context, id uuid.UUID) error {
	s.recordCall("Delete")
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, id)
	return nil
}

type fakeLikeStore struct {
	callRecorder
	mu    sync.Mutex
	likes map[uuid.UUID]*model.Like
}

var _ store.LikeStore = (*fakeLikeStore)(nil)

func newFakeLikeStore() *fakeLikeStore {
	return &fakeLikeStore{likes: map[uuid.UUID]*model.Like{}}
}

func (s *fakeLikeStore) FindByID(_ context.Context, id uuid.UUID) (*model.Like, error) {
	s.recordCall("FindByID")
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.likes[id]
	if !ok {
		return nil, store.NotFound("like", "id", id.String())
	}
	return clone(l), nil
}

func (s *fakeLikeStore) FindByUserAndTarget(_ context.Context, userID, targetID uuid.UUID, targetType model.TargetType) (*model.Like, error) {
	s.recordCall("FindByUserAndTarget")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.likes {
		if l.UserID == userID && l.TargetID == targetID && l.TargetType == targetType {
			return clone(l), nil
		}
	}
	return nil, store.NotFound("like", "user_target", userID.String())
}

func (s *fakeLikeStore) FindByTarget(_ context.Context, targetID uuid.UUID, targetType model.TargetType, req pagination.Request) ([]*model.Like, int64, error) {
	s.recordCall("FindByTarget")
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*model.Like
	for _, l := range s.likes {
		if l.TargetID == targetID && l.TargetType == targetType {
			all = append(all, clone(l))
		}
	}
	items, total := page(all, req)
	return items, total, nil
}

func (s *fakeLikeStore) CountByTarget(ctx context.Context, targetID uuid.UUID, targetType model.TargetType) (int64, error) {
	_, total, err := s.FindByTarget(ctx, targetID, targetType, pagination.Request{Size: pagination.MaxSize})
	return total, err
}

func (s *fakeLikeStore) Save(_ context.Context, like *model.Like) (*model.Like, error) {
	s.recordCall("Save")
	s.mu.Lock()
	defer s.mu.Unlock()
	model.EnsureID(&like.ID)
	s.likes[like.ID] = clone(like)
	return clone(like), nil
}

func (s *fakeLikeStore) Delete(_ context.Context, id uuid.UUID) error {
	s.recordCall("Delete")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.likes[id]; !ok {
		return store.NotFound("like", "id", id.String())
	}
	delete(s.likes, id)
	return nil
}
