package blog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo for dev and tests.
type MemoryRepo struct {
	mu         sync.RWMutex
	posts      map[string]Post
	postTags   map[string][]string
	categories map[string]Category
	tags       map[string]Tag
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		posts:      map[string]Post{},
		postTags:   map[string][]string{},
		categories: map[string]Category{},
		tags:       map[string]Tag{},
	}
}

func (r *MemoryRepo) CreatePost(ctx context.Context, p Post, tagIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.posts {
		if existing.Slug == p.Slug {
			return ErrConflict
		}
	}
	if err := r.checkRefsLocked(p.CategoryID, tagIDs); err != nil {
		return err
	}
	p.Tags = nil
	r.posts[p.ID] = p
	r.postTags[p.ID] = dedupe(tagIDs)
	return nil
}

func (r *MemoryRepo) UpdatePost(ctx context.Context, p Post, tagIDs []string, replaceTags bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.posts[p.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range r.posts {
		if id != p.ID && other.Slug == p.Slug {
			return ErrConflict
		}
	}
	if err := r.checkRefsLocked(p.CategoryID, tagIDs); err != nil {
		return err
	}
	p.ViewCount = existing.ViewCount
	p.CreatedAt = existing.CreatedAt
	p.Tags = nil
	r.posts[p.ID] = p
	if replaceTags {
		r.postTags[p.ID] = dedupe(tagIDs)
	}
	return nil
}

func (r *MemoryRepo) checkRefsLocked(categoryID *string, tagIDs []string) error {
	if categoryID != nil {
		if _, ok := r.categories[*categoryID]; !ok {
			return ErrInvalidInput
		}
	}
	for _, id := range tagIDs {
		if _, ok := r.tags[id]; !ok {
			return ErrInvalidInput
		}
	}
	return nil
}

func (r *MemoryRepo) DeletePost(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.posts, id)
	delete(r.postTags, id)
	return nil
}

func (r *MemoryRepo) GetPost(ctx context.Context, id string) (Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	return r.withTagsLocked(p), nil
}

func (r *MemoryRepo) GetPostBySlug(ctx context.Context, slug string) (Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.posts {
		if p.Slug == slug {
			return r.withTagsLocked(p), nil
		}
	}
	return Post{}, ErrNotFound
}

func (r *MemoryRepo) ListPosts(ctx context.Context, f ListFilter) ([]Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Post{}
	for _, p := range r.posts {
		if f.Published != nil && p.Published != *f.Published {
			continue
		}
		if f.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != f.CategoryID) {
			continue
		}
		out = append(out, r.withTagsLocked(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Offset >= len(out) {
		return []Post{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *MemoryRepo) IncrementViews(ctx context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return 0, ErrNotFound
	}
	p.ViewCount++
	r.posts[id] = p
	return p.ViewCount, nil
}

func (r *MemoryRepo) PostsWithoutImage(ctx context.Context, limit int) ([]ImageCandidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	posts := make([]Post, 0, len(r.posts))
	for _, p := range r.posts {
		if p.ImageURL == nil || *p.ImageURL == "" {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.Before(posts[j].CreatedAt) })
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	out := make([]ImageCandidate, 0, len(posts))
	for _, p := range posts {
		c := ImageCandidate{ID: p.ID, Title: p.Title}
		if p.CategoryID != nil {
			c.Category = r.categories[*p.CategoryID].Name
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *MemoryRepo) SetImage(ctx context.Context, id, imageURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return ErrNotFound
	}
	p.ImageURL = &imageURL
	p.UpdatedAt = time.Now().UTC()
	r.posts[id] = p
	return nil
}

func (r *MemoryRepo) CreateCategory(ctx context.Context, c Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.categories {
		if existing.Slug == c.Slug {
			return ErrConflict
		}
	}
	r.categories[c.ID] = c
	return nil
}

func (r *MemoryRepo) ListCategories(ctx context.Context) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepo) CreateTag(ctx context.Context, t Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tags {
		if existing.Slug == t.Slug {
			return ErrConflict
		}
	}
	r.tags[t.ID] = t
	return nil
}

func (r *MemoryRepo) ListTags(ctx context.Context) ([]Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tag, 0, len(r.tags))
	for _, t := range r.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// withTagsLocked attaches tag rows sorted by name; callers hold r.mu.
func (r *MemoryRepo) withTagsLocked(p Post) Post {
	tags := []Tag{}
	for _, id := range r.postTags[p.ID] {
		if t, ok := r.tags[id]; ok {
			tags = append(tags, t)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return strings.Compare(tags[i].Name, tags[j].Name) < 0 })
	p.Tags = tags
	return p
}

func dedupe(ids []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
