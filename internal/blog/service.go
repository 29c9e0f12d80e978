package blog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lifeway-backend/internal/imagesearch"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service contains business logic for the blog.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CreatePost validates in, assigns an id and stores a post with zero views.
func (s *Service) CreatePost(ctx context.Context, in PostInput) (Post, error) {
	title, slug, summary, body := deref(in.Title), deref(in.Slug), deref(in.Summary), deref(in.Body)
	if title == "" || slug == "" || summary == "" || body == "" {
		return Post{}, fmt.Errorf("%w: title, slug, summary and body are required", ErrInvalidInput)
	}
	now := s.now()
	p := Post{
		ID:         uuid.NewString(),
		Title:      title,
		Slug:       Slugify(slug),
		Summary:    summary,
		Body:       body,
		Author:     deref(in.Author),
		CategoryID: nonEmpty(in.CategoryID),
		ImageURL:   nonEmpty(in.ImageURL),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if p.Slug == "" {
		return Post{}, fmt.Errorf("%w: invalid slug", ErrInvalidInput)
	}
	if in.Published != nil {
		p.Published = *in.Published
	}
	var tagIDs []string
	if in.TagIDs != nil {
		tagIDs = *in.TagIDs
	}
	if err := s.Repo.CreatePost(ctx, p, tagIDs); err != nil {
		return Post{}, err
	}
	return s.Repo.GetPost(ctx, p.ID)
}

// UpdatePost applies the non-nil fields of in.
func (s *Service) UpdatePost(ctx context.Context, id string, in PostInput) (Post, error) {
	p, err := s.Repo.GetPost(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if in.Title != nil {
		if p.Title = strings.TrimSpace(*in.Title); p.Title == "" {
			return Post{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
	}
	if in.Slug != nil {
		if p.Slug = Slugify(*in.Slug); p.Slug == "" {
			return Post{}, fmt.Errorf("%w: invalid slug", ErrInvalidInput)
		}
	}
	if in.Summary != nil {
		p.Summary = strings.TrimSpace(*in.Summary)
	}
	if in.Body != nil {
		p.Body = strings.TrimSpace(*in.Body)
	}
	if in.Author != nil {
		p.Author = strings.TrimSpace(*in.Author)
	}
	if in.Published != nil {
		p.Published = *in.Published
	}
	if in.CategoryID != nil {
		p.CategoryID = nonEmpty(in.CategoryID)
	}
	if in.ImageURL != nil {
		p.ImageURL = nonEmpty(in.ImageURL)
	}
	p.UpdatedAt = s.now()

	var tagIDs []string
	if in.TagIDs != nil {
		tagIDs = *in.TagIDs
	}
	if err := s.Repo.UpdatePost(ctx, p, tagIDs, in.TagIDs != nil); err != nil {
		return Post{}, err
	}
	return s.Repo.GetPost(ctx, id)
}

func (s *Service) DeletePost(ctx context.Context, id string) error {
	return s.Repo.DeletePost(ctx, id)
}

func (s *Service) GetPost(ctx context.Context, id string) (Post, error) {
	return s.Repo.GetPost(ctx, id)
}

func (s *Service) GetPostBySlug(ctx context.Context, slug string) (Post, error) {
	return s.Repo.GetPostBySlug(ctx, slug)
}

// ListPosts clamps the page size and lists posts newest first.
func (s *Service) ListPosts(ctx context.Context, f ListFilter) ([]Post, error) {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.Repo.ListPosts(ctx, f)
}

func (s *Service) RecordView(ctx context.Context, id string) (int64, error) {
	return s.Repo.IncrementViews(ctx, id)
}

// CreateCategory stores a category; the slug is derived from the name when empty.
func (s *Service) CreateCategory(ctx context.Context, name, slug, description string) (Category, error) {
	c := Category{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Slug:        Slugify(firstNonEmpty(slug, name)),
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now(),
	}
	if c.Name == "" || c.Slug == "" {
		return Category{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		return Category{}, err
	}
	return c, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	out, err := s.Repo.ListCategories(ctx)
	if out == nil && err == nil {
		out = []Category{}
	}
	return out, err
}

// CreateTag stores a tag; the slug is derived from the name when empty.
func (s *Service) CreateTag(ctx context.Context, name, slug string) (Tag, error) {
	t := Tag{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Slug:      Slugify(firstNonEmpty(slug, name)),
		CreatedAt: s.now(),
	}
	if t.Name == "" || t.Slug == "" {
		return Tag{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := s.Repo.CreateTag(ctx, t); err != nil {
		return Tag{}, err
	}
	return t, nil
}

func (s *Service) ListTags(ctx context.Context) ([]Tag, error) {
	out, err := s.Repo.ListTags(ctx)
	if out == nil && err == nil {
		out = []Tag{}
	}
	return out, err
}

// ListMissingImages feeds the image backfill.
func (s *Service) ListMissingImages(ctx context.Context, limit int) ([]imagesearch.Article, error) {
	candidates, err := s.Repo.PostsWithoutImage(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]imagesearch.Article, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, imagesearch.Article{ID: c.ID, Title: c.Title, Category: c.Category})
	}
	return out, nil
}

// SetImage stores the backfilled image for a post.
func (s *Service) SetImage(ctx context.Context, id, imageURL string) error {
	return s.Repo.SetImage(ctx, id, imageURL)
}

var _ imagesearch.ArticleSource = (*Service)(nil)

var accentFold = map[rune]string{
	'á': "a", 'à': "a", 'â': "a", 'ã': "a", 'ä': "a",
	'é': "e", 'è': "e", 'ê': "e", 'ë': "e",
	'í': "i", 'ì': "i", 'î': "i", 'ï': "i",
	'ó': "o", 'ò': "o", 'ô': "o", 'õ': "o", 'ö': "o",
	'ú': "u", 'ù': "u", 'û': "u", 'ü': "u",
	'ç': "c", 'ñ': "n",
}

// Slugify lower-cases s, folds Portuguese accents and joins words with "-".
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if folded, ok := accentFold[r]; ok {
			b.WriteString(folded)
			dash = false
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func nonEmpty(s *string) *string {
	v := deref(s)
	if v == "" {
		return nil
	}
	return &v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
