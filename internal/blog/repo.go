package blog

import "context"

// Repo defines persistence operations for posts, categories and tags.
type Repo interface {
	CreatePost(ctx context.Context, p Post, tagIDs []string) error
	UpdatePost(ctx context.Context, p Post, tagIDs []string, replaceTags bool) error
	DeletePost(ctx context.Context, id string) error
	GetPost(ctx context.Context, id string) (Post, error)
	GetPostBySlug(ctx context.Context, slug string) (Post, error)
	ListPosts(ctx context.Context, f ListFilter) ([]Post, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
	PostsWithoutImage(ctx context.Context, limit int) ([]ImageCandidate, error)
	SetImage(ctx context.Context, id, imageURL string) error

	CreateCategory(ctx context.Context, c Category) error
	ListCategories(ctx context.Context) ([]Category, error)
	CreateTag(ctx context.Context, t Tag) error
	ListTags(ctx context.Context) ([]Tag, error)
}
