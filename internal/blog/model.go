package blog

import "time"

// Post is a blog article.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Summary    string    `json:"summary"`
	Body       string    `json:"body"`
	Author     string    `json:"author,omitempty"`
	Published  bool      `json:"published"`
	ViewCount  int64     `json:"view_count"`
	CategoryID *string   `json:"category_id"`
	ImageURL   *string   `json:"image_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Tags       []Tag     `json:"tags"`
}

// Category groups posts.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Tag labels posts.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// ListFilter narrows ListPosts.
type ListFilter struct {
	Published  *bool
	CategoryID string
	Limit      int
	Offset     int
}

// PostInput is the writable part of a post. Nil fields are left unchanged on update.
type PostInput struct {
	Title      *string   `json:"title"`
	Slug       *string   `json:"slug"`
	Summary    *string   `json:"summary"`
	Body       *string   `json:"body"`
	Author     *string   `json:"author"`
	Published  *bool     `json:"published"`
	CategoryID *string   `json:"category_id"`
	ImageURL   *string   `json:"image_url"`
	TagIDs     *[]string `json:"tag_ids"`
}

// ImageCandidate is a post lacking image_url, with its category name.
type ImageCandidate struct {
	ID       string
	Title    string
	Category string
}
