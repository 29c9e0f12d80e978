package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"lifeway-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const postColumns = `id, title, slug, summary, body, author, published, view_count, category_id, image_url, created_at, updated_at`

// CreatePost inserts the post and its tag links in one transaction.
func (r *PGRepo) CreatePost(ctx context.Context, p Post, tagIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
INSERT INTO blog_posts (` + postColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = tx.ExecContext(ctx, query,
		p.ID, p.Title, p.Slug, p.Summary, p.Body, nullString(p.Author), p.Published, p.ViewCount,
		p.CategoryID, p.ImageURL, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return classify(err)
	}
	if err := insertTags(ctx, tx, p.ID, tagIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdatePost overwrites the post row; tag links are replaced when replaceTags is set.
func (r *PGRepo) UpdatePost(ctx context.Context, p Post, tagIDs []string, replaceTags bool) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
UPDATE blog_posts
SET title = $2, slug = $3, summary = $4, body = $5, author = $6, published = $7,
    category_id = $8, image_url = $9, updated_at = $10
WHERE id = $1`
	res, err := tx.ExecContext(ctx, query,
		p.ID, p.Title, p.Slug, p.Summary, p.Body, nullString(p.Author), p.Published,
		p.CategoryID, p.ImageURL, p.UpdatedAt,
	)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if replaceTags {
		if _, err := tx.ExecContext(ctx, `DELETE FROM blog_post_tags WHERE post_id = $1`, p.ID); err != nil {
			return err
		}
		if err := insertTags(ctx, tx, p.ID, tagIDs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertTags(ctx context.Context, tx *sql.Tx, postID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx, `INSERT INTO blog_post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, postID, tagID)
		if err != nil {
			return classify(err)
		}
	}
	return nil
}

// DeletePost removes a post; tag links cascade.
func (r *PGRepo) DeletePost(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetPost returns a post with its tags.
func (r *PGRepo) GetPost(ctx context.Context, id string) (Post, error) {
	return r.getOne(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id)
}

// GetPostBySlug returns a post with its tags.
func (r *PGRepo) GetPostBySlug(ctx context.Context, slug string) (Post, error) {
	return r.getOne(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE slug = $1`, slug)
}

func (r *PGRepo) getOne(ctx context.Context, query, arg string) (Post, error) {
	p, err := scanPost(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}
	tags, err := r.tagsFor(ctx, []string{p.ID})
	if err != nil {
		return Post{}, err
	}
	p.Tags = nonNilTags(tags[p.ID])
	return p, nil
}

// ListPosts returns posts newest first.
func (r *PGRepo) ListPosts(ctx context.Context, f ListFilter) ([]Post, error) {
	var (
		where []string
		args  []any
	)
	if f.Published != nil {
		args = append(args, *f.Published)
		where = append(where, fmt.Sprintf("published = $%d", len(args)))
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	query := `SELECT ` + postColumns + ` FROM blog_posts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	ids := []string{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := r.tagsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Tags = nonNilTags(tags[posts[i].ID])
	}
	return posts, nil
}

func (r *PGRepo) tagsFor(ctx context.Context, postIDs []string) (map[string][]Tag, error) {
	out := map[string][]Tag{}
	if len(postIDs) == 0 {
		return out, nil
	}
	placeholders := make([]string, len(postIDs))
	args := make([]any, len(postIDs))
	for i, id := range postIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `
SELECT pt.post_id, t.id, t.name, t.slug, t.created_at
FROM blog_post_tags pt
JOIN blog_tags t ON t.id = pt.tag_id
WHERE pt.post_id IN (` + strings.Join(placeholders, ", ") + `)
ORDER BY t.name`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			postID string
			t      Tag
		)
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, err
		}
		out[postID] = append(out[postID], t)
	}
	return out, rows.Err()
}

// IncrementViews bumps view_count and returns the new value.
func (r *PGRepo) IncrementViews(ctx context.Context, id string) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, `UPDATE blog_posts SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count`, id).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return n, err
}

// PostsWithoutImage lists posts whose image_url is empty, oldest first.
func (r *PGRepo) PostsWithoutImage(ctx context.Context, limit int) ([]ImageCandidate, error) {
	const query = `
SELECT p.id, p.title, COALESCE(c.name, '')
FROM blog_posts p
LEFT JOIN blog_categories c ON c.id = p.category_id
WHERE p.image_url IS NULL OR p.image_url = ''
ORDER BY p.created_at
LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ImageCandidate
	for rows.Next() {
		var c ImageCandidate
		if err := rows.Scan(&c.ID, &c.Title, &c.Category); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetImage stores the image chosen for a post.
func (r *PGRepo) SetImage(ctx context.Context, id, imageURL string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE blog_posts SET image_url = $2, updated_at = $3 WHERE id = $1`, id, imageURL, time.Now().UTC())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateCategory inserts a category.
func (r *PGRepo) CreateCategory(ctx context.Context, c Category) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO blog_categories (id, name, slug, description, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Slug, nullString(c.Description), c.CreatedAt)
	return classify(err)
}

// ListCategories returns categories sorted by name.
func (r *PGRepo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, slug, description, created_at FROM blog_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Category{}
	for rows.Next() {
		var (
			c    Category
			desc sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &desc, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Description = desc.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateTag inserts a tag.
func (r *PGRepo) CreateTag(ctx context.Context, t Tag) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO blog_tags (id, name, slug, created_at) VALUES ($1, $2, $3, $4)`,
		t.ID, t.Name, t.Slug, t.CreatedAt)
	return classify(err)
}

// ListTags returns tags sorted by name.
func (r *PGRepo) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, slug, created_at FROM blog_tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Tag{}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var (
		p        Post
		author   sql.NullString
		category sql.NullString
		image    sql.NullString
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Summary, &p.Body, &author, &p.Published, &p.ViewCount, &category, &image, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Post{}, err
	}
	p.Author = author.String
	if category.Valid {
		p.CategoryID = &category.String
	}
	if image.Valid {
		p.ImageURL = &image.String
	}
	return p, nil
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case db.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: unknown category or tag: %w", ErrInvalidInput, err)
	default:
		return err
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nonNilTags(tags []Tag) []Tag {
	if tags == nil {
		return []Tag{}
	}
	return tags
}
