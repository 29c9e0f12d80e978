package seed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"lifeway-backend/internal/blog"
	"lifeway-backend/internal/catalog"
	"lifeway-backend/internal/shared/telemetry"
)

const (
	DefaultBatchSize   = 50
	DefaultConcurrency = 4
)

// BlogWriter is the subset of *blog.Service the seeder needs.
type BlogWriter interface {
	CreateCategory(ctx context.Context, name, slug, description string) (blog.Category, error)
	ListCategories(ctx context.Context) ([]blog.Category, error)
	CreateTag(ctx context.Context, name, slug string) (blog.Tag, error)
	ListTags(ctx context.Context) ([]blog.Tag, error)
	CreatePost(ctx context.Context, in blog.PostInput) (blog.Post, error)
}

// CatalogWriter is the subset of *catalog.Service the seeder needs.
type CatalogWriter interface {
	Insert(ctx context.Context, table string, rows []catalog.Row) error
}

type Options struct {
	BatchSize   int
	Concurrency int
	DryRun      bool
}

// Stats counts what a run wrote or, on a dry run, would write.
type Stats struct {
	Categories  int
	Tags        int
	Posts       int
	CatalogRows int
	Skipped     int
	Batches     int
}

type Seeder struct {
	Blog    BlogWriter
	Catalog CatalogWriter
}

type batch struct {
	label string
	run   func(ctx context.Context) error
	size  int
}

// Run seeds taxonomies first, then issues post and catalog batches with at
// most Concurrency in flight. The first failing batch cancels the rest.
// Rows that already exist are skipped, so Run can be repeated.
func (s *Seeder) Run(ctx context.Context, opts Options) (Stats, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	var stats Stats
	if opts.DryRun {
		stats.Categories = len(sampleCategories)
		stats.Tags = len(sampleTags)
		stats.Posts = len(samplePosts)
		for _, rows := range sampleCatalog {
			stats.CatalogRows += len(rows)
		}
		stats.Batches = len(s.batches(nil, nil, opts.BatchSize, &atomic.Int64{}, &atomic.Int64{}, &atomic.Int64{}))
		return stats, nil
	}

	categories, tags, err := s.seedTaxonomies(ctx, &stats)
	if err != nil {
		return stats, err
	}

	var posts, rows, skipped atomic.Int64
	batches := s.batches(categories, tags, opts.BatchSize, &posts, &rows, &skipped)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for _, b := range batches {
		b := b
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := b.run(gctx); err != nil {
				return fmt.Errorf("seed %s: %w", b.label, err)
			}
			telemetry.Info("seed.batch", map[string]any{"batch": b.label, "size": b.size})
			return nil
		})
	}
	err = g.Wait()

	stats.Posts = int(posts.Load())
	stats.CatalogRows = int(rows.Load())
	stats.Skipped += int(skipped.Load())
	stats.Batches = len(batches)
	return stats, err
}

func (s *Seeder) seedTaxonomies(ctx context.Context, stats *Stats) (map[string]string, map[string]string, error) {
	for _, c := range sampleCategories {
		_, err := s.Blog.CreateCategory(ctx, c.Name, "", c.Description)
		switch {
		case errors.Is(err, blog.ErrConflict):
			stats.Skipped++
		case err != nil:
			return nil, nil, fmt.Errorf("seed category %q: %w", c.Name, err)
		default:
			stats.Categories++
		}
	}
	for _, name := range sampleTags {
		_, err := s.Blog.CreateTag(ctx, name, "")
		switch {
		case errors.Is(err, blog.ErrConflict):
			stats.Skipped++
		case err != nil:
			return nil, nil, fmt.Errorf("seed tag %q: %w", name, err)
		default:
			stats.Tags++
		}
	}

	cats, err := s.Blog.ListCategories(ctx)
	if err != nil {
		return nil, nil, err
	}
	tags, err := s.Blog.ListTags(ctx)
	if err != nil {
		return nil, nil, err
	}
	catIDs := make(map[string]string, len(cats))
	for _, c := range cats {
		catIDs[c.Name] = c.ID
	}
	tagIDs := make(map[string]string, len(tags))
	for _, t := range tags {
		tagIDs[t.Name] = t.ID
	}
	return catIDs, tagIDs, nil
}

func (s *Seeder) batches(categories, tags map[string]string, size int, posts, rows, skipped *atomic.Int64) []batch {
	var out []batch

	for i, chunk := range chunks(samplePosts, size) {
		chunk := chunk
		out = append(out, batch{
			label: fmt.Sprintf("posts[%d]", i),
			size:  len(chunk),
			run: func(ctx context.Context) error {
				for _, p := range chunk {
					err := s.createPost(ctx, p, categories, tags)
					switch {
					case errors.Is(err, blog.ErrConflict):
						skipped.Add(1)
					case err != nil:
						return err
					default:
						posts.Add(1)
					}
				}
				return nil
			},
		})
	}

	tables := make([]string, 0, len(sampleCatalog))
	for name := range sampleCatalog {
		tables = append(tables, name)
	}
	sort.Strings(tables)
	for _, table := range tables {
		table := table
		for i, chunk := range chunks(sampleCatalog[table], size) {
			chunk := chunk
			out = append(out, batch{
				label: fmt.Sprintf("%s[%d]", table, i),
				size:  len(chunk),
				run: func(ctx context.Context) error {
					if err := s.Catalog.Insert(ctx, table, chunk); err != nil {
						return err
					}
					rows.Add(int64(len(chunk)))
					return nil
				},
			})
		}
	}
	return out
}

func (s *Seeder) createPost(ctx context.Context, p samplePost, categories, tags map[string]string) error {
	published := true
	title, summary, body := p.Title, p.Summary, p.Body
	slug := blog.Slugify(p.Title)
	in := blog.PostInput{
		Title:     &title,
		Slug:      &slug,
		Summary:   &summary,
		Body:      &body,
		Published: &published,
	}
	if id, ok := categories[p.Category]; ok {
		in.CategoryID = &id
	}
	ids := []string{}
	for _, name := range p.Tags {
		if id, ok := tags[name]; ok {
			ids = append(ids, id)
		}
	}
	in.TagIDs = &ids
	_, err := s.Blog.CreatePost(ctx, in)
	return err
}

func chunks[T any](items []T, size int) [][]T {
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
