package imagesearch

import (
	"context"
	"strings"
	"time"
	"unicode"

	"lifeway-backend/internal/shared/telemetry"
)

// Article is a post that needs an image.
type Article struct {
	ID       string
	Title    string
	Category string
}

// ArticleSource lists posts without an image and stores the chosen one.
type ArticleSource interface {
	ListMissingImages(ctx context.Context, limit int) ([]Article, error)
	SetImage(ctx context.Context, id, imageURL string) error
}

// Finder is the part of Searcher the backfiller uses.
type Finder interface {
	FindForArticle(ctx context.Context, keywords []string) (*Image, error)
}

// BackfillStats summarises a run.
type BackfillStats struct {
	Scanned int
	Updated int
	Missed  int
	Failed  int
}

// Backfiller walks posts without image_url and assigns one each.
type Backfiller struct {
	Articles ArticleSource
	Finder   Finder
	// Delay is slept between articles to stay under provider rate limits.
	Delay time.Duration
	Limit int
	Sleep func(ctx context.Context, d time.Duration) error
}

// Run processes up to Limit articles and stops early when ctx is cancelled.
func (b *Backfiller) Run(ctx context.Context) (BackfillStats, error) {
	limit := b.Limit
	if limit <= 0 {
		limit = 100
	}
	articles, err := b.Articles.ListMissingImages(ctx, limit)
	if err != nil {
		return BackfillStats{}, err
	}

	var stats BackfillStats
	for i, a := range articles {
		if i > 0 {
			if err := b.sleep(ctx, b.Delay); err != nil {
				return stats, err
			}
		}
		stats.Scanned++

		img, err := b.Finder.FindForArticle(ctx, Keywords(a.Title, a.Category))
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			stats.Failed++
			telemetry.Warn("image_backfill.search_failed", map[string]any{"post_id": a.ID, "error": err})
			continue
		}
		if img == nil {
			stats.Missed++
			continue
		}
		if err := b.Articles.SetImage(ctx, a.ID, img.URL); err != nil {
			stats.Failed++
			telemetry.Error("image_backfill.update_failed", map[string]any{"post_id": a.ID, "error": err})
			continue
		}
		stats.Updated++
		telemetry.Info("image_backfill.updated", map[string]any{"post_id": a.ID, "provider": img.Provider})
	}
	return stats, nil
}

func (b *Backfiller) sleep(ctx context.Context, d time.Duration) error {
	if b.Sleep != nil {
		return b.Sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var stopwords = map[string]bool{
	"a": true, "o": true, "os": true, "as": true, "de": true, "da": true, "do": true, "das": true, "dos": true,
	"e": true, "em": true, "no": true, "na": true, "nos": true, "nas": true, "para": true, "por": true, "com": true,
	"um": true, "uma": true, "como": true, "que": true, "seu": true, "sua": true, "the": true, "and": true,
	"of": true, "to": true, "in": true, "for": true, "how": true,
}

// Keywords derives search queries from a title and category: the full title
// first, then the category, then the longest significant words.
func Keywords(title, category string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, s)
	}

	add(title)
	add(category)

	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	significant := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) > 3 && !stopwords[w] {
			significant = append(significant, w)
		}
	}
	if len(significant) >= 2 {
		add(significant[0] + " " + significant[1])
	}
	for _, w := range significant {
		if len(out) >= 5 {
			break
		}
		add(w)
	}
	return out
}
