package imagesearch

import (
	"context"
	"strings"

	"lifeway-backend/internal/shared/metrics"
	"lifeway-backend/internal/shared/telemetry"
)

// FallbackQueries are tried when no article keyword finds an image.
var FallbackQueries = []string{
	"american flag usa",
	"statue of liberty",
	"new york city skyline",
	"usa travel",
}

// Keys holds the optional provider credentials.
type Keys struct {
	Unsplash string
	Pexels   string
	Pixabay  string
}

// Searcher asks each provider in priority order and returns the first hit.
type Searcher struct {
	Providers []Provider
}

// NewSearcher builds a Searcher from the configured keys; providers without a
// key are skipped.
func NewSearcher(keys Keys) *Searcher {
	var providers []Provider
	if keys.Unsplash != "" {
		providers = append(providers, &Unsplash{AccessKey: keys.Unsplash})
	}
	if keys.Pexels != "" {
		providers = append(providers, &Pexels{APIKey: keys.Pexels})
	}
	if keys.Pixabay != "" {
		providers = append(providers, &Pixabay{APIKey: keys.Pixabay})
	}
	return &Searcher{Providers: providers}
}

// Enabled reports whether any provider is configured.
func (s *Searcher) Enabled() bool {
	return s != nil && len(s.Providers) > 0
}

// Search returns the first provider result for query, or (nil, nil) when
// every provider comes back empty or fails. Provider errors are logged only.
func (s *Searcher) Search(ctx context.Context, query string) (*Image, error) {
	query = strings.TrimSpace(query)
	if query == "" || s == nil {
		return nil, nil
	}
	for _, p := range s.Providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := p.Search(ctx, query)
		if err != nil {
			telemetry.Warn("image_search.provider_failed", map[string]any{"provider": p.Name(), "query": query, "error": err})
			continue
		}
		if img != nil {
			metrics.IncImageSearchHit()
			return img, nil
		}
	}
	metrics.IncImageSearchMiss()
	return nil, nil
}

// FindForArticle tries every keyword, then the fallback queries.
func (s *Searcher) FindForArticle(ctx context.Context, keywords []string) (*Image, error) {
	queries := make([]string, 0, len(keywords)+len(FallbackQueries))
	queries = append(queries, keywords...)
	queries = append(queries, FallbackQueries...)
	for _, q := range queries {
		img, err := s.Search(ctx, q)
		if err != nil {
			return nil, err
		}
		if img != nil {
			return img, nil
		}
	}
	return nil, nil
}
