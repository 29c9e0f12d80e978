package imagesearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name    string
	mu      sync.Mutex
	queries []string
	hits    map[string]*Image
	err     error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(ctx context.Context, query string) (*Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.hits[query], nil
}

func TestSearchReturnsNilWhenEveryProviderIsEmpty(t *testing.T) {
	a := &stubProvider{name: "a"}
	b := &stubProvider{name: "b", err: errors.New("429")}
	s := &Searcher{Providers: []Provider{a, b}}

	img, err := s.Search(context.Background(), "green card")
	require.NoError(t, err)
	assert.Nil(t, img)
	assert.Equal(t, []string{"green card"}, a.queries)
	assert.Equal(t, []string{"green card"}, b.queries)
}

func TestSearchHonoursPriority(t *testing.T) {
	first := &stubProvider{name: "first", hits: map[string]*Image{"miami": {URL: "https://a/1.jpg", Provider: "first"}}}
	second := &stubProvider{name: "second", hits: map[string]*Image{"miami": {URL: "https://b/1.jpg", Provider: "second"}}}
	s := &Searcher{Providers: []Provider{first, second}}

	img, err := s.Search(context.Background(), "miami")
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, "first", img.Provider)
	assert.Empty(t, second.queries)
}

func TestFindForArticleProceedsThroughFallbackQueries(t *testing.T) {
	p := &stubProvider{name: "p", hits: map[string]*Image{"new york city skyline": {URL: "https://x/nyc.jpg"}}}
	s := &Searcher{Providers: []Provider{p}}

	img, err := s.FindForArticle(context.Background(), []string{"visto eb-2 niw"})
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, "https://x/nyc.jpg", img.URL)
	assert.Equal(t, []string{"visto eb-2 niw", "american flag usa", "statue of liberty", "new york city skyline"}, p.queries)
}

func TestFindForArticleAllMissReturnsNil(t *testing.T) {
	s := &Searcher{Providers: []Provider{&stubProvider{name: "p"}}}
	img, err := s.FindForArticle(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Nil(t, img)
}

func TestNewSearcherSkipsUnconfigured(t *testing.T) {
	s := NewSearcher(Keys{Pexels: "k"})
	require.Len(t, s.Providers, 1)
	assert.Equal(t, "pexels", s.Providers[0].Name())
	assert.False(t, NewSearcher(Keys{}).Enabled())
}

func TestUnsplashProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "Client-ID key", r.Header.Get("Authorization"))
		assert.Equal(t, "orlando", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(`{"results":[{"alt_description":"beach","urls":{"regular":"https://img/1.jpg"},"user":{"name":"Jo"},"links":{"html":"https://u/1"}}]}`))
	}))
	defer srv.Close()

	img, err := (&Unsplash{AccessKey: "key", BaseURL: srv.URL}).Search(context.Background(), "orlando")
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, "https://img/1.jpg", img.URL)
	assert.Equal(t, "unsplash", img.Provider)
}

func TestPexelsProviderEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pk", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"photos":[]}`))
	}))
	defer srv.Close()

	img, err := (&Pexels{APIKey: "pk", BaseURL: srv.URL}).Search(context.Background(), "nada")
	require.NoError(t, err)
	assert.Nil(t, img)
}

func TestPixabayProviderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "xk", r.URL.Query().Get("key"))
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := (&Pixabay{APIKey: "xk", BaseURL: srv.URL}).Search(context.Background(), "usa")
	assert.ErrorIs(t, err, errStatus)
}

type memArticles struct {
	articles []Article
	images   map[string]string
}

func (m *memArticles) ListMissingImages(ctx context.Context, limit int) ([]Article, error) {
	return m.articles, nil
}

func (m *memArticles) SetImage(ctx context.Context, id, imageURL string) error {
	m.images[id] = imageURL
	return nil
}

func TestBackfillerSleepsBetweenArticles(t *testing.T) {
	src := &memArticles{
		articles: []Article{{ID: "1", Title: "Vistos de estudante F-1"}, {ID: "2", Title: "Morar em Orlando"}, {ID: "3", Title: "Sem imagem"}},
		images:   map[string]string{},
	}
	p := &stubProvider{name: "p", hits: map[string]*Image{
		"Vistos de estudante F-1": {URL: "https://x/f1.jpg"},
		"Morar em Orlando":        {URL: "https://x/orl.jpg"},
	}}
	var slept []time.Duration
	b := &Backfiller{
		Articles: src,
		Finder:   &Searcher{Providers: []Provider{p}},
		Delay:    time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}

	stats, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BackfillStats{Scanned: 3, Updated: 2, Missed: 1}, stats)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, slept)
	assert.Equal(t, "https://x/orl.jpg", src.images["2"])
}

func TestBackfillerStopsOnCancel(t *testing.T) {
	src := &memArticles{articles: []Article{{ID: "1", Title: "a"}, {ID: "2", Title: "b"}}, images: map[string]string{}}
	ctx, cancel := context.WithCancel(context.Background())
	b := &Backfiller{
		Articles: src,
		Finder:   &Searcher{Providers: []Provider{&stubProvider{name: "p"}}},
		Delay:    time.Hour,
	}
	cancel()
	stats, err := b.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, stats.Scanned, 1)
}

func TestKeywords(t *testing.T) {
	got := Keywords("Como conseguir o Green Card pelo EB-2 NIW", "Imigração")
	require.NotEmpty(t, got)
	assert.Equal(t, "Como conseguir o Green Card pelo EB-2 NIW", got[0])
	assert.Equal(t, "Imigração", got[1])
	assert.Contains(t, got, "conseguir green")
	assert.LessOrEqual(t, len(got), 5)
}

func TestSearchHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(&Searcher{Providers: []Provider{&stubProvider{name: "p"}}}).RegisterRoutes(r.Group("/api"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/images/search?q=usa", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, strings.Contains(resp.Body.String(), `"image":null`), resp.Body.String())
}
