package imagesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Image is a single search hit.
type Image struct {
	URL          string `json:"url"`
	Alt          string `json:"alt,omitempty"`
	Photographer string `json:"photographer,omitempty"`
	SourceURL    string `json:"source_url,omitempty"`
	Provider     string `json:"provider"`
}

// Provider searches one external image service. A query with no results
// returns (nil, nil).
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) (*Image, error)
}

const defaultTimeout = 10 * time.Second

var errStatus = errors.New("unexpected provider status")

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

func getJSON(ctx context.Context, client *http.Client, endpoint string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%w: %d", errStatus, resp.StatusCode)
	}
	return json.NewDecoder(io.LimitReader(resp.Body, 2<<20)).Decode(out)
}

func withQuery(base, path string, params url.Values) string {
	return strings.TrimRight(base, "/") + path + "?" + params.Encode()
}

// Unsplash searches api.unsplash.com.
type Unsplash struct {
	AccessKey string
	BaseURL   string
	Client    *http.Client
}

func (u *Unsplash) Name() string { return "unsplash" }

func (u *Unsplash) Search(ctx context.Context, query string) (*Image, error) {
	base := u.BaseURL
	if base == "" {
		base = "https://api.unsplash.com"
	}
	client := u.Client
	if client == nil {
		client = defaultHTTPClient()
	}
	params := url.Values{"query": {query}, "per_page": {"1"}, "orientation": {"landscape"}}
	var body struct {
		Results []struct {
			AltDescription string `json:"alt_description"`
			URLs           struct {
				Regular string `json:"regular"`
			} `json:"urls"`
			User struct {
				Name string `json:"name"`
			} `json:"user"`
			Links struct {
				HTML string `json:"html"`
			} `json:"links"`
		} `json:"results"`
	}
	header := http.Header{"Authorization": {"Client-ID " + u.AccessKey}}
	if err := getJSON(ctx, client, withQuery(base, "/search/photos", params), header, &body); err != nil {
		return nil, fmt.Errorf("unsplash: %w", err)
	}
	for _, r := range body.Results {
		if r.URLs.Regular != "" {
			return &Image{URL: r.URLs.Regular, Alt: r.AltDescription, Photographer: r.User.Name, SourceURL: r.Links.HTML, Provider: u.Name()}, nil
		}
	}
	return nil, nil
}

// Pexels searches api.pexels.com.
type Pexels struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func (p *Pexels) Name() string { return "pexels" }

func (p *Pexels) Search(ctx context.Context, query string) (*Image, error) {
	base := p.BaseURL
	if base == "" {
		base = "https://api.pexels.com"
	}
	client := p.Client
	if client == nil {
		client = defaultHTTPClient()
	}
	params := url.Values{"query": {query}, "per_page": {"1"}, "orientation": {"landscape"}}
	var body struct {
		Photos []struct {
			Alt          string `json:"alt"`
			Photographer string `json:"photographer"`
			URL          string `json:"url"`
			Src          struct {
				Large string `json:"large"`
			} `json:"src"`
		} `json:"photos"`
	}
	header := http.Header{"Authorization": {p.APIKey}}
	if err := getJSON(ctx, client, withQuery(base, "/v1/search", params), header, &body); err != nil {
		return nil, fmt.Errorf("pexels: %w", err)
	}
	for _, ph := range body.Photos {
		if ph.Src.Large != "" {
			return &Image{URL: ph.Src.Large, Alt: ph.Alt, Photographer: ph.Photographer, SourceURL: ph.URL, Provider: p.Name()}, nil
		}
	}
	return nil, nil
}

// Pixabay searches pixabay.com.
type Pixabay struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func (p *Pixabay) Name() string { return "pixabay" }

func (p *Pixabay) Search(ctx context.Context, query string) (*Image, error) {
	base := p.BaseURL
	if base == "" {
		base = "https://pixabay.com"
	}
	client := p.Client
	if client == nil {
		client = defaultHTTPClient()
	}
	params := url.Values{"key": {p.APIKey}, "q": {query}, "image_type": {"photo"}, "per_page": {"3"}, "safesearch": {"true"}}
	var body struct {
		Hits []struct {
			LargeImageURL string `json:"largeImageURL"`
			Tags          string `json:"tags"`
			User          string `json:"user"`
			PageURL       string `json:"pageURL"`
		} `json:"hits"`
	}
	if err := getJSON(ctx, client, withQuery(base, "/api/", params), nil, &body); err != nil {
		return nil, fmt.Errorf("pixabay: %w", err)
	}
	for _, h := range body.Hits {
		if h.LargeImageURL != "" {
			return &Image{URL: h.LargeImageURL, Alt: h.Tags, Photographer: h.User, SourceURL: h.PageURL, Provider: p.Name()}, nil
		}
	}
	return nil, nil
}
