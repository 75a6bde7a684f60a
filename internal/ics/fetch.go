package ics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/minseo-dev/worklight/internal/models"
)

// Subscription is one ICS feed the user follows.
type Subscription struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Fetcher fetches ICS feeds with conditional requests. The last good body
// per URL is kept so a flaky feed degrades to stale data instead of an
// empty calendar.
type Fetcher struct {
	client *http.Client

	mu    sync.Mutex
	cache map[string]*feedCache
}

type feedCache struct {
	etag         string
	lastModified string
	body         []byte
}

// NewFetcher creates a feed fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
		cache:  make(map[string]*feedCache),
	}
}

// Fetch returns the feed body, honoring ETag and Last-Modified. On network
// failure or a non-OK status the last cached body is returned when one
// exists.
func (f *Fetcher) Fetch(ctx context.Context, sub Subscription) ([]byte, error) {
	if sub.URL == "" {
		return nil, errors.New("subscription URL is empty")
	}

	f.mu.Lock()
	cached := f.cache[sub.URL]
	f.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sub.URL, nil)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		if cached.etag != "" {
			req.Header.Set("If-None-Match", cached.etag)
		}
		if cached.lastModified != "" {
			req.Header.Set("If-Modified-Since", cached.lastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if cached != nil {
			return cached.body, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.cache[sub.URL] = &feedCache{
			etag:         resp.Header.Get("ETag"),
			lastModified: resp.Header.Get("Last-Modified"),
			body:         body,
		}
		f.mu.Unlock()
		return body, nil

	case http.StatusNotModified:
		if cached == nil {
			return nil, errors.New("304 Not Modified without a cached body")
		}
		return cached.body, nil

	default:
		if cached != nil {
			return cached.body, nil
		}
		return nil, errors.New(resp.Status)
	}
}

// Events fetches, parses and expands one subscription into external events
// within [from, to).
func (f *Fetcher) Events(ctx context.Context, sub Subscription, from, to time.Time) ([]models.ExternalEvent, error) {
	body, err := f.Fetch(ctx, sub)
	if err != nil {
		return nil, err
	}
	parsed, err := ParseFeed(body)
	if err != nil {
		return nil, err
	}
	return Expand(parsed, sub.Name, from, to), nil
}
