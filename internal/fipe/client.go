package fipe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

const defaultBaseURL = "https://fipe.parallelum.com.br/api/v2"

// cacheTTL bounds how stale catalog data may get. FIPE tables are
// published monthly, so a day is plenty fresh.
const cacheTTL = 24 * time.Hour

// Item is one {code, name} pair from the FIPE tables.
type Item struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Client fetches the Brazilian FIPE vehicle catalog. Responses are
// memoized per endpoint for the cache TTL; entries expire independently.
type Client struct {
	baseURL    string
	httpClient *http.Client
	clock      clockz.Clock
	ttl        time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	items   []Item
	fetched time.Time
}

// NewClient builds a Client against the public FIPE API. FIPE_BASE_URL
// and FIPE_CACHE_TTL override the endpoint and cache lifetime.
func NewClient() *Client {
	baseURL := os.Getenv("FIPE_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	ttl := time.Duration(0)
	if ttlStr := os.Getenv("FIPE_CACHE_TTL"); ttlStr != "" {
		if parsed, err := time.ParseDuration(ttlStr); err == nil {
			ttl = parsed
		}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		ttl:        ttl,
		cache:      map[string]cacheEntry{},
	}
}

func (c *Client) getClock() clockz.Clock {
	if c.clock == nil {
		return clockz.RealClock
	}
	return c.clock
}

func (c *Client) getTTL() time.Duration {
	if c.ttl <= 0 {
		return cacheTTL
	}
	return c.ttl
}

// Brands lists every vehicle manufacturer.
func (c *Client) Brands(ctx context.Context) ([]Item, error) {
	return c.fetch(ctx, "brands", "/cars/brands")
}

// Models lists the models of one brand.
func (c *Client) Models(ctx context.Context, brand string) ([]Item, error) {
	return c.fetch(ctx, "models:"+brand, "/cars/brands/"+url.PathEscape(brand)+"/models")
}

// Years lists the model years of one model.
func (c *Client) Years(ctx context.Context, brand, model string) ([]Item, error) {
	key := "years:" + brand + ":" + model
	return c.fetch(ctx, key, "/cars/brands/"+url.PathEscape(brand)+"/models/"+url.PathEscape(model)+"/years")
}

func (c *Client) fetch(ctx context.Context, key, path string) ([]Item, error) {
	if items, ok := c.cached(key); ok {
		return items, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fipe request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fipe request %s: unexpected status %d", path, resp.StatusCode)
	}

	var items []Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("fipe decode %s: %w", path, err)
	}

	c.store(key, items)
	return items, nil
}

func (c *Client) cached(key string) ([]Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.cache[key]
	if !ok || c.getClock().Since(entry.fetched) >= c.getTTL() {
		return nil, false
	}
	return entry.items, true
}

func (c *Client) store(key string, items []Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cacheEntry{items: items, fetched: c.getClock().Now()}
}
