package marketaux

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const (
	defaultBaseURL  = "https://api.marketaux.com"
	newsPath        = "/v1/news/all"
	pagesPerTicker  = 2
	articlesPerPage = 3
	keyAttempts     = 3
)

// ErrNoAPIKeys means the client was built without credentials.
var ErrNoAPIKeys = errors.New("marketaux: no api keys configured")

// Article is one MarketAux news item as the API returns it.
type Article struct {
	UUID        string `json:"uuid"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
}

type apiResponse struct {
	Data  []Article `json:"data"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client talks to the MarketAux news API. Free-tier keys exhaust quickly,
// so the client carries a ring of keys and rotates on usage_limit_reached.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger

	mu   sync.Mutex
	keys []string
	idx  int
}

// Options tune the MarketAux client.
type Options struct {
	// BaseURL overrides the API host, for tests.
	BaseURL string
	Client  *http.Client
	Logger  *slog.Logger
}

// NewClient builds a client over the given key ring.
func NewClient(keys []string, opts Options) (*Client, error) {
	if len(keys) == 0 {
		return nil, ErrNoAPIKeys
	}
	base := opts.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := opts.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: base, client: httpClient, logger: logger, keys: keys}, nil
}

func (c *Client) currentKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keys[c.idx]
}

func (c *Client) rotateKey() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.idx = (c.idx + 1) % len(c.keys)
}

// CompanyNews fetches up to two metadata pages for one ticker on one
// calendar date.
func (c *Client) CompanyNews(ctx context.Context, ticker string, date time.Time) ([]Article, error) {
	var articles []Article
	for page := 1; page <= pagesPerTicker; page++ {
		items, err := c.fetchPage(ctx, ticker, date, page)
		if err != nil {
			return nil, fmt.Errorf("ticker %s page %d: %w", ticker, page, err)
		}
		articles = append(articles, items...)
		// An empty first page means the later pages are empty too.
		if page == 1 && len(items) == 0 {
			break
		}
	}
	return articles, nil
}

func (c *Client) fetchPage(ctx context.Context, ticker string, date time.Time, page int) ([]Article, error) {
	var lastErr error
	for attempt := 0; attempt < keyAttempts; attempt++ {
		key := c.currentKey()
		resp, err := c.request(ctx, ticker, date, page, key)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if resp.Error != nil {
			if resp.Error.Code == "usage_limit_reached" {
				c.logger.Warn("marketaux key exhausted, rotating", "ticker", ticker)
				c.rotateKey()
				lastErr = fmt.Errorf("usage limit reached")
				continue
			}
			return nil, fmt.Errorf("api error %s: %s", resp.Error.Code, resp.Error.Message)
		}
		return resp.Data, nil
	}
	return nil, lastErr
}

func (c *Client) request(ctx context.Context, ticker string, date time.Time, page int, key string) (*apiResponse, error) {
	query := url.Values{}
	query.Set("symbols", ticker)
	query.Set("published_on", date.Format("2006-01-02"))
	query.Set("language", "en")
	query.Set("filter_entities", "true")
	query.Set("limit", fmt.Sprint(articlesPerPage))
	query.Set("page", fmt.Sprint(page))
	query.Set("api_token", key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+newsPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request news: %w", err)
	}
	defer resp.Body.Close()

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &payload, nil
}
