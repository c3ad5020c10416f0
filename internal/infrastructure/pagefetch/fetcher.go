package pagefetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/temoto/robotstxt"

	"NewsHunter/internal/domain"
)

const (
	defaultUserAgent = "NewsHunter/1.0"
	maxBodyBytes     = 2 << 20
	maxBodyRunes     = 20000
)

// ErrBlockedSource marks a page whose publisher or domain is blocklisted.
// Callers drop the record instead of retrying.
var ErrBlockedSource = errors.New("blocked source")

// Page is the extracted article content of one fetched URL.
type Page struct {
	Title     string
	Body      string
	Publisher string
}

// Fetcher downloads article pages and extracts their readable text. It
// honors robots.txt per host and rejects blocklisted publishers.
type Fetcher struct {
	client    *http.Client
	userAgent string

	mu     sync.Mutex
	robots map[string]*robotstxt.Group
}

// NewFetcher wires an HTTP client; a nil client gets a 20s-timeout default.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Fetcher{
		client:    client,
		userAgent: defaultUserAgent,
		robots:    make(map[string]*robotstxt.Group),
	}
}

// Fetch downloads one article page and extracts its readable content.
// Attempts retries once more for premium outlets since their pages are
// worth the extra round trip.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (Page, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return Page{}, fmt.Errorf("parse url: %w", err)
	}

	if err := checkYahooEdition(parsed.Host); err != nil {
		return Page{}, err
	}
	if src, blocked := BlockedSource(pageURL); blocked {
		return Page{}, fmt.Errorf("%w: %s in url", ErrBlockedSource, src)
	}

	allowed, err := f.robotsAllow(ctx, parsed)
	if err == nil && !allowed {
		return Page{}, fmt.Errorf("robots.txt disallows %s", parsed.Path)
	}

	attempts := 1
	if PremiumSource("", pageURL) {
		attempts = 2
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		page, err := f.fetchOnce(ctx, parsed)
		if err == nil {
			return page, nil
		}
		if errors.Is(err, ErrBlockedSource) || ctx.Err() != nil {
			return Page{}, err
		}
		lastErr = err
	}
	return Page{}, lastErr
}

// Enrich fills the body and publisher of a headline-only record from its
// page. Records without a URL pass through untouched.
func (f *Fetcher) Enrich(ctx context.Context, rec domain.ArticleRecord) (domain.ArticleRecord, error) {
	if rec.URL == "" {
		return rec, nil
	}
	page, err := f.Fetch(ctx, rec.URL)
	if err != nil {
		return rec, err
	}
	rec.Body = page.Body
	if rec.Publisher == "" {
		rec.Publisher = page.Publisher
	}
	return rec, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, pageURL *url.URL) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("page returned %s", resp.Status)
	}

	// Redirects can land on a different host than the RSS link advertised.
	final := resp.Request.URL
	if err := checkYahooEdition(final.Host); err != nil {
		return Page{}, err
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Page{}, fmt.Errorf("read body: %w", err)
	}

	return extract(string(raw), final)
}

func extract(rawHTML string, pageURL *url.URL) (Page, error) {
	article, err := readability.FromReader(strings.NewReader(rawHTML), pageURL)
	if err != nil {
		return Page{}, fmt.Errorf("extract content: %w", err)
	}

	publisher := publisherFromMetadata(rawHTML)
	if publisher == "" {
		publisher = article.SiteName
	}
	if publisher == "" {
		publisher = article.Byline
	}
	if src, blocked := BlockedSource(publisher); blocked {
		return Page{}, fmt.Errorf("%w: publisher %s", ErrBlockedSource, src)
	}

	body := strings.TrimSpace(article.TextContent)
	if runes := []rune(body); len(runes) > maxBodyRunes {
		body = string(runes[:maxBodyRunes])
	}

	return Page{
		Title:     article.Title,
		Body:      body,
		Publisher: publisher,
	}, nil
}

// publisherFromMetadata pulls the publisher name out of JSON-LD blocks,
// where news pages declare it more reliably than in visible markup.
func publisherFromMetadata(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	var name string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		var meta struct {
			Publisher struct {
				Name string `json:"name"`
			} `json:"publisher"`
			Provider struct {
				Name string `json:"name"`
			} `json:"provider"`
		}
		if err := json.Unmarshal([]byte(s.Text()), &meta); err != nil {
			return true
		}
		if meta.Publisher.Name != "" {
			name = meta.Publisher.Name
			return false
		}
		if meta.Provider.Name != "" {
			name = meta.Provider.Name
			return false
		}
		return true
	})
	return name
}

// robotsAllow consults the host's robots.txt, cached per host. Hosts whose
// robots.txt cannot be fetched or parsed are treated as allowing everything.
func (f *Fetcher) robotsAllow(ctx context.Context, pageURL *url.URL) (bool, error) {
	group, err := f.robotsGroup(ctx, pageURL)
	if err != nil {
		return true, err
	}
	if group == nil {
		return true, nil
	}
	return group.Test(pageURL.Path), nil
}

func (f *Fetcher) robotsGroup(ctx context.Context, pageURL *url.URL) (*robotstxt.Group, error) {
	f.mu.Lock()
	group, ok := f.robots[pageURL.Host]
	f.mu.Unlock()
	if ok {
		return group, nil
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", pageURL.Scheme, pageURL.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, err
	}
	group = data.FindGroup(f.userAgent)

	f.mu.Lock()
	f.robots[pageURL.Host] = group
	f.mu.Unlock()
	return group, nil
}

// checkYahooEdition rejects Yahoo's international editions; only the US
// finance site is hunted.
func checkYahooEdition(host string) error {
	h := strings.ToLower(host)
	if !strings.Contains(h, "yahoo.com") {
		return nil
	}
	if h == "finance.yahoo.com" || h == "www.finance.yahoo.com" {
		return nil
	}
	return fmt.Errorf("%w: non-US yahoo edition %s", ErrBlockedSource, host)
}
