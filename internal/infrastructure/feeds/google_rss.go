package feeds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsHunter/internal/domain"
	"NewsHunter/internal/infrastructure/pagefetch"
	"NewsHunter/internal/scan"
)

const (
	sourceName      = "google-news"
	defaultMaxItems = 40
	userAgent       = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Headline suffixes of Yahoo's international editions; those stories cover
// other markets and are dropped.
var foreignEditions = []string{
	"YAHOO FINANCE UK",
	"YAHOO! FINANCE CANADA",
	"YAHOO FINANCE AUSTRALIA",
	"YAHOO FINANCE SINGAPORE",
}

// Enricher fills the body of a headline-only record from its page.
type Enricher interface {
	Enrich(ctx context.Context, rec domain.ArticleRecord) (domain.ArticleRecord, error)
}

// Options tune a Google News adapter.
type Options struct {
	// BaseURL overrides the Google News host, for tests.
	BaseURL string
	Client  *http.Client
	// Enricher, when set, fetches article pages for body text. Nil keeps
	// records headline-only.
	Enricher Enricher
	Logger   *slog.Logger
	// Lookback widens the acceptance window to this long before session
	// close. Zero restricts items to the session's calendar date.
	Lookback time.Duration
	// MaxItems caps items per feed; defaults to 40.
	MaxItems int
}

// Adapter pulls one engine group's Google News RSS feeds and normalizes
// their items into article records.
type Adapter struct {
	name     string
	targets  func(req scan.Request) []target
	parser   *gofeed.Parser
	enricher Enricher
	logger   *slog.Logger
	lookback time.Duration
	maxItems int
}

// NewMacroAdapter feeds the macro engine: one search feed per macro topic.
func NewMacroAdapter(opts Options) *Adapter {
	base := baseURL(opts)
	return newAdapter("google-news/macro", opts, func(req scan.Request) []target {
		return macroTargets(base, req.Filters.MacroTopics)
	})
}

// NewStocksAdapter feeds the stocks engine: one search feed per catalyst.
func NewStocksAdapter(opts Options) *Adapter {
	base := baseURL(opts)
	return newAdapter("google-news/stocks", opts, func(req scan.Request) []target {
		return catalystTargets(base, req.Filters.StockCatalysts)
	})
}

// NewCompanyAdapter feeds the company engine: one search feed per ticker.
func NewCompanyAdapter(opts Options) *Adapter {
	base := baseURL(opts)
	return newAdapter("google-news/company", opts, func(req scan.Request) []target {
		return companyTargets(base, req.Filters.Companies)
	})
}

func baseURL(opts Options) string {
	if opts.BaseURL != "" {
		return opts.BaseURL
	}
	return defaultBaseURL
}

func newAdapter(name string, opts Options, targets func(req scan.Request) []target) *Adapter {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	if opts.Client != nil {
		parser.Client = opts.Client
	} else {
		parser.Client = &http.Client{Timeout: 15 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxItems := opts.MaxItems
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	return &Adapter{
		name:     name,
		targets:  targets,
		parser:   parser,
		enricher: opts.Enricher,
		logger:   logger,
		lookback: opts.Lookback,
		maxItems: maxItems,
	}
}

// Name identifies the adapter inside scan reports.
func (a *Adapter) Name() string { return a.name }

// Fetch pulls every feed for the request's filters. A single dead feed is
// logged and skipped; the error return is reserved for the case where no
// feed yielded anything.
func (a *Adapter) Fetch(ctx context.Context, req scan.Request) ([]domain.ArticleRecord, error) {
	targets := a.targets(req)
	if len(targets) == 0 {
		return nil, nil
	}

	var (
		records []domain.ArticleRecord
		failed  int
		lastErr error
	)
	for _, tgt := range targets {
		feed, err := a.parser.ParseURLWithContext(tgt.url, ctx)
		if err != nil {
			failed++
			lastErr = err
			a.logger.Warn("feed fetch failed", "adapter", a.name, "category", tgt.category, "error", err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		records = append(records, a.collect(ctx, feed, tgt.category, req.Session)...)
	}

	if failed == len(targets) {
		return nil, fmt.Errorf("all %d feeds failed, last: %w", len(targets), lastErr)
	}
	return records, nil
}

func (a *Adapter) collect(ctx context.Context, feed *gofeed.Feed, category domain.Category, sess domain.TradingSession) []domain.ArticleRecord {
	var records []domain.ArticleRecord
	for i, item := range feed.Items {
		if i >= a.maxItems {
			break
		}
		if item.PublishedParsed == nil {
			continue
		}
		published := *item.PublishedParsed
		if !a.inWindow(published, sess) {
			continue
		}

		headline, publisher := splitTitle(item.Title)
		if headline == "" {
			continue
		}
		if isForeignEdition(item.Title) {
			continue
		}
		if src, blocked := pagefetch.BlockedSource(item.Title + " " + item.Link); blocked {
			a.logger.Debug("item blocklisted", "adapter", a.name, "source", src, "headline", headline)
			continue
		}

		rec := domain.ArticleRecord{
			Source:      sourceName,
			URL:         item.Link,
			Headline:    headline,
			Publisher:   publisher,
			PublishedAt: published,
			Category:    category,
			SessionDate: sess.Date,
		}

		if a.enricher != nil && rec.URL != "" {
			enriched, err := a.enricher.Enrich(ctx, rec)
			if err != nil {
				if errors.Is(err, pagefetch.ErrBlockedSource) {
					a.logger.Debug("page blocklisted", "adapter", a.name, "headline", headline)
					continue
				}
				// Keep the headline-only record; the page may load next run.
				a.logger.Warn("page enrichment failed", "adapter", a.name, "url", rec.URL, "error", err)
			} else {
				rec = enriched
			}
		}

		records = append(records, rec)
	}
	return records
}

// inWindow accepts items published inside the hunt window: the session's
// calendar date, or the configured lookback stretch before its close.
func (a *Adapter) inWindow(published time.Time, sess domain.TradingSession) bool {
	if a.lookback > 0 {
		return !published.Before(sess.Close.Add(-a.lookback))
	}
	py, pm, pd := published.UTC().Date()
	sy, sm, sd := sess.Date.Date()
	return py == sy && pm == sm && pd == sd
}

// splitTitle separates "Headline - Publisher", the shape Google News gives
// item titles.
func splitTitle(title string) (headline, publisher string) {
	idx := strings.LastIndex(title, " - ")
	if idx < 0 {
		return strings.TrimSpace(title), ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}

func isForeignEdition(title string) bool {
	upper := strings.ToUpper(title)
	for _, marker := range foreignEditions {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
