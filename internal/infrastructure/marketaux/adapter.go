package marketaux

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsHunter/internal/domain"
	"NewsHunter/internal/infrastructure/pagefetch"
	"NewsHunter/internal/scan"
)

// Adapter exposes the MarketAux client as a company-engine source. It is
// the paid backstop behind the free RSS discovery layer.
type Adapter struct {
	client *Client
	logger *slog.Logger
}

// NewAdapter wraps a client for the scan engine.
func NewAdapter(client *Client, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{client: client, logger: logger}
}

// Name identifies the adapter inside scan reports.
func (a *Adapter) Name() string { return "marketaux" }

// Fetch pulls per-ticker news for the session date. One ticker's API
// failure is logged and skipped; the error return means no ticker worked.
func (a *Adapter) Fetch(ctx context.Context, req scan.Request) ([]domain.ArticleRecord, error) {
	tickers := req.Filters.Companies
	if len(tickers) == 0 {
		return nil, nil
	}

	var (
		records []domain.ArticleRecord
		failed  int
		lastErr error
	)
	for _, ticker := range tickers {
		articles, err := a.client.CompanyNews(ctx, ticker, req.Session.Date)
		if err != nil {
			failed++
			lastErr = err
			a.logger.Warn("marketaux ticker fetch failed", "ticker", ticker, "error", err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		for _, art := range articles {
			rec, ok := a.toRecord(art, ticker, req.Session)
			if !ok {
				continue
			}
			records = append(records, rec)
		}
	}

	if failed == len(tickers) {
		return nil, fmt.Errorf("all %d tickers failed, last: %w", len(tickers), lastErr)
	}
	return records, nil
}

func (a *Adapter) toRecord(art Article, ticker string, sess domain.TradingSession) (domain.ArticleRecord, bool) {
	if art.Title == "" {
		return domain.ArticleRecord{}, false
	}
	if _, blocked := pagefetch.BlockedSource(art.Title + " " + art.Source); blocked {
		return domain.ArticleRecord{}, false
	}

	published, err := time.Parse(time.RFC3339, art.PublishedAt)
	if err != nil {
		a.logger.Debug("unparseable published_at", "value", art.PublishedAt)
		published = sess.Date
	}

	return domain.ArticleRecord{
		Source:      "marketaux",
		URL:         art.URL,
		Headline:    art.Title,
		Body:        art.Description,
		Publisher:   art.Source,
		PublishedAt: published,
		Category:    domain.Category(ticker),
		SessionDate: sess.Date,
	}, true
}
