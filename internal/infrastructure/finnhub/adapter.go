// Package finnhub adapts the Finnhub company-news API as a company-engine
// source alongside the RSS and MarketAux layers.
package finnhub

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"NewsHunter/internal/domain"
	"NewsHunter/internal/infrastructure/pagefetch"
	"NewsHunter/internal/scan"
)

// newsAPI is the slice of the generated Finnhub client the adapter uses,
// narrowed so tests can fake it.
type newsAPI interface {
	CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]finnhub.CompanyNews, error)
}

type apiClient struct {
	client *finnhub.DefaultApiService
}

func (c apiClient) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]finnhub.CompanyNews, error) {
	news, _, err := c.client.CompanyNews(ctx).
		Symbol(symbol).
		From(from.Format("2006-01-02")).
		To(to.Format("2006-01-02")).
		Execute()
	return news, err
}

// Adapter fetches per-ticker company news from Finnhub.
type Adapter struct {
	api    newsAPI
	logger *slog.Logger
}

// NewAdapter builds the adapter over an API key.
func NewAdapter(apiKey string, logger *slog.Logger) *Adapter {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return newAdapter(apiClient{client: client}, logger)
}

func newAdapter(api newsAPI, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{api: api, logger: logger}
}

// Name identifies the adapter inside scan reports.
func (a *Adapter) Name() string { return "finnhub" }

// Fetch pulls the session date's company news per ticker. A single
// ticker's failure is skipped; the error return means no ticker worked.
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
		news, err := a.api.CompanyNews(ctx, ticker, req.Session.Date, req.Session.Date)
		if err != nil {
			failed++
			lastErr = err
			a.logger.Warn("finnhub ticker fetch failed", "ticker", ticker, "error", err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		for _, item := range news {
			rec, ok := toRecord(item, ticker, req.Session)
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

func toRecord(item finnhub.CompanyNews, ticker string, sess domain.TradingSession) (domain.ArticleRecord, bool) {
	rec := domain.ArticleRecord{
		Source:      "finnhub",
		Category:    domain.Category(ticker),
		SessionDate: sess.Date,
	}
	if item.Headline != nil {
		rec.Headline = *item.Headline
	}
	if rec.Headline == "" {
		return domain.ArticleRecord{}, false
	}
	if item.Url != nil {
		rec.URL = *item.Url
	}
	if item.Summary != nil {
		rec.Body = *item.Summary
	}
	if item.Source != nil {
		rec.Publisher = *item.Source
	}
	if item.Datetime != nil {
		rec.PublishedAt = time.Unix(*item.Datetime, 0).UTC()
	}
	if _, blocked := pagefetch.BlockedSource(rec.Headline + " " + rec.Publisher); blocked {
		return domain.ArticleRecord{}, false
	}
	return rec, true
}
