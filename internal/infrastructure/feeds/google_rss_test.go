package feeds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"NewsHunter/internal/domain"
	"NewsHunter/internal/infrastructure/pagefetch"
	"NewsHunter/internal/scan"
)

type feedItem struct {
	title   string
	link    string
	pubDate time.Time
}

func rssBody(items []feedItem) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>search</title>`)
	for _, it := range items {
		fmt.Fprintf(&b, "<item><title>%s</title><link>%s</link><pubDate>%s</pubDate></item>",
			it.title, it.link, it.pubDate.Format(time.RFC1123Z))
	}
	b.WriteString("</channel></rss>")
	return b.String()
}

// feedServer returns one canned feed per query substring.
func feedServer(t *testing.T, byQuery map[string][]feedItem) (*httptest.Server, *[]string) {
	t.Helper()
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		queries = append(queries, q)
		for marker, items := range byQuery {
			if strings.Contains(q, marker) {
				w.Header().Set("Content-Type", "application/rss+xml")
				_, _ = w.Write([]byte(rssBody(items)))
				return
			}
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssBody(nil)))
	}))
	t.Cleanup(srv.Close)
	return srv, &queries
}

func rssSession() domain.TradingSession {
	date := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	return domain.TradingSession{
		Date:  date,
		Open:  date.Add(13*time.Hour + 30*time.Minute),
		Close: date.Add(20 * time.Hour),
	}
}

func TestMacroAdapterCollectsAndFilters(t *testing.T) {
	t.Parallel()

	sess := rssSession()
	onDate := sess.Date.Add(15 * time.Hour)
	srv, _ := feedServer(t, map[string][]feedItem{
		"Federal Reserve": {
			{title: "Fed Holds Rates Steady - Yahoo Finance", link: "https://finance.yahoo.com/news/fed-holds", pubDate: onDate},
			{title: "Fed Outlook Dims - Yahoo Finance UK", link: "https://uk.finance.yahoo.com/news/outlook", pubDate: onDate},
			{title: "Zacks: 3 Fed-Proof Stocks - Zacks", link: "https://finance.yahoo.com/news/zacks-picks", pubDate: onDate},
			{title: "Old Fed Story - Yahoo Finance", link: "https://finance.yahoo.com/news/old", pubDate: onDate.AddDate(0, 0, -3)},
		},
	})

	adapter := NewMacroAdapter(Options{BaseURL: srv.URL, Client: srv.Client()})
	records, err := adapter.Fetch(context.Background(), scan.Request{
		Session: sess,
		Filters: domain.ScanFilterSet{MacroTopics: []domain.Category{domain.CategoryFed}},
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want the single on-date US record, got %+v", len(records), records)
	}
	rec := records[0]
	if rec.Headline != "Fed Holds Rates Steady" || rec.Publisher != "Yahoo Finance" {
		t.Fatalf("title not split: %+v", rec)
	}
	if rec.Category != domain.CategoryFed || rec.Source != "google-news" {
		t.Fatalf("record tagging wrong: %+v", rec)
	}
	if !rec.SessionDate.Equal(sess.Date) {
		t.Fatal("session date not stamped")
	}
}

func TestCompanyAdapterQueriesPerTicker(t *testing.T) {
	t.Parallel()

	sess := rssSession()
	srv, queries := feedServer(t, map[string][]feedItem{
		"AAPL": {{title: "Apple Ships New Mac - Reuters", link: "https://example.com/apple", pubDate: sess.Date.Add(12 * time.Hour)}},
	})

	adapter := NewCompanyAdapter(Options{BaseURL: srv.URL, Client: srv.Client()})
	records, err := adapter.Fetch(context.Background(), scan.Request{
		Session: sess,
		Filters: domain.ScanFilterSet{Companies: []string{"AAPL", "MSFT"}},
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(*queries) != 2 {
		t.Fatalf("queries = %v, want one per ticker", *queries)
	}
	if !strings.Contains((*queries)[0], "AAPL stock news") {
		t.Fatalf("query = %q", (*queries)[0])
	}
	if len(records) != 1 || records[0].Category != domain.Category("AAPL") {
		t.Fatalf("records = %+v, want one AAPL record", records)
	}
}

func TestFetchFailsOnlyWhenEveryFeedFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	adapter := NewStocksAdapter(Options{BaseURL: srv.URL, Client: srv.Client()})
	_, err := adapter.Fetch(context.Background(), scan.Request{
		Session: rssSession(),
		Filters: domain.ScanFilterSet{StockCatalysts: domain.StockCatalysts()},
	})
	if err == nil {
		t.Fatal("expected an error when every feed fails")
	}
}

func TestLookbackWidensWindow(t *testing.T) {
	t.Parallel()

	sess := rssSession()
	yesterdayEvening := sess.Close.Add(-18 * time.Hour)
	srv, _ := feedServer(t, map[string][]feedItem{
		"Earnings": {{title: "Chipmaker Beats Estimates - CNBC", link: "https://example.com/beats", pubDate: yesterdayEvening}},
	})

	strict := NewStocksAdapter(Options{BaseURL: srv.URL, Client: srv.Client()})
	req := scan.Request{
		Session: sess,
		Filters: domain.ScanFilterSet{StockCatalysts: []domain.Category{domain.CategoryEarnings}},
	}
	records, err := strict.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 0 {
		t.Fatal("strict window must reject yesterday's item")
	}

	wide := NewStocksAdapter(Options{BaseURL: srv.URL, Client: srv.Client(), Lookback: 24 * time.Hour})
	records, err = wide.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want the lookback window to admit the item", len(records))
	}
}

type stubEnricher struct {
	body string
	err  error
}

func (e stubEnricher) Enrich(ctx context.Context, rec domain.ArticleRecord) (domain.ArticleRecord, error) {
	if e.err != nil {
		return rec, e.err
	}
	rec.Body = e.body
	return rec, nil
}

func TestEnrichmentOutcomes(t *testing.T) {
	t.Parallel()

	sess := rssSession()
	srv, _ := feedServer(t, map[string][]feedItem{
		"Federal Reserve": {{title: "Fed Holds Rates Steady - Yahoo Finance", link: "https://finance.yahoo.com/news/fed-holds", pubDate: sess.Date.Add(15 * time.Hour)}},
	})
	req := scan.Request{
		Session: sess,
		Filters: domain.ScanFilterSet{MacroTopics: []domain.Category{domain.CategoryFed}},
	}

	enriched := NewMacroAdapter(Options{BaseURL: srv.URL, Client: srv.Client(), Enricher: stubEnricher{body: "full text"}})
	records, err := enriched.Fetch(context.Background(), req)
	if err != nil || len(records) != 1 || records[0].Body != "full text" {
		t.Fatalf("enriched fetch = (%+v, %v)", records, err)
	}

	// Page fetch failures keep the headline-only record.
	degraded := NewMacroAdapter(Options{BaseURL: srv.URL, Client: srv.Client(), Enricher: stubEnricher{err: errors.New("timeout")}})
	records, err = degraded.Fetch(context.Background(), req)
	if err != nil || len(records) != 1 || records[0].Body != "" {
		t.Fatalf("degraded fetch = (%+v, %v)", records, err)
	}

	// A blocklisted page drops the record entirely.
	blocked := NewMacroAdapter(Options{BaseURL: srv.URL, Client: srv.Client(), Enricher: stubEnricher{err: fmt.Errorf("publisher: %w", pagefetch.ErrBlockedSource)}})
	records, err = blocked.Fetch(context.Background(), req)
	if err != nil || len(records) != 0 {
		t.Fatalf("blocked fetch = (%+v, %v)", records, err)
	}
}
