package pagefetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"NewsHunter/internal/domain"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head>
<title>Fed Holds Rates Steady</title>
<script type="application/ld+json">
{"@type":"NewsArticle","publisher":{"name":"Example Newswire"}}
</script>
</head>
<body>
<article>
<h1>Fed Holds Rates Steady</h1>
<p>The Federal Reserve left its benchmark interest rate unchanged on Wednesday,
holding the target range steady as officials weigh persistent inflation against
signs of a cooling labor market. The decision was unanimous and widely expected
by markets, which had priced in no change ahead of the meeting.</p>
<p>In the accompanying statement the committee noted that economic activity has
continued to expand at a moderate pace, while job gains have slowed from their
earlier highs. Officials reiterated that future adjustments will depend on
incoming data and the evolving balance of risks to the outlook.</p>
<p>Treasury yields were little changed after the announcement, and equity
indexes held on to modest gains as traders parsed the statement for hints on
the timing of the next move.</p>
</article>
</body>
</html>`

func newPageServer(t *testing.T, robots string, blocked bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(robots))
	})
	mux.HandleFunc("/news/fed-holds-rates", func(w http.ResponseWriter, r *http.Request) {
		body := articleHTML
		if blocked {
			body = strings.Replace(body, "Example Newswire", "Zacks Investment Research", 1)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchExtractsBodyAndPublisher(t *testing.T) {
	t.Parallel()

	srv := newPageServer(t, "User-agent: *\nAllow: /\n", false)
	f := NewFetcher(srv.Client())

	page, err := f.Fetch(context.Background(), srv.URL+"/news/fed-holds-rates")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.Publisher != "Example Newswire" {
		t.Fatalf("publisher = %q, want the JSON-LD name", page.Publisher)
	}
	if !strings.Contains(page.Body, "benchmark interest rate unchanged") {
		t.Fatalf("body missing article text: %q", page.Body[:min(len(page.Body), 120)])
	}
	if strings.Contains(page.Body, "<p>") {
		t.Fatal("body must be plain text, not markup")
	}
}

func TestFetchHonorsRobotsDisallow(t *testing.T) {
	t.Parallel()

	srv := newPageServer(t, "User-agent: *\nDisallow: /news/\n", false)
	f := NewFetcher(srv.Client())

	_, err := f.Fetch(context.Background(), srv.URL+"/news/fed-holds-rates")
	if err == nil || !strings.Contains(err.Error(), "robots.txt") {
		t.Fatalf("err = %v, want robots.txt rejection", err)
	}
}

func TestFetchRejectsBlockedPublisher(t *testing.T) {
	t.Parallel()

	srv := newPageServer(t, "User-agent: *\nAllow: /\n", true)
	f := NewFetcher(srv.Client())

	_, err := f.Fetch(context.Background(), srv.URL+"/news/fed-holds-rates")
	if !errors.Is(err, ErrBlockedSource) {
		t.Fatalf("err = %v, want ErrBlockedSource", err)
	}
}

func TestFetchRejectsForeignYahooEdition(t *testing.T) {
	t.Parallel()

	f := NewFetcher(nil)
	_, err := f.Fetch(context.Background(), "https://uk.finance.yahoo.com/news/some-story")
	if !errors.Is(err, ErrBlockedSource) {
		t.Fatalf("err = %v, want ErrBlockedSource without any request", err)
	}
}

func TestEnrichFillsHeadlineOnlyRecord(t *testing.T) {
	t.Parallel()

	srv := newPageServer(t, "User-agent: *\nAllow: /\n", false)
	f := NewFetcher(srv.Client())

	rec := domain.ArticleRecord{
		Headline: "Fed Holds Rates Steady",
		URL:      srv.URL + "/news/fed-holds-rates",
	}
	got, err := f.Enrich(context.Background(), rec)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if got.Body == "" || got.Publisher != "Example Newswire" {
		t.Fatalf("record not enriched: publisher=%q bodyLen=%d", got.Publisher, len(got.Body))
	}

	noURL := domain.ArticleRecord{Headline: "headline only"}
	got, err = f.Enrich(context.Background(), noURL)
	if err != nil || got.Body != "" {
		t.Fatalf("no-URL record must pass through, got (%+v, %v)", got, err)
	}
}

func TestSourceLists(t *testing.T) {
	t.Parallel()

	if src, blocked := BlockedSource("Why Zacks Rates This Stock a Buy"); !blocked || src != "ZACKS" {
		t.Fatalf("BlockedSource = (%q, %v)", src, blocked)
	}
	if _, blocked := BlockedSource("Fed Holds Rates Steady"); blocked {
		t.Fatal("clean headline flagged as blocked")
	}
	if !PremiumSource("Exclusive: OPEC weighs output cut - Reuters", "") {
		t.Fatal("Reuters headline must rank as premium")
	}
	if PremiumSource("Fed Holds Rates Steady", "https://finance.yahoo.com/news/x") {
		t.Fatal("plain yahoo story must not rank as premium")
	}
}
