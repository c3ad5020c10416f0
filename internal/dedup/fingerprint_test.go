package dedup

import (
	"testing"
	"time"

	"NewsHunter/internal/domain"
)

func TestFingerprintIgnoresFormattingNoise(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	base := domain.ArticleRecord{
		Source:      "google-news/macro",
		Headline:    "Fed Holds Rates Steady",
		URL:         "https://finance.yahoo.com/news/fed-holds.html",
		SessionDate: day,
	}
	variants := []domain.ArticleRecord{
		{
			Source:      "google-news/macro",
			Headline:    "  fed   holds rates STEADY ",
			URL:         "https://finance.yahoo.com/news/fed-holds.html?utm_source=rss&oc=5",
			SessionDate: day,
		},
		{
			Source:      "google-news/macro",
			Headline:    "Fed Holds Rates Steady - Yahoo Finance",
			URL:         "https://FINANCE.YAHOO.COM/news/fed-holds.html#section",
			SessionDate: day,
		},
	}

	want := Fingerprint(base)
	for i, v := range variants {
		if got := Fingerprint(v); got != want {
			t.Errorf("variant %d fingerprint = %s, want %s", i, got, want)
		}
	}
}

func TestFingerprintSeparatesSources(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	a := domain.ArticleRecord{Source: "marketaux", Headline: "AAPL beats estimates", SessionDate: day}
	b := domain.ArticleRecord{Source: "finnhub", Headline: "AAPL beats estimates", SessionDate: day}
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatal("records from different sources must not collide")
	}
}

func TestFingerprintWithoutURLUsesSessionDate(t *testing.T) {
	t.Parallel()

	rec := domain.ArticleRecord{
		Source:      "google-news/macro",
		Headline:    "Oil slides on OPEC chatter",
		SessionDate: time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
	}
	nextDay := rec
	nextDay.SessionDate = rec.SessionDate.AddDate(0, 0, 1)

	if Fingerprint(rec) == Fingerprint(nextDay) {
		t.Fatal("headline-only records on different sessions must differ")
	}

	withURL := rec
	withURL.URL = "https://finance.yahoo.com/news/oil.html"
	otherDay := withURL
	otherDay.SessionDate = nextDay.SessionDate
	if Fingerprint(withURL) != Fingerprint(otherDay) {
		t.Fatal("URL-bearing records should not depend on session date")
	}
}

func TestNormalizeHeadline(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"  CPI Cools   To 2.4% ", "cpi cools to 2.4%"},
		{"Treasury Yields Jump - Reuters", "treasury yields jump"},
		{"Plain headline", "plain headline"},
	}
	for _, tc := range cases {
		if got := NormalizeHeadline(tc.in); got != tc.want {
			t.Errorf("NormalizeHeadline(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
