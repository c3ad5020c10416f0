package dedup

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"strings"

	"NewsHunter/internal/domain"
)

// Source suffixes Yahoo and the aggregators append to syndicated headlines.
var headlineSuffixes = []string{
	" - yahoo finance",
	" - bloomberg",
	" - reuters",
	" - cnbc",
	" - marketwatch",
	" - the wall street journal",
}

// NormalizeHeadline lowercases, trims, collapses internal whitespace, and
// strips known source suffixes so superficial formatting never splits a
// fingerprint.
func NormalizeHeadline(headline string) string {
	t := strings.ToLower(strings.TrimSpace(headline))
	t = strings.Join(strings.Fields(t), " ")
	for _, suffix := range headlineSuffixes {
		if strings.HasSuffix(t, suffix) {
			t = strings.TrimSpace(strings.TrimSuffix(t, suffix))
		}
	}
	return t
}

// NormalizeURL drops the query string and fragment, which carry tracking
// parameters, and lowercases the host. Unparseable URLs are returned
// trimmed so they still contribute identity.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// Fingerprint derives the deduplication key for a record: sha256 over the
// normalized headline, source, and either the normalized URL or, for
// headline-only records, the session date. The no-URL form accepts a
// false-negative rate for reworded wire-service syndication.
func Fingerprint(record domain.ArticleRecord) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n%s\n", NormalizeHeadline(record.Headline), record.Source)
	if u := NormalizeURL(record.URL); u != "" {
		fmt.Fprint(h, u)
	} else {
		fmt.Fprint(h, record.SessionDate.Format("2006-01-02"))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
