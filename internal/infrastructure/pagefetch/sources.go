package pagefetch

import "strings"

// Aggregator and press-release mills whose articles are noise for the hunt.
var blockedSources = []string{
	"MOTLEY FOOL",
	"SIMPLY WALL ST",
	"BENZINGA",
	"ZACKS",
	"GLOBENEWSWIRE",
}

// Outlets whose articles are worth an extra fetch attempt.
var premiumSources = []string{
	"BLOOMBERG",
	"REUTERS",
	"CNBC",
	"WSJ",
	"WALL STREET JOURNAL",
	"FINANCIAL TIMES",
	"BARRON'S",
}

// BlockedSource reports whether text mentions a blocklisted outlet and
// which one matched.
func BlockedSource(text string) (string, bool) {
	upper := strings.ToUpper(text)
	for _, src := range blockedSources {
		if strings.Contains(upper, src) {
			return src, true
		}
	}
	return "", false
}

// PremiumSource reports whether the headline or URL points at a premium
// outlet.
func PremiumSource(headline, pageURL string) bool {
	upper := strings.ToUpper(headline + " " + pageURL)
	for _, src := range premiumSources {
		if strings.Contains(upper, src) {
			return true
		}
	}
	return false
}
