package feeds

import (
	"fmt"
	"net/url"

	"NewsHunter/internal/domain"
)

const defaultBaseURL = "https://news.google.com"

// macroQueries maps each macro topic to its Google News search query.
// Every query is pinned to finance.yahoo.com so fetched pages share one
// markup family.
var macroQueries = map[domain.Category]string{
	domain.CategoryFed:           `intitle:"Federal Reserve" OR intitle:"FOMC" OR intitle:"Powell" OR intitle:"Fed Official" site:finance.yahoo.com`,
	domain.CategoryIndicators:    `intitle:"CPI" OR intitle:"PPI" OR intitle:"PCE" OR intitle:"Nonfarm Payrolls" OR intitle:"Jobless Claims" OR intitle:JOLTS site:finance.yahoo.com`,
	domain.CategoryTreasury:      `intitle:"Yield" OR intitle:"10-year" OR intitle:"Treasury Auction" OR intitle:"Inverted Curve" OR intitle:"Bond Market" -intitle:"How to" -intitle:"Best Bond" site:finance.yahoo.com`,
	domain.CategoryEconomyGrowth: `intitle:GDP OR intitle:"Retail Sales" OR intitle:ISM OR intitle:PMI OR intitle:"Consumer Confidence" site:finance.yahoo.com`,
	domain.CategoryEnergy:        `intitle:Oil OR intitle:Crude OR intitle:Energy OR intitle:OPEC OR intitle:"Natural Gas" site:finance.yahoo.com`,
	domain.CategoryCommodities:   `intitle:Gold OR intitle:Silver OR intitle:Copper OR intitle:Wheat OR intitle:Corn OR intitle:Soybeans OR intitle:Commodities site:finance.yahoo.com`,
	domain.CategoryGeoPolitics:   `intitle:Geopolitics OR intitle:War OR intitle:"White House" site:finance.yahoo.com`,
	domain.CategoryTariffs:       `intitle:"tariff" site:finance.yahoo.com`,
	domain.CategoryFX:            `intitle:"USD" OR intitle:"EURUSD" OR intitle:"USDJPY" OR intitle:"GBPUSD" OR intitle:"Dollar Index" OR intitle:"DXY" -intitle:"Prediction" -intitle:"Forecast" site:finance.yahoo.com`,
	domain.CategoryCrypto:        `intitle:Bitcoin OR intitle:Crypto OR intitle:Ethereum OR intitle:"BTC" OR intitle:"ETH" OR intitle:Coinbase OR intitle:Binance site:finance.yahoo.com`,
}

// catalystQueries maps each stock catalyst to its search query.
var catalystQueries = map[domain.Category]string{
	domain.CategoryEarnings:       `intitle:Earnings OR intitle:Revenue OR intitle:EPS OR intitle:Results site:finance.yahoo.com`,
	domain.CategoryAnalystRatings: `intitle:Upgrade OR intitle:Downgrade OR intitle:"Price Target" OR intitle:Overweight OR intitle:Underweight site:finance.yahoo.com`,
	domain.CategoryMergers:        `intitle:Acquisition OR intitle:Merger OR intitle:Buyout OR intitle:"To Buy" OR intitle:Deal site:finance.yahoo.com`,
	domain.CategoryIPO:            `intitle:IPO OR intitle:"Public Offering" site:finance.yahoo.com`,
	domain.CategoryInsiderMoves:   `intitle:"Insider Trading" OR intitle:Buyback site:finance.yahoo.com`,
	domain.CategorySectorNews:     `intitle:Tech OR intitle:Energy OR intitle:Banks site:finance.yahoo.com`,
	domain.CategoryEquities:       `"Stock Market" site:finance.yahoo.com`,
}

// searchURL builds a Google News RSS search endpoint for one query.
func searchURL(base, query string) string {
	return fmt.Sprintf("%s/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en", base, url.QueryEscape(query))
}

// target is one feed to pull: the URL plus the category its items carry.
type target struct {
	category domain.Category
	url      string
}

func macroTargets(base string, topics []domain.Category) []target {
	targets := make([]target, 0, len(topics))
	for _, topic := range topics {
		query, ok := macroQueries[topic]
		if !ok {
			continue
		}
		targets = append(targets, target{category: topic, url: searchURL(base, query)})
	}
	return targets
}

func catalystTargets(base string, catalysts []domain.Category) []target {
	targets := make([]target, 0, len(catalysts))
	for _, cat := range catalysts {
		query, ok := catalystQueries[cat]
		if !ok {
			continue
		}
		targets = append(targets, target{category: cat, url: searchURL(base, query)})
	}
	return targets
}

// companyTargets searches per ticker; Google picks the outlets, so these
// are not pinned to a single site.
func companyTargets(base string, tickers []string) []target {
	targets := make([]target, 0, len(tickers))
	for _, ticker := range tickers {
		query := fmt.Sprintf("%s stock news", ticker)
		targets = append(targets, target{category: domain.Category(ticker), url: searchURL(base, query)})
	}
	return targets
}
