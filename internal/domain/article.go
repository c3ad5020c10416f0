package domain

import "time"

// Category tags a record with the news bucket it was hunted under.
// Macro and catalyst tags are fixed; company records carry the ticker itself.
type Category string

// Macro sub-topics.
const (
	CategoryFed           Category = "FED"
	CategoryIndicators    Category = "INDICATORS"
	CategoryTreasury      Category = "TREASURY"
	CategoryEconomyGrowth Category = "ECONOMY_GROWTH"
	CategoryEnergy        Category = "ENERGY"
	CategoryCommodities   Category = "COMMODITIES"
	CategoryGeoPolitics   Category = "GEO_POLITICS"
	CategoryTariffs       Category = "TARIFFS"
	CategoryFX            Category = "FX"
	CategoryCrypto        Category = "CRYPTO"
)

// Stock catalyst sub-topics.
const (
	CategoryEarnings       Category = "EARNINGS"
	CategoryAnalystRatings Category = "ANALYST_RATINGS"
	CategoryMergers        Category = "MERGERS_ACQUISITIONS"
	CategoryIPO            Category = "IPO"
	CategoryInsiderMoves   Category = "INSIDER_MOVES"
	CategorySectorNews     Category = "SECTOR_NEWS"
	CategoryEquities       Category = "EQUITIES"
)

// MacroTopics lists every macro sub-topic in scan order.
func MacroTopics() []Category {
	return []Category{
		CategoryFed, CategoryIndicators, CategoryTreasury, CategoryEconomyGrowth,
		CategoryEnergy, CategoryCommodities, CategoryGeoPolitics, CategoryTariffs,
		CategoryFX, CategoryCrypto,
	}
}

// StockCatalysts lists every stock catalyst sub-topic in scan order.
func StockCatalysts() []Category {
	return []Category{
		CategoryEarnings, CategoryAnalystRatings, CategoryMergers, CategoryIPO,
		CategoryInsiderMoves, CategorySectorNews, CategoryEquities,
	}
}

// CategoryGroup identifies which scan engine owns a category.
type CategoryGroup string

const (
	GroupMacro   CategoryGroup = "macro"
	GroupStocks  CategoryGroup = "stocks"
	GroupCompany CategoryGroup = "company"
)

// Groups returns the engine groups in the order they are hunted.
func Groups() []CategoryGroup {
	return []CategoryGroup{GroupMacro, GroupStocks, GroupCompany}
}

// ArticleRecord is one unit of news normalized at the adapter boundary.
// It is transient until it passes deduplication and is written to the store;
// persisted records are never edited in place.
type ArticleRecord struct {
	Source      string
	URL         string // optional; headline-only records have none
	Headline    string
	Body        string // optional
	Publisher   string
	PublishedAt time.Time
	Category    Category
	SessionDate time.Time // calendar date of the trading session, midnight UTC
	Fingerprint string    // set by the dedup index before persistence
}

// ScanFilterSet narrows one hunt run. It is owned by the caller for the
// duration of the run and never shared across runs.
type ScanFilterSet struct {
	MacroTopics    []Category
	StockCatalysts []Category
	Companies      []string
	EnableMacro    bool
	EnableStocks   bool
	EnableCompany  bool
}

// DefaultFilters enables every category with the full topic tables.
func DefaultFilters(companies []string) ScanFilterSet {
	return ScanFilterSet{
		MacroTopics:    MacroTopics(),
		StockCatalysts: StockCatalysts(),
		Companies:      companies,
		EnableMacro:    true,
		EnableStocks:   true,
		EnableCompany:  true,
	}
}

// Enabled reports whether the given engine group is switched on.
func (f ScanFilterSet) Enabled(group CategoryGroup) bool {
	switch group {
	case GroupMacro:
		return f.EnableMacro
	case GroupStocks:
		return f.EnableStocks
	case GroupCompany:
		return f.EnableCompany
	}
	return false
}
