package calendarsync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsHunter/internal/domain"
)

const (
	defaultEarningsBaseURL = "https://finance.yahoo.com"
	userAgent              = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	dateLayout             = "2006-01-02"
)

// EconomicClient pulls US macro events from a JSON calendar feed. Only
// HIGH and MEDIUM importance events survive; the rest is noise for the
// event-watch feeds.
type EconomicClient struct {
	baseURL string
	client  *http.Client
}

var _ EconomicSource = (*EconomicClient)(nil)

// NewEconomicClient points at a calendar feed host.
func NewEconomicClient(baseURL string, client *http.Client) *EconomicClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &EconomicClient{baseURL: baseURL, client: client}
}

type economicPayload struct {
	Events []struct {
		Name       string `json:"name"`
		Date       string `json:"date"`
		Zone       string `json:"zone"`
		Importance string `json:"importance"`
		Time       string `json:"time"`
	} `json:"events"`
}

// EconomicEvents lists US events inside [from, to).
func (c *EconomicClient) EconomicEvents(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error) {
	query := url.Values{}
	query.Set("from", from.Format(dateLayout))
	query.Set("to", to.Format(dateLayout))
	query.Set("country", "US")

	endpoint := c.baseURL + "/api/calendar/economic?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar feed returned %s", resp.Status)
	}

	var payload economicPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode calendar: %w", err)
	}

	var events []domain.CalendarEvent
	for _, ev := range payload.Events {
		if !strings.EqualFold(ev.Zone, "united states") && !strings.EqualFold(ev.Zone, "US") {
			continue
		}
		importance := strings.ToUpper(ev.Importance)
		if importance != "HIGH" && importance != "MEDIUM" {
			continue
		}
		date, err := time.Parse(dateLayout, ev.Date)
		if err != nil {
			continue
		}
		eventTime := ev.Time
		if eventTime == "" {
			eventTime = "TBA"
		}
		events = append(events, domain.CalendarEvent{
			Name:       ev.Name,
			Type:       "MACRO_EVENT",
			Date:       date,
			Importance: importance,
			Time:       eventTime,
		})
	}
	return events, nil
}

// YahooEarningsClient scrapes the Yahoo Finance earnings calendar table.
type YahooEarningsClient struct {
	baseURL string
	client  *http.Client
}

var _ EarningsSource = (*YahooEarningsClient)(nil)

// NewYahooEarningsClient builds the scraper; an empty baseURL targets
// finance.yahoo.com.
func NewYahooEarningsClient(baseURL string, client *http.Client) *YahooEarningsClient {
	if baseURL == "" {
		baseURL = defaultEarningsBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &YahooEarningsClient{baseURL: baseURL, client: client}
}

// EarningsOn scrapes one day of the earnings calendar.
func (c *YahooEarningsClient) EarningsOn(ctx context.Context, date time.Time) ([]domain.CalendarEvent, error) {
	endpoint := fmt.Sprintf("%s/calendar/earnings?day=%s", c.baseURL, date.Format(dateLayout))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request earnings page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("earnings page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse earnings page: %w", err)
	}

	var events []domain.CalendarEvent
	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 4 {
			return
		}
		ticker := strings.TrimSpace(cols.Eq(0).Text())
		name := strings.TrimSpace(cols.Eq(1).Text())
		if ticker == "" || name == "" {
			return
		}
		events = append(events, domain.CalendarEvent{
			Name:       name,
			Ticker:     ticker,
			Type:       "EARNINGS",
			Date:       date,
			Importance: "HIGH",
			Time:       earningsTime(strings.TrimSpace(cols.Eq(3).Text())),
		})
	})
	return events, nil
}

// earningsTime expands Yahoo's call-time abbreviations.
func earningsTime(raw string) string {
	switch raw {
	case "AMC":
		return "After Market"
	case "BMO":
		return "Pre Market"
	case "":
		return "TBA"
	}
	return raw
}
