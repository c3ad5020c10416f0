// Package api exposes the read-only query surface over hunted articles
// and the synced calendar.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"NewsHunter/internal/domain"
	"NewsHunter/internal/session"
)

const dateLayout = "2006-01-02"

// ArticleReader is the slice of the store the API needs.
type ArticleReader interface {
	QueryRange(ctx context.Context, from, to time.Time, category domain.Category) ([]domain.ArticleRecord, error)
}

// CalendarReader lists synced calendar events.
type CalendarReader interface {
	UpcomingEvents(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error)
}

// Handler serves the query endpoints.
type Handler struct {
	articles ArticleReader
	calendar CalendarReader
	resolver *session.Resolver
}

// NewHandler wires the readers; calendar may be nil.
func NewHandler(articles ArticleReader, calendar CalendarReader, resolver *session.Resolver) *Handler {
	return &Handler{articles: articles, calendar: calendar, resolver: resolver}
}

// NewRouter builds the gin engine with CORS and all routes registered.
func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{"GET", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
		}))
	}

	r.GET("/articles", h.GetArticles)
	r.GET("/sessions/:date/articles", h.GetSessionArticles)
	r.GET("/calendar", h.GetCalendar)
	r.GET("/health", h.GetHealth)
	return r
}

// ArticleResponse is the wire shape of one hunted record.
type ArticleResponse struct {
	Fingerprint string `json:"fingerprint"`
	Source      string `json:"source"`
	URL         string `json:"url,omitempty"`
	Headline    string `json:"headline"`
	Publisher   string `json:"publisher,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	Category    string `json:"category"`
	SessionDate string `json:"session_date"`
}

// EventResponse is the wire shape of one calendar event.
type EventResponse struct {
	Name       string `json:"name"`
	Ticker     string `json:"ticker,omitempty"`
	Type       string `json:"type"`
	Date       string `json:"date"`
	Importance string `json:"importance"`
	Time       string `json:"time"`
}

// GetArticles lists records inside an explicit date range.
func (h *Handler) GetArticles(c *gin.Context) {
	from, ok := queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not precede from"})
		return
	}

	category := domain.Category(c.Query("category"))
	records, err := h.articles.QueryRange(c.Request.Context(), from, to, category)
	if err != nil {
		slog.Error("error querying articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": toArticleResponses(records),
		"total":    len(records),
	})
}

// GetSessionArticles lists the records of one trading session. Non-trading
// dates are rejected the same way the hunt CLI rejects them.
func (h *Handler) GetSessionArticles(c *gin.Context) {
	date, err := session.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	sess, err := h.resolver.ResolveDate(date)
	if errors.Is(err, session.ErrInvalidDate) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not a trading day"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := domain.Category(c.Query("category"))
	records, err := h.articles.QueryRange(c.Request.Context(), sess.Date, sess.Date, category)
	if err != nil {
		slog.Error("error querying session articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": gin.H{
			"date":        sess.Date.Format(dateLayout),
			"open":        sess.Open.Format(time.RFC3339),
			"close":       sess.Close.Format(time.RFC3339),
			"early_close": sess.EarlyClose,
		},
		"articles": toArticleResponses(records),
		"total":    len(records),
	})
}

// GetCalendar lists upcoming synced events; the window defaults to the
// next seven days.
func (h *Handler) GetCalendar(c *gin.Context) {
	if h.calendar == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "calendar not configured"})
		return
	}

	from := time.Now().UTC().Truncate(24 * time.Hour)
	to := from.AddDate(0, 0, 7)
	if v := c.Query("from"); v != "" {
		parsed, ok := queryDate(c, "from")
		if !ok {
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, ok := queryDate(c, "to")
		if !ok {
			return
		}
		to = parsed
	}

	events, err := h.calendar.UpcomingEvents(c.Request.Context(), from, to)
	if err != nil {
		slog.Error("error querying calendar", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := make([]EventResponse, 0, len(events))
	for _, ev := range events {
		res = append(res, EventResponse{
			Name:       ev.Name,
			Ticker:     ev.Ticker,
			Type:       ev.Type,
			Date:       ev.Date.Format(dateLayout),
			Importance: ev.Importance,
			Time:       ev.Time,
		})
	}
	c.JSON(http.StatusOK, gin.H{"events": res, "total": len(res)})
}

// GetHealth probes the database through the article reader.
func (h *Handler) GetHealth(c *gin.Context) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if _, err := h.articles.QueryRange(c.Request.Context(), today, today, ""); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

func queryDate(c *gin.Context, name string) (time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " is required (YYYY-MM-DD)"})
		return time.Time{}, false
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return parsed, true
}

func toArticleResponses(records []domain.ArticleRecord) []ArticleResponse {
	res := make([]ArticleResponse, 0, len(records))
	for _, rec := range records {
		item := ArticleResponse{
			Fingerprint: rec.Fingerprint,
			Source:      rec.Source,
			URL:         rec.URL,
			Headline:    rec.Headline,
			Publisher:   rec.Publisher,
			Category:    string(rec.Category),
			SessionDate: rec.SessionDate.Format(dateLayout),
		}
		if !rec.PublishedAt.IsZero() {
			item.PublishedAt = rec.PublishedAt.Format(time.RFC3339)
		}
		res = append(res, item)
	}
	return res
}
