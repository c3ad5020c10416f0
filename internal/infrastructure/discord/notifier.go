// Package discord delivers run summaries to a Discord channel webhook.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"NewsHunter/internal/domain"
	"NewsHunter/internal/ports"
)

const maxErrorLines = 5

// Notifier posts a digest message to a Discord webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the webhook URL.
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// Deliver posts the run digest. Discord replies 204 on success.
func (n *Notifier) Deliver(ctx context.Context, summary domain.RunSummary) error {
	if n.webhookURL == "" {
		return fmt.Errorf("discord notifier misconfigured")
	}

	payload, err := json.Marshal(map[string]string{"content": Digest(summary)})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("discord error: %s", resp.Status)
	}
	return nil
}

// Digest renders the summary as a Discord Markdown message.
func Digest(summary domain.RunSummary) string {
	var b strings.Builder

	header := "✅ Hunt complete"
	if !summary.Success {
		header = "🛑 Hunt finished with failures"
	}
	fmt.Fprintf(&b, "**%s** — session %s\n", header, summary.Session.Date.Format("2006-01-02"))
	if summary.Session.EarlyClose {
		b.WriteString("Early close session.\n")
	}
	fmt.Fprintf(&b, "New articles: **%d**\n", summary.TotalNew())

	for _, cat := range summary.Categories {
		fmt.Fprintf(&b, "• `%s` %s", cat.Group, statusLabel(cat.Status))
		if cat.Status != domain.StatusSkipped {
			fmt.Fprintf(&b, " (%d new, %d duplicate", cat.New, cat.Duplicate)
			if cat.Attempts > 1 {
				fmt.Fprintf(&b, ", %d attempts", cat.Attempts)
			}
			b.WriteString(")")
		}
		b.WriteString("\n")
	}

	if errs := summary.AllErrors(); len(errs) > 0 {
		b.WriteString("Errors:\n")
		for i, e := range errs {
			if i == maxErrorLines {
				fmt.Fprintf(&b, "… and %d more\n", len(errs)-maxErrorLines)
				break
			}
			fmt.Fprintf(&b, "> %s\n", e)
		}
	}

	return b.String()
}

func statusLabel(status domain.EngineStatus) string {
	switch status {
	case domain.StatusSucceeded:
		return "ok"
	case domain.StatusSucceededAfterRetry:
		return "ok after retry"
	case domain.StatusPartiallySucceeded:
		return "partial"
	case domain.StatusFailedTerminally:
		return "FAILED"
	case domain.StatusSkipped:
		return "skipped"
	}
	return string(status)
}
