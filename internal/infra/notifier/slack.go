package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dispatch/internal/domain/entity"
)

// SlackConfig configures the newsroom Incoming Webhook.
type SlackConfig struct {
	Enabled    bool
	WebhookURL string
	// SiteURL, when set, turns the title into a link to the article page.
	SiteURL string
	Timeout time.Duration
}

// SlackNotifier posts approved articles to the newsroom channel.
type SlackNotifier struct {
	config      SlackConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retry       retryPolicy
}

// NewSlackNotifier limits sends to 1 per second, the webhook's documented rate.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(1.0, 1),
		retry:       retryPolicy{maxAttempts: 2, baseDelay: 5 * time.Second},
	}
}

// SlackWebhookPayload is a Block Kit message.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

type SlackTextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	maxSectionTextLength = 3000
	maxFallbackLength    = 150
	slackPreviewLength   = 500
)

// slackEscape escapes the three characters Slack treats as control sequences.
func slackEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func (s *SlackNotifier) buildPayload(a *entity.Announcement) SlackWebhookPayload {
	article := a.Article

	fallback := truncateRunes(fmt.Sprintf("Approved: %s - %s", article.Title, a.SourceName), maxFallbackLength, "...")

	title := "*" + slackEscape(article.Title) + "*"
	if s.config.SiteURL != "" {
		link := fmt.Sprintf("%s/articles/%d", strings.TrimRight(s.config.SiteURL, "/"), article.ID)
		title = fmt.Sprintf("*<%s|%s>*", link, slackEscape(article.Title))
	}
	preview := truncateRunes(article.Content, slackPreviewLength, "...")
	section := truncateRunes(title+"\n\n"+slackEscape(preview), maxSectionTextLength, "...")

	approved := ""
	if article.ApprovedAt != nil {
		approved = " • " + article.ApprovedAt.Format(time.RFC3339)
	}
	meta := fmt.Sprintf("%s (%s)%s • %d subscriber(s) notified",
		slackEscape(a.SourceName), a.SourceKind, approved, len(a.RecipientEmails()))

	return SlackWebhookPayload{
		Text: fallback,
		Blocks: []SlackBlock{
			{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: section}},
			{Type: "context", Elements: []SlackTextObject{{Type: "mrkdwn", Text: meta}}},
		},
	}
}

func (s *SlackNotifier) post(ctx context.Context, a *entity.Announcement) error {
	body, err := json.Marshal(s.buildPayload(a))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return classifyResponse("Slack", resp, respBody)
}

// Announce implements Notifier.
func (s *SlackNotifier) Announce(ctx context.Context, a *entity.Announcement) error {
	slog.Info("Starting Slack notification",
		slog.String("request_id", RequestIDFrom(ctx)),
		slog.Int64("article_id", a.Article.ID))

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}
	return withRetry(ctx, "Slack", a.Article.ID, s.retry, func(ctx context.Context) error {
		return s.post(ctx, a)
	})
}
