package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/dghubble/oauth1"

	"dispatch/internal/domain/entity"
)

// DefaultTweetEndpoint is the v2 create-tweet endpoint.
const DefaultTweetEndpoint = "https://api.twitter.com/2/tweets"

const (
	maxTweetLength = 250
	// minTweetExcerpt is the smallest remaining budget worth filling with content.
	minTweetExcerpt = 50
)

// placeholderCredentials are the sample values shipped in example env files.
var placeholderCredentials = map[string]bool{
	"your-twitter-api-key":     true,
	"your-twitter-api-secret":  true,
	"your-access-token":        true,
	"your-access-token-secret": true,
}

// TwitterConfig holds OAuth 1.0a user-context credentials.
type TwitterConfig struct {
	APIKey            string
	APISecret         string
	AccessToken       string
	AccessTokenSecret string
	Endpoint          string
	Timeout           time.Duration
}

// Configured reports whether all four credentials are present and none is a
// placeholder.
func (c TwitterConfig) Configured() bool {
	for _, v := range []string{c.APIKey, c.APISecret, c.AccessToken, c.AccessTokenSecret} {
		if v == "" || placeholderCredentials[v] {
			return false
		}
	}
	return true
}

// TwitterNotifier posts approved articles to the social network.
type TwitterNotifier struct {
	config      TwitterConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retry       retryPolicy
}

// NewTwitterNotifier signs every request with HMAC-SHA1.
func NewTwitterNotifier(config TwitterConfig) *TwitterNotifier {
	if config.Endpoint == "" {
		config.Endpoint = DefaultTweetEndpoint
	}
	oc := oauth1.NewConfig(config.APIKey, config.APISecret)
	client := oc.Client(context.Background(), oauth1.NewToken(config.AccessToken, config.AccessTokenSecret))
	client.Timeout = config.Timeout

	return &TwitterNotifier{
		config:      config,
		httpClient:  client,
		rateLimiter: NewRateLimiter(0.2, 1),
		retry:       retryPolicy{maxAttempts: 2, baseDelay: 5 * time.Second},
	}
}

// BuildTweet formats "<title>\n\nBy <source>\n\n<excerpt>...". The excerpt
// is added only when more than minTweetExcerpt characters remain.
func BuildTweet(title, sourceName, content string) string {
	text := title + "\n\nBy " + sourceName + "\n\n"
	remaining := maxTweetLength - utf8.RuneCountInString(text)
	if remaining > minTweetExcerpt {
		excerpt := []rune(content)
		if len(excerpt) > remaining-3 {
			excerpt = excerpt[:remaining-3]
		}
		text += string(excerpt) + "..."
	}
	return text
}

type tweetRequest struct {
	Text string `json:"text"`
}

type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (t *TwitterNotifier) post(ctx context.Context, a *entity.Announcement) error {
	body, err := json.Marshal(tweetRequest{Text: BuildTweet(a.Article.Title, a.SourceName, a.Article.Content)})
	if err != nil {
		return fmt.Errorf("marshal tweet: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusCreated {
		return classifyResponse("Twitter", resp, respBody)
	}

	var created tweetResponse
	if err := json.Unmarshal(respBody, &created); err == nil {
		slog.Debug("Tweet created",
			slog.String("request_id", RequestIDFrom(ctx)),
			slog.String("tweet_id", created.Data.ID))
	}
	return nil
}

// Announce implements Notifier.
func (t *TwitterNotifier) Announce(ctx context.Context, a *entity.Announcement) error {
	if err := t.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}
	return withRetry(ctx, "Twitter", a.Article.ID, t.retry, func(ctx context.Context) error {
		return t.post(ctx, a)
	})
}
