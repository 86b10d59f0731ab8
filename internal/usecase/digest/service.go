// Package digest builds the editors' daily summary of articles awaiting review.
package digest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/domain/entity"
	"dispatch/internal/observability/metrics"
	"dispatch/internal/repository"
)

// DefaultMaxItems is how many pending articles a digest lists.
const DefaultMaxItems = 20

// Mailer sends one plain-text message to a list of addresses.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// Service assembles and mails the pending-review digest.
type Service struct {
	Store  repository.Store
	Mailer Mailer
	// MaxItems defaults to DefaultMaxItems.
	MaxItems int
	// SiteURL prefixes article links when set.
	SiteURL string
	Now     func() time.Time
}

// Result summarises one run.
type Result struct {
	Pending    int64
	Approved   int64
	Listed     int
	Recipients int
	// Sent is false when nothing was pending or no editor has an email.
	Sent bool
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run counts approved and pending articles, refreshes the article gauges
// and mails the oldest pending articles to every active editor.
func (s *Service) Run(ctx context.Context) (Result, error) {
	var res Result
	approved, pending := true, false

	n, err := s.Store.Articles().Count(ctx, repository.ArticleFilter{Approved: &approved})
	if err != nil {
		return res, fmt.Errorf("count approved articles: %w", err)
	}
	res.Approved = n
	if n, err = s.Store.Articles().Count(ctx, repository.ArticleFilter{Approved: &pending}); err != nil {
		return res, fmt.Errorf("count pending articles: %w", err)
	}
	res.Pending = n
	metrics.UpdateArticlesTotal(res.Approved, res.Pending)

	if res.Pending == 0 {
		return res, nil
	}

	limit := s.MaxItems
	if limit <= 0 {
		limit = DefaultMaxItems
	}
	items, err := s.Store.Articles().List(ctx, repository.ArticleFilter{
		Approved: &pending,
		Order:    repository.OrderCreatedAsc,
	}, 0, limit)
	if err != nil {
		return res, fmt.Errorf("list pending articles: %w", err)
	}
	res.Listed = len(items)

	to, err := s.editorEmails(ctx)
	if err != nil {
		return res, err
	}
	res.Recipients = len(to)
	if len(to) == 0 {
		return res, nil
	}

	if err := s.Mailer.Send(ctx, to, Subject(res.Pending), s.Body(res.Pending, items)); err != nil {
		return res, fmt.Errorf("send digest: %w", err)
	}
	res.Sent = true
	return res, nil
}

func (s *Service) editorEmails(ctx context.Context) ([]string, error) {
	role := entity.RoleEditor
	editors, err := s.Store.Users().List(ctx, repository.UserFilter{Role: &role})
	if err != nil {
		return nil, fmt.Errorf("list editors: %w", err)
	}
	var to []string
	for _, u := range editors {
		if u.IsActive && u.Email != "" {
			to = append(to, u.Email)
		}
	}
	return to, nil
}

// Subject is "Review queue: <n> pending article(s)".
func Subject(pending int64) string {
	if pending == 1 {
		return "Review queue: 1 pending article"
	}
	return fmt.Sprintf("Review queue: %d pending articles", pending)
}

// Body renders the digest text. Ages are whole days since creation.
func (s *Service) Body(pending int64, items []repository.ArticleWithSource) string {
	now := s.now()
	var b strings.Builder
	b.WriteString("Hello,\n\n")
	fmt.Fprintf(&b, "%d article(s) are waiting for review as of %s.\n\n", pending, now.UTC().Format("2006-01-02"))
	for _, it := range items {
		days := int(now.Sub(it.Article.CreatedAt).Hours() / 24)
		fmt.Fprintf(&b, "- %s (%s, %dd)", it.Article.Title, it.SourceName, days)
		if s.SiteURL != "" {
			fmt.Fprintf(&b, " %s/articles/%d", strings.TrimRight(s.SiteURL, "/"), it.Article.ID)
		}
		b.WriteString("\n")
	}
	if rest := pending - int64(len(items)); rest > 0 {
		fmt.Fprintf(&b, "\n...and %d more.\n", rest)
	}
	b.WriteString("\n---\nThis is an automated notification from Dispatch.")
	return b.String()
}
