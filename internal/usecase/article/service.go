package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"dispatch/internal/common/pagination"
	"dispatch/internal/domain/entity"
	"dispatch/internal/observability/metrics"
	"dispatch/internal/observability/tracing"
	"dispatch/internal/pkg/search"
	"dispatch/internal/policy"
	"dispatch/internal/repository"
)

// Announcer receives approved articles once the approval is committed.
type Announcer interface {
	NotifyApproved(ctx context.Context, a *entity.Announcement) error
}

// Service provides the article use cases. Every method takes the acting
// user; nil means an anonymous visitor.
type Service struct {
	Store    repository.Store
	Notifier Announcer
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// ListQuery carries the list options shared by the API and the web pages.
type ListQuery struct {
	Search string
	Order  repository.ArticleOrder
	Page   pagination.Params
	// Mine restricts the list to articles the caller authored.
	Mine bool
	// ApprovedOnly drops unapproved articles the scope would otherwise include.
	ApprovedOnly bool
}

// PaginatedResult is one page of articles and its metadata.
type PaginatedResult struct {
	Data       []repository.ArticleWithSource
	Pagination pagination.Metadata
}

// CreateInput holds the writable fields of a new article. Approval fields
// are never accepted from callers.
type CreateInput struct {
	Title       string
	Content     string
	PublisherID *int64
}

// UpdateInput changes title and content. Nil fields are left unchanged.
type UpdateInput struct {
	ID      int64
	Title   *string
	Content *string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// scopeFilter turns the caller's visibility scope into a repository filter.
func scopeFilter(actor *entity.User) repository.ArticleFilter {
	approved := true
	switch policy.ArticleScope(actor) {
	case policy.ScopeAll:
		return repository.ArticleFilter{}
	case policy.ScopeApprovedOrOwn:
		id := actor.ID
		return repository.ArticleFilter{Approved: &approved, OrAuthorID: &id}
	default:
		return repository.ArticleFilter{Approved: &approved}
	}
}

func (s *Service) page(ctx context.Context, repo repository.ArticleRepository, f repository.ArticleFilter, params pagination.Params) (*PaginatedResult, error) {
	params = params.WithDefaults(pagination.DefaultConfig())

	total, err := repo.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	list, err := repo.List(ctx, f, params.Offset(), params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return &PaginatedResult{Data: list, Pagination: pagination.NewMetadata(total, params)}, nil
}

// List returns the articles the caller may see, filtered by the search terms.
func (s *Service) List(ctx context.Context, actor *entity.User, q ListQuery) (*PaginatedResult, error) {
	f := scopeFilter(actor)
	if q.Mine {
		if actor == nil {
			return nil, entity.ErrUnauthorized
		}
		id := actor.ID
		f = repository.ArticleFilter{AuthorID: &id}
	}
	if q.ApprovedOnly {
		approved := true
		f.Approved, f.OrAuthorID = &approved, nil
	}
	f.Keywords = search.ParseKeywords(q.Search)
	f.Order = q.Order
	return s.page(ctx, s.Store.Articles(), f, q.Page)
}

// Subscribed returns approved articles from the reader's subscribed
// publishers and journalists.
func (s *Service) Subscribed(ctx context.Context, actor *entity.User, q ListQuery) (*PaginatedResult, error) {
	if actor == nil {
		return nil, entity.ErrUnauthorized
	}
	if !policy.CanSubscribe(actor) {
		return nil, entity.ErrOnlyReaders
	}
	subs, err := s.Store.Subscriptions().Get(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	approved := true
	f := repository.ArticleFilter{
		Approved: &approved,
		Sources:  &subs,
		Keywords: search.ParseKeywords(q.Search),
		Order:    q.Order,
	}
	return s.page(ctx, s.Store.Articles(), f, q.Page)
}

// Pending returns the review queue, oldest first.
func (s *Service) Pending(ctx context.Context, actor *entity.User, params pagination.Params) (*PaginatedResult, error) {
	if !policy.CanApprove(actor) {
		return nil, entity.ErrForbidden
	}
	pending := false
	f := repository.ArticleFilter{Approved: &pending, Order: repository.OrderCreatedAsc}
	return s.page(ctx, s.Store.Articles(), f, params)
}

// Get returns the article when the caller may view it. Articles the caller
// may not see are reported as ErrNotFound.
func (s *Service) Get(ctx context.Context, actor *entity.User, id int64) (*repository.ArticleWithSource, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}
	a, err := s.Store.Articles().GetWithSource(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if a == nil || !policy.CanViewArticle(actor, a.Article) {
		return nil, entity.ErrNotFound
	}
	return a, nil
}

// Create files a new pending article. Journalists write under their own
// name; editors write on behalf of an existing publisher.
func (s *Service) Create(ctx context.Context, actor *entity.User, in CreateInput) (*entity.Article, error) {
	if !policy.CanCreateArticle(actor) {
		return nil, entity.ErrForbidden
	}

	now := s.now().UTC()
	a := &entity.Article{
		Title:       in.Title,
		Content:     in.Content,
		PublisherID: in.PublisherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch actor.Role {
	case entity.RoleJournalist:
		id := actor.ID
		a.AuthorID = &id
	case entity.RoleEditor:
		if in.PublisherID == nil {
			return nil, ErrPublisherRequired
		}
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		if a.PublisherID != nil {
			p, err := tx.Publishers().Get(ctx, *a.PublisherID)
			if err != nil {
				return err
			}
			if p == nil {
				return &entity.ValidationError{Field: "publisher_id", Message: "Publisher does not exist."}
			}
		}
		return tx.Articles().Create(ctx, a)
	})
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	kind, _ := a.Source()
	metrics.RecordArticleCreated(string(kind))
	return a, nil
}

// Update changes title and content. The approval state is untouched.
func (s *Service) Update(ctx context.Context, actor *entity.User, in UpdateInput) (*entity.Article, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidArticleID
	}
	var updated *entity.Article
	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		a, err := tx.Articles().Get(ctx, in.ID)
		if err != nil {
			return err
		}
		if a == nil || !policy.CanViewArticle(actor, a) {
			return entity.ErrNotFound
		}
		if !policy.CanModifyArticle(actor, a) {
			return entity.ErrForbidden
		}
		if in.Title != nil {
			a.Title = *in.Title
		}
		if in.Content != nil {
			a.Content = *in.Content
		}
		if err := a.Validate(); err != nil {
			return err
		}
		a.UpdatedAt = s.now().UTC()
		if err := tx.Articles().Update(ctx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	return updated, nil
}

// Delete removes the article when the caller may modify it.
func (s *Service) Delete(ctx context.Context, actor *entity.User, id int64) error {
	if id <= 0 {
		return ErrInvalidArticleID
	}
	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		a, err := tx.Articles().Get(ctx, id)
		if err != nil {
			return err
		}
		if a == nil || !policy.CanViewArticle(actor, a) {
			return entity.ErrNotFound
		}
		if !policy.CanDeleteArticle(actor, a) {
			return entity.ErrForbidden
		}
		return tx.Articles().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// Approve marks a pending article approved by the editor. The approver,
// timestamp and subscriber lookup share one transaction; the announcement
// is handed off only after commit. Exactly one of several concurrent
// approvals succeeds, the rest get ErrAlreadyApproved.
func (s *Service) Approve(ctx context.Context, actor *entity.User, id int64) (*repository.ArticleWithSource, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "article.Approve")
	span.SetAttributes(attribute.Int64("article.id", id))
	defer span.End()

	if !policy.CanApprove(actor) {
		metrics.RecordReview("approve", "forbidden")
		return nil, entity.ErrForbidden
	}
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}

	var (
		result *repository.ArticleWithSource
		ann    *entity.Announcement
	)
	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		cur, err := tx.Articles().GetWithSource(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return entity.ErrNotFound
		}
		if cur.Article.Approved {
			return entity.ErrAlreadyApproved
		}

		at := s.now().UTC()
		ok, err := tx.Articles().Approve(ctx, id, actor.ID, at)
		if err != nil {
			return err
		}
		if !ok {
			return entity.ErrAlreadyApproved
		}
		if err := cur.Article.MarkApproved(actor.ID, at); err != nil {
			return err
		}

		kind, sourceID := cur.Article.Source()
		recipients, err := tx.Subscriptions().Subscribers(ctx, kind, sourceID)
		if err != nil {
			return fmt.Errorf("load subscribers: %w", err)
		}
		result = cur
		ann = &entity.Announcement{
			Article:    cur.Article,
			SourceKind: kind,
			SourceName: cur.SourceName,
			Recipients: recipients,
		}
		return nil
	})
	if err != nil {
		metrics.RecordReview("approve", reviewResult(err))
		span.RecordError(err)
		return nil, fmt.Errorf("approve article: %w", err)
	}

	metrics.RecordReview("approve", "ok")
	metrics.RecordApprovalRecipients(len(ann.Recipients))
	if s.Notifier != nil {
		if err := s.Notifier.NotifyApproved(ctx, ann); err != nil {
			s.logger().Error("approval announcement failed",
				slog.Int64("article_id", result.Article.ID),
				slog.Any("error", err))
		}
	}
	return result, nil
}

// Reject deletes a pending article. Approved articles cannot be rejected.
func (s *Service) Reject(ctx context.Context, actor *entity.User, id int64) (*entity.Article, error) {
	if !policy.CanApprove(actor) {
		metrics.RecordReview("reject", "forbidden")
		return nil, entity.ErrForbidden
	}
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}
	var rejected *entity.Article
	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		a, err := tx.Articles().Get(ctx, id)
		if err != nil {
			return err
		}
		if a == nil {
			return entity.ErrNotFound
		}
		if a.Approved {
			return entity.ErrAlreadyApproved
		}
		rejected = a
		return tx.Articles().Delete(ctx, id)
	})
	if err != nil {
		metrics.RecordReview("reject", reviewResult(err))
		return nil, fmt.Errorf("reject article: %w", err)
	}
	metrics.RecordReview("reject", "ok")
	return rejected, nil
}

func reviewResult(err error) string {
	switch {
	case errors.Is(err, entity.ErrAlreadyApproved):
		return "already_approved"
	case errors.Is(err, entity.ErrNotFound):
		return "not_found"
	case errors.Is(err, entity.ErrForbidden):
		return "forbidden"
	}
	return "error"
}
