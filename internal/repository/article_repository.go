package repository

import (
	"context"
	"time"

	"dispatch/internal/domain/entity"
)

// ArticleWithSource represents an article along with its source display name.
type ArticleWithSource struct {
	Article    *entity.Article
	SourceName string
}

// ArticleOrder is a whitelisted ORDER BY for article lists.
type ArticleOrder string

const (
	OrderCreatedDesc  ArticleOrder = "-created_at"
	OrderCreatedAsc   ArticleOrder = "created_at"
	OrderTitleAsc     ArticleOrder = "title"
	OrderTitleDesc    ArticleOrder = "-title"
	OrderApprovedDesc ArticleOrder = "-approved_at"
	OrderApprovedAsc  ArticleOrder = "approved_at"
)

// ParseArticleOrder maps a query value onto a known ordering, defaulting to newest first.
func ParseArticleOrder(s string) ArticleOrder {
	switch o := ArticleOrder(s); o {
	case OrderCreatedAsc, OrderCreatedDesc, OrderTitleAsc, OrderTitleDesc, OrderApprovedAsc, OrderApprovedDesc:
		return o
	}
	return OrderCreatedDesc
}

// ArticleFilter narrows article lists. Zero value matches every article.
type ArticleFilter struct {
	// Approved restricts to one approval state when set.
	Approved *bool
	// OrAuthorID widens an Approved=true filter with unapproved articles by this author.
	OrAuthorID *int64
	AuthorID   *int64
	// Sources restricts to articles from the given publishers or journalists.
	Sources *entity.SubscriptionSet
	// IDs restricts to the given articles when non-nil; an empty slice matches nothing.
	IDs      []int64
	Keywords []string
	Order    ArticleOrder
}

type ArticleRepository interface {
	// List returns a page of articles matching the filter with their source names.
	List(ctx context.Context, filter ArticleFilter, offset, limit int) ([]ArticleWithSource, error)
	// Count returns the number of articles matching the filter.
	Count(ctx context.Context, filter ArticleFilter) (int64, error)
	// Get returns (nil, nil) if the article is not found.
	Get(ctx context.Context, id int64) (*entity.Article, error)
	// GetWithSource returns (nil, nil) if the article is not found.
	GetWithSource(ctx context.Context, id int64) (*ArticleWithSource, error)
	Create(ctx context.Context, article *entity.Article) error
	Update(ctx context.Context, article *entity.Article) error
	Delete(ctx context.Context, id int64) error
	// Approve flips a pending article to approved. It reports false when the
	// article was already approved, so concurrent approvals succeed once.
	Approve(ctx context.Context, id, editorID int64, at time.Time) (bool, error)
	// ExistingIDs returns the subset of ids that refer to stored articles.
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}
