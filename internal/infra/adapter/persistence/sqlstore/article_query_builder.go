package sqlstore

import (
	"strings"

	"dispatch/internal/pkg/search"
	"dispatch/internal/repository"
)

// ArticleQueryBuilder builds WHERE and ORDER BY clauses for article lists.
// The WHERE clause is shared between COUNT and SELECT queries.
type ArticleQueryBuilder struct{}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// BuildWhereClause returns "WHERE ..." with '?' placeholders, or an empty
// string when the filter matches everything.
func (qb *ArticleQueryBuilder) BuildWhereClause(f repository.ArticleFilter) (clause string, args []any) {
	var conditions []string

	if f.Approved != nil {
		if *f.Approved && f.OrAuthorID != nil {
			conditions = append(conditions, "(a.approved = TRUE OR a.author_id = ?)")
			args = append(args, *f.OrAuthorID)
		} else if *f.Approved {
			conditions = append(conditions, "a.approved = TRUE")
		} else {
			conditions = append(conditions, "a.approved = FALSE")
		}
	}

	if f.AuthorID != nil {
		conditions = append(conditions, "a.author_id = ?")
		args = append(args, *f.AuthorID)
	}

	if f.Sources != nil {
		var sources []string
		if n := len(f.Sources.PublisherIDs); n > 0 {
			sources = append(sources, "a.publisher_id IN ("+placeholders(n)+")")
			args = append(args, int64Args(f.Sources.PublisherIDs)...)
		}
		if n := len(f.Sources.JournalistIDs); n > 0 {
			sources = append(sources, "a.author_id IN ("+placeholders(n)+")")
			args = append(args, int64Args(f.Sources.JournalistIDs)...)
		}
		if len(sources) == 0 {
			// an empty subscription set matches nothing
			sources = append(sources, "1 = 0")
		}
		conditions = append(conditions, "("+strings.Join(sources, " OR ")+")")
	}

	if f.IDs != nil {
		if len(f.IDs) == 0 {
			conditions = append(conditions, "1 = 0")
		} else {
			conditions = append(conditions, "a.id IN ("+placeholders(len(f.IDs))+")")
			args = append(args, int64Args(f.IDs)...)
		}
	}

	// each keyword must appear in the title or the content
	for _, kw := range f.Keywords {
		pattern := search.LikePattern(kw)
		conditions = append(conditions,
			`(LOWER(a.title) LIKE ? ESCAPE '\' OR LOWER(a.content) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// BuildOrderBy maps a whitelisted ordering onto SQL. Ties break on id.
func (qb *ArticleQueryBuilder) BuildOrderBy(o repository.ArticleOrder) string {
	switch o {
	case repository.OrderCreatedAsc:
		return "ORDER BY a.created_at ASC, a.id ASC"
	case repository.OrderTitleAsc:
		return "ORDER BY a.title ASC, a.id ASC"
	case repository.OrderTitleDesc:
		return "ORDER BY a.title DESC, a.id DESC"
	case repository.OrderApprovedAsc:
		return "ORDER BY a.approved_at ASC, a.id ASC"
	case repository.OrderApprovedDesc:
		return "ORDER BY a.approved_at DESC, a.id DESC"
	default:
		return "ORDER BY a.created_at DESC, a.id DESC"
	}
}
