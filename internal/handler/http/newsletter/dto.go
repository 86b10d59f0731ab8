// Package newsletter provides HTTP handlers for newsletter endpoints.
package newsletter

import (
	"time"

	"dispatch/internal/domain/entity"
	"dispatch/internal/repository"
	nlUC "dispatch/internal/usecase/newsletter"
)

// DTO is the list representation. Article membership is only exposed by
// the detail endpoint, where it is filtered by the caller's visibility.
type DTO struct {
	ID          int64     `json:"id" example:"1"`
	Title       string    `json:"title" example:"Morning briefing"`
	Description string    `json:"description"`
	AuthorID    int64     `json:"author_id" example:"3"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ArticleRef is one article inside a newsletter.
type ArticleRef struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	SourceName string     `json:"source_name"`
	Approved   bool       `json:"approved"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
}

// DetailDTO is a newsletter with the articles the caller may see.
type DetailDTO struct {
	DTO
	AuthorName string       `json:"author_name"`
	Articles   []ArticleRef `json:"articles"`
}

type writeRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ArticleIDs  []int64 `json:"article_ids"`
}

func (req writeRequest) input() nlUC.Input {
	return nlUC.Input{Title: req.Title, Description: req.Description, ArticleIDs: req.ArticleIDs}
}

func toDTO(n *entity.Newsletter) DTO {
	return DTO{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		AuthorID:    n.AuthorID,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func toDetail(v *nlUC.View) DetailDTO {
	out := DetailDTO{DTO: toDTO(v.Newsletter), AuthorName: v.AuthorName, Articles: make([]ArticleRef, 0, len(v.Articles))}
	for _, a := range v.Articles {
		out.Articles = append(out.Articles, articleRef(a))
	}
	return out
}

func articleRef(a repository.ArticleWithSource) ArticleRef {
	return ArticleRef{
		ID:         a.Article.ID,
		Title:      a.Article.Title,
		SourceName: a.SourceName,
		Approved:   a.Article.Approved,
		ApprovedAt: a.Article.ApprovedAt,
	}
}
