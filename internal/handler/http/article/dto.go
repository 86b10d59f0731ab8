// Package article provides HTTP handlers for article endpoints: role-scoped
// lists, the reader's subscribed feed, the editor review queue and CRUD.
package article

import (
	"time"

	"dispatch/internal/repository"
)

// DTO represents the JSON structure for article data transfer.
// Approval fields are output only.
type DTO struct {
	ID          int64      `json:"id" example:"1"`
	Title       string     `json:"title" example:"City council approves budget"`
	Content     string     `json:"content" example:"The council voted 7-2..."`
	AuthorID    *int64     `json:"author_id,omitempty" example:"3"`
	PublisherID *int64     `json:"publisher_id,omitempty"`
	Source      string     `json:"source" example:"journalist"`
	SourceName  string     `json:"source_name" example:"Jane Doe"`
	Approved    bool       `json:"approved" example:"false"`
	ApprovedBy  *int64     `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" example:"2025-10-26T12:00:00Z"`
	UpdatedAt   time.Time  `json:"updated_at" example:"2025-10-26T12:00:00Z"`
}

type createRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	PublisherID *int64 `json:"publisher_id"`
}

type updateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func toDTO(a repository.ArticleWithSource) DTO {
	kind, _ := a.Article.Source()
	return DTO{
		ID:          a.Article.ID,
		Title:       a.Article.Title,
		Content:     a.Article.Content,
		AuthorID:    a.Article.AuthorID,
		PublisherID: a.Article.PublisherID,
		Source:      string(kind),
		SourceName:  a.SourceName,
		Approved:    a.Article.Approved,
		ApprovedBy:  a.Article.ApprovedBy,
		ApprovedAt:  a.Article.ApprovedAt,
		CreatedAt:   a.Article.CreatedAt,
		UpdatedAt:   a.Article.UpdatedAt,
	}
}

func toDTOs(list []repository.ArticleWithSource) []DTO {
	out := make([]DTO, 0, len(list))
	for _, a := range list {
		out = append(out, toDTO(a))
	}
	return out
}
