// Package publisher provides HTTP handlers for publishers. Reads are public;
// writes and membership changes are reserved to administrators.
package publisher

import (
	"time"

	"dispatch/internal/domain/entity"
	"dispatch/internal/repository"
	pubUC "dispatch/internal/usecase/publisher"
)

type DTO struct {
	ID            int64     `json:"id" example:"1"`
	Name          string    `json:"name" example:"The Daily"`
	Description   string    `json:"description"`
	Website       string    `json:"website,omitempty" example:"https://daily.example.com"`
	EditorIDs     []int64   `json:"editor_ids"`
	JournalistIDs []int64   `json:"journalist_ids"`
	ArticleCount  *int64    `json:"article_count,omitempty" example:"12"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type writeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

type memberRequest struct {
	UserID int64  `json:"user_id"`
	Kind   string `json:"kind" example:"journalist"`
	// Member defaults to true; false removes the user.
	Member *bool `json:"member"`
}

func (req memberRequest) input() pubUC.MemberInput {
	member := req.Member == nil || *req.Member
	return pubUC.MemberInput{UserID: req.UserID, Kind: repository.MemberKind(req.Kind), Member: member}
}

func toDTO(p *entity.Publisher) DTO {
	return DTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Website:       p.Website,
		EditorIDs:     nonNil(p.EditorIDs),
		JournalistIDs: nonNil(p.JournalistIDs),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func withCount(pc repository.PublisherWithCount) DTO {
	d := toDTO(pc.Publisher)
	n := pc.ArticleCount
	d.ArticleCount = &n
	return d
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
