package repository

import (
	"context"

	"dispatch/internal/domain/entity"
)

// PublisherWithCount is a publisher with its approved article count.
type PublisherWithCount struct {
	Publisher    *entity.Publisher
	ArticleCount int64
}

// MemberKind selects the publisher membership list.
type MemberKind string

const (
	MemberEditor     MemberKind = "editor"
	MemberJournalist MemberKind = "journalist"
)

type PublisherRepository interface {
	List(ctx context.Context) ([]PublisherWithCount, error)
	// ListForMember returns the publishers the user edits or writes for.
	ListForMember(ctx context.Context, userID int64) ([]*entity.Publisher, error)
	// Get returns (nil, nil) if the publisher is not found.
	Get(ctx context.Context, id int64) (*entity.Publisher, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, publisher *entity.Publisher) error
	Update(ctx context.Context, publisher *entity.Publisher) error
	Delete(ctx context.Context, id int64) error
	SetMember(ctx context.Context, publisherID, userID int64, kind MemberKind, member bool) error
}
