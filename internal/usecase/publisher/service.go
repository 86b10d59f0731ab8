// Package publisher implements publisher browsing and the admin-only
// management of publishers and their members.
package publisher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/domain/entity"
	"dispatch/internal/policy"
	"dispatch/internal/repository"
)

// ErrInvalidPublisherID is returned for non-positive ids.
var ErrInvalidPublisherID = fmt.Errorf("invalid publisher ID: %w", entity.ErrInvalidInput)

// Service provides the publisher use cases.
type Service struct {
	Store repository.Store
	Now   func() time.Time
}

// Input holds the writable fields of a publisher.
type Input struct {
	Name        string
	Description string
	Website     string
}

// MemberInput adds or removes one user from a publisher's editors or journalists.
type MemberInput struct {
	UserID int64
	Kind   repository.MemberKind
	Member bool
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List returns every publisher with its approved article count.
func (s *Service) List(ctx context.Context) ([]repository.PublisherWithCount, error) {
	list, err := s.Store.Publishers().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list publishers: %w", err)
	}
	return list, nil
}

// Get returns a publisher by id.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Publisher, error) {
	if id <= 0 {
		return nil, ErrInvalidPublisherID
	}
	p, err := s.Store.Publishers().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get publisher: %w", err)
	}
	if p == nil {
		return nil, entity.ErrNotFound
	}
	return p, nil
}

// Detail returns a publisher with its approved article count.
func (s *Service) Detail(ctx context.Context, id int64) (*repository.PublisherWithCount, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	approved := true
	n, err := s.Store.Articles().Count(ctx, repository.ArticleFilter{
		Approved: &approved,
		Sources:  &entity.SubscriptionSet{PublisherIDs: []int64{id}},
	})
	if err != nil {
		return nil, fmt.Errorf("count publisher articles: %w", err)
	}
	return &repository.PublisherWithCount{Publisher: p, ArticleCount: n}, nil
}

// ForMember returns the publishers the user edits or writes for.
func (s *Service) ForMember(ctx context.Context, userID int64) ([]*entity.Publisher, error) {
	list, err := s.Store.Publishers().ListForMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list member publishers: %w", err)
	}
	return list, nil
}

func uniqueName(ctx context.Context, repo repository.PublisherRepository, name string, excludeID int64) error {
	exists, err := repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("publisher %q: %w", name, entity.ErrConflict)
	}
	return nil
}

// Create adds a publisher. Names are unique, ignoring case.
func (s *Service) Create(ctx context.Context, actor *entity.User, in Input) (*entity.Publisher, error) {
	if !policy.CanManagePublishers(actor) {
		return nil, entity.ErrForbidden
	}
	now := s.now().UTC()
	p := &entity.Publisher{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Website:     in.Website,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		if err := uniqueName(ctx, tx.Publishers(), p.Name, 0); err != nil {
			return err
		}
		return tx.Publishers().Create(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("create publisher: %w", err)
	}
	return p, nil
}

// Update replaces name, description and website.
func (s *Service) Update(ctx context.Context, actor *entity.User, id int64, in Input) (*entity.Publisher, error) {
	if !policy.CanManagePublishers(actor) {
		return nil, entity.ErrForbidden
	}
	if id <= 0 {
		return nil, ErrInvalidPublisherID
	}
	var updated *entity.Publisher
	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		p, err := tx.Publishers().Get(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return entity.ErrNotFound
		}
		p.Name = strings.TrimSpace(in.Name)
		p.Description = in.Description
		p.Website = in.Website
		if err := p.Validate(); err != nil {
			return err
		}
		if err := uniqueName(ctx, tx.Publishers(), p.Name, p.ID); err != nil {
			return err
		}
		p.UpdatedAt = s.now().UTC()
		if err := tx.Publishers().Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update publisher: %w", err)
	}
	return updated, nil
}

// Delete removes a publisher together with its articles.
func (s *Service) Delete(ctx context.Context, actor *entity.User, id int64) error {
	if !policy.CanManagePublishers(actor) {
		return entity.ErrForbidden
	}
	if id <= 0 {
		return ErrInvalidPublisherID
	}
	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		p, err := tx.Publishers().Get(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return entity.ErrNotFound
		}
		return tx.Publishers().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete publisher: %w", err)
	}
	return nil
}

// SetMember assigns or removes an editor or journalist. The user's role must
// match the membership kind.
func (s *Service) SetMember(ctx context.Context, actor *entity.User, publisherID int64, in MemberInput) (*entity.Publisher, error) {
	if !policy.CanManagePublishers(actor) {
		return nil, entity.ErrForbidden
	}
	if publisherID <= 0 {
		return nil, ErrInvalidPublisherID
	}
	var want entity.Role
	switch in.Kind {
	case repository.MemberEditor:
		want = entity.RoleEditor
	case repository.MemberJournalist:
		want = entity.RoleJournalist
	default:
		return nil, &entity.ValidationError{Field: "kind", Message: "kind must be editor or journalist"}
	}

	var result *entity.Publisher
	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		p, err := tx.Publishers().Get(ctx, publisherID)
		if err != nil {
			return err
		}
		if p == nil {
			return entity.ErrNotFound
		}
		u, err := tx.Users().Get(ctx, in.UserID)
		if err != nil {
			return err
		}
		if u == nil {
			return &entity.ValidationError{Field: "user_id", Message: "User does not exist."}
		}
		if u.Role != want {
			return &entity.ValidationError{Field: "user_id", Message: fmt.Sprintf("User is not a %s.", want)}
		}
		if err := tx.Publishers().SetMember(ctx, publisherID, u.ID, in.Kind, in.Member); err != nil {
			return err
		}
		result, err = tx.Publishers().Get(ctx, publisherID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("set publisher member: %w", err)
	}
	return result, nil
}
