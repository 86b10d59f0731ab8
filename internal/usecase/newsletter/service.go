// Package newsletter implements the journalist-curated newsletter use cases.
package newsletter

import (
	"context"
	"fmt"
	"time"

	"dispatch/internal/domain/entity"
	"dispatch/internal/policy"
	"dispatch/internal/repository"
)

// ErrInvalidNewsletterID is returned for non-positive ids.
var ErrInvalidNewsletterID = fmt.Errorf("invalid newsletter ID: %w", entity.ErrInvalidInput)

// Service provides the newsletter use cases.
type Service struct {
	Store repository.Store
	Now   func() time.Time
}

// Input holds the writable fields of a newsletter.
type Input struct {
	Title       string
	Description string
	ArticleIDs  []int64
}

// View is a newsletter with the articles the caller may see.
type View struct {
	Newsletter *entity.Newsletter
	AuthorName string
	Articles   []repository.ArticleWithSource
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List returns all newsletters, or only those by authorID when it is non-zero.
func (s *Service) List(ctx context.Context, authorID int64) ([]*entity.Newsletter, error) {
	var f repository.NewsletterFilter
	if authorID > 0 {
		f.AuthorID = &authorID
	}
	list, err := s.Store.Newsletters().List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list newsletters: %w", err)
	}
	return list, nil
}

// Get returns the newsletter with its articles filtered by the caller's
// visibility. Readers and visitors only see approved articles.
func (s *Service) Get(ctx context.Context, actor *entity.User, id int64) (*View, error) {
	if id <= 0 {
		return nil, ErrInvalidNewsletterID
	}
	n, err := s.Store.Newsletters().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get newsletter: %w", err)
	}
	if n == nil {
		return nil, entity.ErrNotFound
	}

	v := &View{Newsletter: n}
	author, err := s.Store.Users().Get(ctx, n.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("get newsletter author: %w", err)
	}
	if author != nil {
		v.AuthorName = author.DisplayName()
	}

	if len(n.ArticleIDs) == 0 {
		return v, nil
	}
	f := repository.ArticleFilter{IDs: n.ArticleIDs, Order: repository.OrderCreatedDesc}
	list, err := s.Store.Articles().List(ctx, f, 0, len(n.ArticleIDs))
	if err != nil {
		return nil, fmt.Errorf("list newsletter articles: %w", err)
	}
	for _, a := range list {
		if policy.CanViewArticle(actor, a.Article) {
			v.Articles = append(v.Articles, a)
		}
	}
	return v, nil
}

// checkArticles rejects ids that do not refer to stored articles.
func checkArticles(ctx context.Context, repo repository.ArticleRepository, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := repo.ExistingIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return &entity.ValidationError{Field: "articles", Message: "One or more articles do not exist."}
	}
	return nil
}

// Create stores a newsletter authored by the calling journalist.
func (s *Service) Create(ctx context.Context, actor *entity.User, in Input) (*entity.Newsletter, error) {
	if !policy.CanCreateNewsletter(actor) {
		return nil, entity.ErrForbidden
	}
	now := s.now().UTC()
	n := &entity.Newsletter{
		Title:       in.Title,
		Description: in.Description,
		AuthorID:    actor.ID,
		ArticleIDs:  in.ArticleIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		if err := checkArticles(ctx, tx.Articles(), n.ArticleIDs); err != nil {
			return err
		}
		return tx.Newsletters().Create(ctx, n)
	})
	if err != nil {
		return nil, fmt.Errorf("create newsletter: %w", err)
	}
	return n, nil
}

// Update replaces the newsletter fields and article set.
func (s *Service) Update(ctx context.Context, actor *entity.User, id int64, in Input) (*entity.Newsletter, error) {
	if id <= 0 {
		return nil, ErrInvalidNewsletterID
	}
	var updated *entity.Newsletter
	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		n, err := tx.Newsletters().Get(ctx, id)
		if err != nil {
			return err
		}
		if n == nil {
			return entity.ErrNotFound
		}
		if !policy.CanModifyNewsletter(actor, n) {
			return entity.ErrForbidden
		}
		n.Title = in.Title
		n.Description = in.Description
		n.ArticleIDs = in.ArticleIDs
		if err := n.Validate(); err != nil {
			return err
		}
		if err := checkArticles(ctx, tx.Articles(), n.ArticleIDs); err != nil {
			return err
		}
		n.UpdatedAt = s.now().UTC()
		if err := tx.Newsletters().Update(ctx, n); err != nil {
			return err
		}
		updated = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update newsletter: %w", err)
	}
	return updated, nil
}

// Delete removes the newsletter. The articles are kept.
func (s *Service) Delete(ctx context.Context, actor *entity.User, id int64) error {
	if id <= 0 {
		return ErrInvalidNewsletterID
	}
	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		n, err := tx.Newsletters().Get(ctx, id)
		if err != nil {
			return err
		}
		if n == nil {
			return entity.ErrNotFound
		}
		if !policy.CanModifyNewsletter(actor, n) {
			return entity.ErrForbidden
		}
		return tx.Newsletters().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete newsletter: %w", err)
	}
	return nil
}
