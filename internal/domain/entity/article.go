// Package entity defines the core domain entities and validation logic for the application.
// It contains users and their roles, publishers, articles and newsletters, along with
// their validation rules and domain-specific errors.
package entity

import "time"

// Article is a piece of writing attributed to exactly one source: either a
// journalist (AuthorID) or a publisher (PublisherID).
type Article struct {
	ID          int64
	Title       string
	Content     string
	AuthorID    *int64
	PublisherID *int64
	Approved    bool
	ApprovedBy  *int64
	ApprovedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SourceKind names which side of the source exclusivity an article is on.
type SourceKind string

const (
	SourceJournalist SourceKind = "journalist"
	SourcePublisher  SourceKind = "publisher"
)

// Validate checks the required fields and the source exclusivity rule.
func (a *Article) Validate() error {
	if err := ValidateRequired("title", a.Title, maxArticleTitleLength); err != nil {
		return err
	}
	if err := ValidateRequired("content", a.Content, 0); err != nil {
		return err
	}
	return a.ValidateSource()
}

// ValidateSource enforces that exactly one of author and publisher is set.
func (a *Article) ValidateSource() error {
	switch {
	case a.AuthorID != nil && a.PublisherID != nil:
		return &ValidationError{Field: "source", Message: "Article cannot have both author and publisher"}
	case a.AuthorID == nil && a.PublisherID == nil:
		return &ValidationError{Field: "source", Message: "Article must have either an author or a publisher"}
	}
	return nil
}

// Source returns the kind and id of the article's source.
func (a *Article) Source() (SourceKind, int64) {
	if a.AuthorID != nil {
		return SourceJournalist, *a.AuthorID
	}
	if a.PublisherID != nil {
		return SourcePublisher, *a.PublisherID
	}
	return "", 0
}

// IsAuthoredBy reports whether userID wrote the article under their own name.
func (a *Article) IsAuthoredBy(userID int64) bool {
	return a.AuthorID != nil && *a.AuthorID == userID
}

// MarkApproved records the approval audit fields. It refuses a second approval.
func (a *Article) MarkApproved(editorID int64, at time.Time) error {
	if a.Approved {
		return ErrAlreadyApproved
	}
	t := at.UTC()
	a.Approved = true
	a.ApprovedBy = &editorID
	a.ApprovedAt = &t
	return nil
}

// Excerpt returns at most n runes of content.
func (a *Article) Excerpt(n int) string {
	r := []rune(a.Content)
	if len(r) <= n {
		return a.Content
	}
	return string(r[:n])
}
