// Package article implements the article workflow: role-scoped listing and
// search, authoring, and the one-way editorial approval that announces an
// article to its subscribers.
package article

import (
	"fmt"

	"dispatch/internal/domain/entity"
)

var (
	// ErrInvalidArticleID is returned for non-positive IDs.
	ErrInvalidArticleID = fmt.Errorf("invalid article ID: %w", entity.ErrInvalidInput)

	// ErrPublisherRequired is returned when an editor files an article
	// without naming the publisher it belongs to.
	ErrPublisherRequired = &entity.ValidationError{
		Field:   "publisher_id",
		Message: "Editors must file articles on behalf of a publisher.",
	}
)
