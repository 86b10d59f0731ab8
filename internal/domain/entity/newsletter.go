package entity

import "time"

// Newsletter is a journalist-curated collection of articles.
type Newsletter struct {
	ID          int64
	Title       string
	Description string
	AuthorID    int64
	ArticleIDs  []int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the title and removes duplicate article ids.
func (n *Newsletter) Validate() error {
	if err := ValidateRequired("title", n.Title, maxNewsletterTitleLength); err != nil {
		return err
	}
	if n.AuthorID == 0 {
		return &ValidationError{Field: "author", Message: "newsletter must have an author"}
	}
	n.ArticleIDs = uniqueIDs(n.ArticleIDs)
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
