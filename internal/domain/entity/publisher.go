package entity

import "time"

// Publisher is a named news organization with editors and journalists.
type Publisher struct {
	ID            int64
	Name          string
	Description   string
	Website       string
	EditorIDs     []int64
	JournalistIDs []int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks name and website.
func (p *Publisher) Validate() error {
	if err := ValidateRequired("name", p.Name, maxPublisherNameLength); err != nil {
		return err
	}
	if p.Website != "" {
		if err := ValidateURL(p.Website); err != nil {
			return err
		}
	}
	return nil
}

// HasEditor reports whether the user edits for this publisher.
func (p *Publisher) HasEditor(userID int64) bool { return containsID(p.EditorIDs, userID) }

// HasJournalist reports whether the user writes for this publisher.
func (p *Publisher) HasJournalist(userID int64) bool { return containsID(p.JournalistIDs, userID) }
