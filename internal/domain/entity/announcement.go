package entity

// Announcement is the payload handed to notification channels once an
// article has been approved and committed.
type Announcement struct {
	Article    *Article
	SourceKind SourceKind
	SourceName string
	// Recipients are the active readers subscribed to the article's source.
	Recipients []*User
}

// RecipientEmails returns the non-empty recipient addresses in order.
func (a *Announcement) RecipientEmails() []string {
	out := make([]string, 0, len(a.Recipients))
	for _, u := range a.Recipients {
		if u != nil && u.Email != "" {
			out = append(out, u.Email)
		}
	}
	return out
}
