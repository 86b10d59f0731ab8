// Package policy holds the permission rules shared by the REST API and the
// web views. Every function is a pure predicate over the acting user and the
// resource; a nil user is an anonymous visitor.
package policy

import "dispatch/internal/domain/entity"

// Scope restricts which articles a list query may return.
type Scope int

const (
	// ScopeApproved returns approved articles only.
	ScopeApproved Scope = iota
	// ScopeApprovedOrOwn returns approved articles plus the caller's own drafts.
	ScopeApprovedOrOwn
	// ScopeAll returns every article.
	ScopeAll
)

// ArticleScope returns the visibility filter for article lists.
func ArticleScope(u *entity.User) Scope {
	switch {
	case u == nil:
		return ScopeApproved
	case u.Role.CanSeeUnapproved():
		return ScopeAll
	case u.Role.CanAuthor():
		return ScopeApprovedOrOwn
	default:
		return ScopeApproved
	}
}

// CanViewArticle: approved articles are public, editors see everything and
// journalists see their own drafts.
func CanViewArticle(u *entity.User, a *entity.Article) bool {
	if a.Approved {
		return true
	}
	if u == nil {
		return false
	}
	if u.Role.CanSeeUnapproved() {
		return true
	}
	return u.Role.CanAuthor() && a.IsAuthoredBy(u.ID)
}

// CanModifyArticle: editors may change any article, journalists only their own.
func CanModifyArticle(u *entity.User, a *entity.Article) bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case entity.RoleEditor:
		return true
	case entity.RoleJournalist:
		return a.IsAuthoredBy(u.ID)
	default:
		return false
	}
}

// CanDeleteArticle follows the same rule as CanModifyArticle.
func CanDeleteArticle(u *entity.User, a *entity.Article) bool {
	return CanModifyArticle(u, a)
}

// CanCreateArticle: journalists write under their own name, editors may file
// articles on behalf of a publisher.
func CanCreateArticle(u *entity.User) bool {
	return u != nil && (u.Role.CanAuthor() || u.Role == entity.RoleEditor)
}

// CanApprove is reserved to editors.
func CanApprove(u *entity.User) bool {
	return u != nil && u.Role.CanApprove()
}

// CanCreateNewsletter is reserved to journalists.
func CanCreateNewsletter(u *entity.User) bool {
	return u != nil && u.Role.CanAuthor()
}

// CanModifyNewsletter: editors may change any newsletter, journalists only their own.
func CanModifyNewsletter(u *entity.User, n *entity.Newsletter) bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case entity.RoleEditor:
		return true
	case entity.RoleJournalist:
		return n.AuthorID == u.ID
	default:
		return false
	}
}

// CanSubscribe is reserved to readers.
func CanSubscribe(u *entity.User) bool {
	return u != nil && u.Role.CanSubscribe()
}

// CanManagePublishers is reserved to superusers.
func CanManagePublishers(u *entity.User) bool {
	return u != nil && u.IsAdmin
}
