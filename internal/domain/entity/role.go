package entity

import "strings"

// Role is the closed set of newsroom roles. Behaviour differs per role only
// through the capability predicates below.
type Role string

const (
	RoleReader     Role = "reader"
	RoleJournalist Role = "journalist"
	RoleEditor     Role = "editor"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleReader, RoleJournalist, RoleEditor}

// ParseRole converts a user-supplied string into a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleReader, RoleJournalist, RoleEditor:
		return r, nil
	default:
		return "", &ValidationError{Field: "role", Message: "role must be one of reader, journalist, editor"}
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }

// Label returns the human readable role name.
func (r Role) Label() string {
	switch r {
	case RoleReader:
		return "Reader"
	case RoleJournalist:
		return "Journalist"
	case RoleEditor:
		return "Editor"
	}
	return "Unknown"
}

// CanAuthor reports whether the role writes articles and newsletters under its own name.
func (r Role) CanAuthor() bool { return r == RoleJournalist }

// CanApprove reports whether the role may approve or reject pending articles.
func (r Role) CanApprove() bool { return r == RoleEditor }

// CanSubscribe reports whether the role keeps subscription sets.
func (r Role) CanSubscribe() bool { return r == RoleReader }

// CanSeeUnapproved reports whether the role sees every unapproved article.
func (r Role) CanSeeUnapproved() bool { return r == RoleEditor }
