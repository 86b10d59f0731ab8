package entity

import (
	"strings"
	"time"
)

// User is an account of any role.
type User struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	Role         Role
	PasswordHash string
	IsActive     bool
	IsAdmin      bool
	CreatedAt    time.Time
}

// DisplayName returns the full name, or the username when no name is set.
func (u *User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Username
	}
	return full
}

// Is reports whether u is the user with the given id. A nil user matches nothing.
func (u *User) Is(id int64) bool {
	return u != nil && u.ID == id
}

// Validate checks the profile fields of a user.
func (u *User) Validate() error {
	if err := ValidateRequired("username", u.Username, maxUsernameLength); err != nil {
		return err
	}
	if u.Email != "" {
		if err := ValidateEmail(u.Email); err != nil {
			return err
		}
	}
	if !u.Role.Valid() {
		return &ValidationError{Field: "role", Message: "role must be one of reader, journalist, editor"}
	}
	return nil
}

// SubscriptionSet holds a reader's subscriptions by id.
type SubscriptionSet struct {
	PublisherIDs  []int64
	JournalistIDs []int64
}

// HasPublisher reports whether id is in the publisher subscriptions.
func (s SubscriptionSet) HasPublisher(id int64) bool { return containsID(s.PublisherIDs, id) }

// HasJournalist reports whether id is in the journalist subscriptions.
func (s SubscriptionSet) HasJournalist(id int64) bool { return containsID(s.JournalistIDs, id) }

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
