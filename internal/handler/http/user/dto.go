// Package user provides read-only HTTP handlers for user profiles. The
// password hash never leaves the server.
package user

import (
	"time"

	"dispatch/internal/domain/entity"
)

// DTO is the public profile.
type DTO struct {
	ID          int64     `json:"id" example:"3"`
	Username    string    `json:"username" example:"jane"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DisplayName string    `json:"display_name" example:"Jane Doe"`
	Role        string    `json:"role" example:"journalist"`
	DateJoined  time.Time `json:"date_joined"`
}

// MeDTO adds the fields only the owner sees.
type MeDTO struct {
	DTO
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

func toDTO(u *entity.User) DTO {
	return DTO{
		ID:          u.ID,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DisplayName: u.DisplayName(),
		Role:        string(u.Role),
		DateJoined:  u.CreatedAt,
	}
}
