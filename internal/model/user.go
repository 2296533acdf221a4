package model

import (
	"time"

	"edushare-server/internal/authz"
)

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Institution  string     `json:"institution,omitempty"`
	Role         authz.Role `json:"role"`
	IsDeleted    bool       `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PublicUser is the sanitized identity returned by auth endpoints. It never
// carries the password hash or the soft-delete flag.
type PublicUser struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Institution string     `json:"institution,omitempty"`
	Role        authz.Role `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Institution: u.Institution,
		Role:        u.Role,
	}
}

type UserList struct {
	Users []PublicUser `json:"users"`
}
