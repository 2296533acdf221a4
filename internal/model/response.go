package model

import "time"

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// AuthResponse is returned by register and login: sanitized identity plus a
// fresh token pair. The refresh token plaintext appears here and nowhere else.
type AuthResponse struct {
	User                  PublicUser `json:"user"`
	AccessToken           string     `json:"accessToken"`
	RefreshToken          string     `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time  `json:"refreshTokenExpiresAt"`
}

// RefreshResponse is returned by the refresh flow: a new access token only,
// the presented refresh token stays valid.
type RefreshResponse struct {
	AccessToken string     `json:"accessToken"`
	User        PublicUser `json:"user"`
}
