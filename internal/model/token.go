package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"edushare-server/internal/authz"
)

// AccessClaims is the signed access-token payload.
type AccessClaims struct {
	UserID string     `json:"user_id"`
	Email  string     `json:"email"`
	Role   authz.Role `json:"role"`
	jwt.RegisteredClaims
}

// DeviceInfo is the request metadata recorded with each refresh token so
// users can tell their sessions apart.
type DeviceInfo struct {
	UserAgent string `json:"user_agent"`
	IP        string `json:"ip"`
}

// RefreshToken is the persisted refresh-token record. Token holds the opaque
// plaintext value only on the instance returned at issuance; it is redacted
// everywhere else.
type RefreshToken struct {
	ID         string     `json:"id"`
	Token      string     `json:"-"`
	UserID     string     `json:"user_id"`
	Device     DeviceInfo `json:"device"`
	Revoked    bool       `json:"revoked"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

func (t RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

type SessionList struct {
	Sessions []RefreshToken `json:"sessions"`
}
