package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"edushare-server/internal/model"
)

// TokenStore is implemented by repository.TokenRepository.
type TokenStore interface {
	Create(ctx context.Context, t model.RefreshToken) error
	FindByToken(ctx context.Context, token string) (model.RefreshToken, error)
	Touch(ctx context.Context, id string, usedAt time.Time) error
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)
	ListActiveForUser(ctx context.Context, userID string, now time.Time) ([]model.RefreshToken, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TokenService issues and verifies both token kinds: signed short-lived
// access tokens and opaque persisted refresh tokens.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	tokens     TokenStore
	now        func() time.Time
}

func NewTokenService(secret string, issuer string, accessTTL time.Duration, refreshTTL time.Duration, tokens TokenStore) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret is required")
	}

	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		tokens:     tokens,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *TokenService) GenerateAccessToken(user model.User) (string, error) {
	now := s.now()
	claims := model.AccessClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken checks signature and expiry. Expiry is reported
// distinctly so callers can branch; everything else collapses into
// ErrInvalidToken.
func (s *TokenService) VerifyAccessToken(tokenString string) (*model.AccessClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &model.AccessClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrTokenExpired
		}
		return nil, model.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*model.AccessClaims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, model.ErrInvalidToken
	}

	return claims, nil
}

// GenerateRefreshToken mints an opaque random token, persists its record and
// returns it with the plaintext set. The plaintext is never recoverable from
// storage reads afterwards.
func (s *TokenService) GenerateRefreshToken(ctx context.Context, userID string, device model.DeviceInfo) (model.RefreshToken, error) {
	now := s.now()

	// The unique index on the token column backstops the generator; a random
	// collision is retried rather than surfaced.
	for attempt := 0; attempt < 3; attempt++ {
		opaque, err := randomToken(32)
		if err != nil {
			return model.RefreshToken{}, fmt.Errorf("generate refresh token: %w", err)
		}

		record := model.RefreshToken{
			ID:        uuid.NewString(),
			Token:     opaque,
			UserID:    userID,
			Device:    device,
			Revoked:   false,
			CreatedAt: now,
			ExpiresAt: now.Add(s.refreshTTL),
		}

		err = s.tokens.Create(ctx, record)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, model.ErrDuplicateToken) {
			return model.RefreshToken{}, err
		}
	}

	return model.RefreshToken{}, model.ErrDuplicateToken
}

// VerifyRefreshToken validates existence, revocation and expiry, in that
// order, and records the use on success.
func (s *TokenService) VerifyRefreshToken(ctx context.Context, tokenString string) (model.RefreshToken, error) {
	record, err := s.tokens.FindByToken(ctx, tokenString)
	if err != nil {
		return model.RefreshToken{}, err
	}

	if record.Revoked {
		// Reuse of a revoked token is a theft signal, not routine noise.
		slog.Warn("revoked refresh token presented",
			"user_id", record.UserID,
			"token_id", record.ID,
			"ip", record.Device.IP)
		return model.RefreshToken{}, model.ErrTokenRevoked
	}

	now := s.now()
	if record.Expired(now) {
		return model.RefreshToken{}, model.ErrTokenExpired
	}

	if err := s.tokens.Touch(ctx, record.ID, now); err != nil {
		return model.RefreshToken{}, err
	}
	record.LastUsedAt = &now

	return record, nil
}

func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	return s.tokens.Revoke(ctx, tokenString)
}

func (s *TokenService) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	return s.tokens.RevokeAllForUser(ctx, userID)
}

func (s *TokenService) ActiveSessions(ctx context.Context, userID string) ([]model.RefreshToken, error) {
	return s.tokens.ListActiveForUser(ctx, userID, s.now())
}

func randomToken(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
