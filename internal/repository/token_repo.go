package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"edushare-server/internal/model"
)

// TokenRepository persists refresh-token records. Revocation is a flag
// update, never a delete: a revoked token must stay observable as revoked
// until the expiry sweep removes the row.
type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

const tokenColumns = `id, token, user_id, user_agent, ip, revoked, created_at, expires_at, last_used_at`

func scanToken(row pgx.Row) (model.RefreshToken, error) {
	var t model.RefreshToken
	err := row.Scan(&t.ID, &t.Token, &t.UserID, &t.Device.UserAgent, &t.Device.IP,
		&t.Revoked, &t.CreatedAt, &t.ExpiresAt, &t.LastUsedAt)
	return t, err
}

func (r *TokenRepository) Create(ctx context.Context, t model.RefreshToken) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (id, token, user_id, user_agent, ip, revoked, created_at, expires_at, last_used_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.Token, t.UserID, t.Device.UserAgent, t.Device.IP, t.Revoked,
		t.CreatedAt, t.ExpiresAt, t.LastUsedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrDuplicateToken
		}
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (r *TokenRepository) FindByToken(ctx context.Context, token string) (model.RefreshToken, error) {
	t, err := scanToken(r.pool.QueryRow(ctx,
		`SELECT `+tokenColumns+` FROM refresh_tokens WHERE token = $1`, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.RefreshToken{}, model.ErrRefreshTokenNotFound
	}
	if err != nil {
		return model.RefreshToken{}, fmt.Errorf("find refresh token: %w", err)
	}
	return t, nil
}

// Touch records a successful verification on the token.
func (r *TokenRepository) Touch(ctx context.Context, id string, usedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE refresh_tokens SET last_used_at = $2 WHERE id = $1`, id, usedAt)
	if err != nil {
		return fmt.Errorf("touch refresh token: %w", err)
	}
	return nil
}

// Revoke marks one token revoked. Revoking an already-revoked or unknown
// token is a no-op, which makes logout idempotent.
func (r *TokenRepository) Revoke(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllForUser revokes every live token a user holds in a single
// update-many statement, returning how many were revoked.
func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke all refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListActiveForUser returns the caller's live sessions: unrevoked tokens that
// have not yet expired.
func (r *TokenRepository) ListActiveForUser(ctx context.Context, userID string, now time.Time) ([]model.RefreshToken, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+tokenColumns+` FROM refresh_tokens
		 WHERE user_id = $1 AND revoked = FALSE AND expires_at > $2
		 ORDER BY created_at DESC`, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list refresh tokens: %w", err)
	}
	defer rows.Close()

	tokens := make([]model.RefreshToken, 0)
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan refresh token: %w", err)
		}
		// The stored opaque value never leaves the repository on reads.
		t.Token = ""
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// DeleteExpired removes rows past their expiry. Run by the scheduled sweep
// job; revoked-but-unexpired rows are kept so revoked-token reuse stays
// detectable.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
