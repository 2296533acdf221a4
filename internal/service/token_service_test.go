package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edushare-server/internal/authz"
	"edushare-server/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestTokenService(t *testing.T, store TokenStore) *TokenService {
	t.Helper()

	svc, err := NewTokenService(testSecret, "edushare", 15*time.Minute, 7*24*time.Hour, store)
	require.NoError(t, err)
	return svc
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("", "edushare", time.Minute, time.Hour, newMemTokenStore())
	require.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t, newMemTokenStore())
	user := model.User{
		ID:    "user-1",
		Email: "a@x.com",
		Role:  authz.RoleTeacher,
	}

	signed, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Role, claims.Role)
	assert.Equal(t, "edushare", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyAccessTokenExpired(t *testing.T) {
	svc := newTestTokenService(t, newMemTokenStore())
	svc.now = func() time.Time { return time.Now().UTC().Add(-time.Hour) }

	signed, err := svc.GenerateAccessToken(model.User{ID: "user-1", Email: "a@x.com", Role: authz.RoleStudent})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().UTC() }
	_, err = svc.VerifyAccessToken(signed)
	assert.ErrorIs(t, err, model.ErrTokenExpired)
}

func TestVerifyAccessTokenRejectsTampering(t *testing.T) {
	svc := newTestTokenService(t, newMemTokenStore())

	signed, err := svc.GenerateAccessToken(model.User{ID: "user-1", Email: "a@x.com", Role: authz.RoleStudent})
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(signed + "x")
	assert.ErrorIs(t, err, model.ErrInvalidToken)

	_, err = svc.VerifyAccessToken("not-a-jwt-at-all")
	assert.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestVerifyAccessTokenRejectsWrongKey(t *testing.T) {
	svc := newTestTokenService(t, newMemTokenStore())

	other, err := NewTokenService("ffffffffffffffffffffffffffffffff", "edushare", 15*time.Minute, time.Hour, newMemTokenStore())
	require.NoError(t, err)

	signed, err := other.GenerateAccessToken(model.User{ID: "user-1", Email: "a@x.com", Role: authz.RoleStudent})
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(signed)
	assert.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestVerifyAccessTokenRejectsWrongAlgorithm(t *testing.T) {
	svc := newTestTokenService(t, newMemTokenStore())

	// An unsigned token must never pass, even with plausible claims.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, model.AccessClaims{
		UserID: "user-1",
		Email:  "a@x.com",
		Role:   authz.RoleSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "edushare",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(signed)
	assert.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestGenerateRefreshTokenPersistsRecord(t *testing.T) {
	store := newMemTokenStore()
	svc := newTestTokenService(t, store)
	device := model.DeviceInfo{UserAgent: "test-agent", IP: "10.0.0.1"}

	record, err := svc.GenerateRefreshToken(context.Background(), "user-1", device)
	require.NoError(t, err)
	assert.NotEmpty(t, record.Token)
	assert.False(t, record.Revoked)
	assert.Equal(t, device, record.Device)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), record.ExpiresAt, time.Minute)

	stored, err := store.FindByToken(context.Background(), record.Token)
	require.NoError(t, err)
	assert.Equal(t, record.ID, stored.ID)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	svc := newTestTokenService(t, newMemTokenStore())

	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		record, err := svc.GenerateRefreshToken(context.Background(), "user-1", model.DeviceInfo{})
		require.NoError(t, err)

		_, dup := seen[record.Token]
		require.False(t, dup, "duplicate refresh token generated")
		seen[record.Token] = struct{}{}
	}
}

func TestVerifyRefreshTokenUpdatesLastUsed(t *testing.T) {
	store := newMemTokenStore()
	svc := newTestTokenService(t, store)

	record, err := svc.GenerateRefreshToken(context.Background(), "user-1", model.DeviceInfo{})
	require.NoError(t, err)

	verified, err := svc.VerifyRefreshToken(context.Background(), record.Token)
	require.NoError(t, err)
	require.NotNil(t, verified.LastUsedAt)

	stored, err := store.FindByToken(context.Background(), record.Token)
	require.NoError(t, err)
	require.NotNil(t, stored.LastUsedAt)
}

func TestVerifyRefreshTokenUnknown(t *testing.T) {
	svc := newTestTokenService(t, newMemTokenStore())

	_, err := svc.VerifyRefreshToken(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, model.ErrRefreshTokenNotFound)
}

func TestRevocationIsPermanent(t *testing.T) {
	store := newMemTokenStore()
	svc := newTestTokenService(t, store)

	record, err := svc.GenerateRefreshToken(context.Background(), "user-1", model.DeviceInfo{})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), record.Token))

	for i := 0; i < 3; i++ {
		_, err = svc.VerifyRefreshToken(context.Background(), record.Token)
		assert.ErrorIs(t, err, model.ErrTokenRevoked)
	}
}

func TestRevokedWinsOverExpired(t *testing.T) {
	store := newMemTokenStore()
	svc := newTestTokenService(t, store)

	record, err := svc.GenerateRefreshToken(context.Background(), "user-1", model.DeviceInfo{})
	require.NoError(t, err)

	record.Revoked = true
	record.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	store.overwrite(record)

	_, err = svc.VerifyRefreshToken(context.Background(), record.Token)
	assert.ErrorIs(t, err, model.ErrTokenRevoked)
}

func TestVerifyRefreshTokenExpired(t *testing.T) {
	store := newMemTokenStore()
	svc := newTestTokenService(t, store)

	record, err := svc.GenerateRefreshToken(context.Background(), "user-1", model.DeviceInfo{})
	require.NoError(t, err)

	record.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	store.overwrite(record)

	_, err = svc.VerifyRefreshToken(context.Background(), record.Token)
	assert.ErrorIs(t, err, model.ErrTokenExpired)
}

func TestSweepDeletesOnlyExpired(t *testing.T) {
	store := newMemTokenStore()
	svc := newTestTokenService(t, store)

	live, err := svc.GenerateRefreshToken(context.Background(), "user-1", model.DeviceInfo{})
	require.NoError(t, err)

	expired, err := svc.GenerateRefreshToken(context.Background(), "user-1", model.DeviceInfo{})
	require.NoError(t, err)
	expired.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	store.overwrite(expired)

	sweeper := NewTokenSweeper(store, "@hourly")
	deleted, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = store.FindByToken(context.Background(), live.Token)
	assert.NoError(t, err)
	_, err = store.FindByToken(context.Background(), expired.Token)
	assert.ErrorIs(t, err, model.ErrRefreshTokenNotFound)
}
