package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLifetime(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
		ok   bool
	}{
		{"7d", 7 * 24 * time.Hour, true},
		{"1d", 24 * time.Hour, true},
		{"12h", 12 * time.Hour, true},
		{"30m", 30 * time.Minute, true},
		{" 7d ", 7 * 24 * time.Hour, true},
		{"7", 0, false},
		{"d", 0, false},
		{"-1d", 0, false},
		{"0h", 0, false},
		{"7w", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, ok := ParseLifetime(tc.raw)
		assert.Equal(t, tc.ok, ok, "input %q", tc.raw)
		assert.Equal(t, tc.want, got, "input %q", tc.raw)
	}
}

func TestValidateRequiresSecret(t *testing.T) {
	cfg := &Config{
		ServerPort:      "8080",
		DatabaseURL:     "postgres://localhost/edushare",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		RequestTimeout:  30 * time.Second,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidateRejectsShortSecret(t *testing.T) {
	cfg := &Config{
		ServerPort:      "8080",
		DatabaseURL:     "postgres://localhost/edushare",
		JWTSecret:       "tooshort",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		RequestTimeout:  30 * time.Second,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least")
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg := &Config{
		ServerPort:      "8080",
		DatabaseURL:     "postgres://localhost/edushare",
		JWTSecret:       "0123456789abcdef0123456789abcdef",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		RequestTimeout:  30 * time.Second,
	}

	require.NoError(t, cfg.Validate())
}

func TestLoadUsesRefreshLifetimeFallback(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("REFRESH_TOKEN_TTL", "not-a-lifetime")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
}
