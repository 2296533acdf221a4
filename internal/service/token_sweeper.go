package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// TokenSweeper is the required operational background job that deletes
// refresh-token rows past their expiry. The persistence layer has no native
// TTL, so without this job expired rows accumulate forever.
type TokenSweeper struct {
	tokens   TokenStore
	schedule string
	cron     *cron.Cron
}

func NewTokenSweeper(tokens TokenStore, schedule string) *TokenSweeper {
	return &TokenSweeper{tokens: tokens, schedule: schedule, cron: cron.New()}
}

func (s *TokenSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("refresh token sweep scheduled", "schedule", s.schedule)
	return nil
}

func (s *TokenSweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep runs one pass immediately, outside the schedule. Used at startup and
// by tests.
func (s *TokenSweeper) Sweep(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx, time.Now().UTC())
}

func (s *TokenSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.Sweep(ctx)
	if err != nil {
		slog.Error("refresh token sweep failed", "error", err)
		return
	}

	if deleted > 0 {
		slog.Info("expired refresh tokens deleted", "count", deleted)
	}
}
