package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"edushare-server/internal/authz"
	"edushare-server/internal/model"
	"edushare-server/pkg/apierror"
)

const minPasswordLength = 8

// UserStore is implemented by repository.UserRepository.
type UserStore interface {
	FindByID(ctx context.Context, id string, includeDeleted bool) (model.User, error)
	FindByEmail(ctx context.Context, email string, includeDeleted bool) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u model.User) error
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	UpdateRole(ctx context.Context, userID string, role authz.Role) error
	SoftDelete(ctx context.Context, userID string) error
	List(ctx context.Context, includeDeleted bool) ([]model.PublicUser, error)
}

// AuthService orchestrates the session lifecycle: register, login, refresh,
// logout, logout-all and change-password.
type AuthService struct {
	users  UserStore
	tokens *TokenService
	hasher PasswordHasher
	roles  *authz.Config
}

func NewAuthService(users UserStore, tokens *TokenService, hasher PasswordHasher, roles *authz.Config) *AuthService {
	return &AuthService{users: users, tokens: tokens, hasher: hasher, roles: roles}
}

// Register creates a Student (or, on explicit request, Teacher) account and
// signs the new user in. Admin roles can never be self-assigned.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, device model.DeviceInfo) (model.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if name == "" || email == "" || req.Password == "" {
		return model.AuthResponse{}, apierror.BadRequest("name, email and password are required", "")
	}
	if len(req.Password) < minPasswordLength {
		return model.AuthResponse{}, apierror.BadRequest("password is too short", "")
	}

	role := authz.RoleStudent
	if strings.TrimSpace(req.Role) != "" {
		parsed, ok := authz.ParseRole(req.Role)
		if !ok {
			return model.AuthResponse{}, apierror.BadRequest("unknown role", req.Role)
		}
		if parsed == authz.RoleAdmin || parsed == authz.RoleSuperAdmin {
			slog.Warn("registration attempted privileged role", "email", email, "role", parsed, "ip", device.IP)
			return model.AuthResponse{}, model.ErrRoleNotAllowed
		}
		role = parsed
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if exists {
		return model.AuthResponse{}, model.ErrEmailExists
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Institution:  strings.TrimSpace(req.Institution),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.AuthResponse{}, err
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email, "role", user.Role)
	return s.issuePair(ctx, user, device)
}

// Login verifies credentials and signs the user in. The caller cannot tell a
// missing account from a wrong password.
func (s *AuthService) Login(ctx context.Context, email string, password string, device model.DeviceInfo) (model.AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email, true)
	if err != nil {
		slog.Warn("login failed", "reason", "unknown email", "email", email, "ip", device.IP)
		return model.AuthResponse{}, model.ErrInvalidCredentials
	}

	if user.IsDeleted {
		slog.Warn("login failed", "reason", "account deleted", "user_id", user.ID, "ip", device.IP)
		return model.AuthResponse{}, model.ErrAccountDeleted
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		slog.Warn("login failed", "reason", "password mismatch", "user_id", user.ID, "ip", device.IP)
		return model.AuthResponse{}, model.ErrInvalidCredentials
	}

	slog.Info("login succeeded", "user_id", user.ID, "ip", device.IP)
	return s.issuePair(ctx, user, device)
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, device model.DeviceInfo) (model.RefreshResponse, error) {
	record, err := s.tokens.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return model.RefreshResponse{}, err
	}

	user, err := s.users.FindByID(ctx, record.UserID, false)
	if err != nil {
		slog.Warn("refresh rejected", "reason", "user gone", "user_id", record.UserID, "ip", device.IP)
		return model.RefreshResponse{}, model.ErrUnauthorized
	}

	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return model.RefreshResponse{}, err
	}

	return model.RefreshResponse{AccessToken: accessToken, User: user.Public()}, nil
}

// Logout revokes one refresh token. Unknown and already-revoked tokens are
// treated as success.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, refreshToken)
}

// LogoutAll revokes every live refresh token the user holds.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	revoked, err := s.tokens.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	slog.Info("all sessions revoked", "user_id", userID, "count", revoked)
	return revoked, nil
}

// ChangePassword re-hashes the password and revokes every refresh token the
// user holds, forcing re-login on every device.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, currentPassword string, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apierror.BadRequest("new password is too short", "")
	}

	user, err := s.users.FindByID(ctx, userID, false)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.PasswordHash, currentPassword); err != nil {
		slog.Warn("password change rejected", "reason", "current password mismatch", "user_id", userID)
		return model.ErrInvalidPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	revoked, err := s.tokens.RevokeAllForUser(ctx, userID)
	if err != nil {
		return err
	}

	slog.Info("password changed", "user_id", userID, "sessions_revoked", revoked)
	return nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID string) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID, false)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *AuthService) Sessions(ctx context.Context, userID string) ([]model.RefreshToken, error) {
	return s.tokens.ActiveSessions(ctx, userID)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]model.PublicUser, error) {
	return s.users.List(ctx, false)
}

// DeleteUser soft deletes an account and revokes its sessions. SuperAdmin
// accounts can only be removed by another SuperAdmin.
func (s *AuthService) DeleteUser(ctx context.Context, actor *model.AccessClaims, userID string) error {
	target, err := s.users.FindByID(ctx, userID, false)
	if err != nil {
		return err
	}

	if !s.roles.AtLeast(actor.Role, target.Role) {
		return model.ErrForbidden
	}

	if err := s.users.SoftDelete(ctx, userID); err != nil {
		return err
	}

	if _, err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}

	slog.Info("user soft deleted", "user_id", userID, "actor_id", actor.UserID)
	return nil
}

// ChangeRole sets a user's role. The new role may not outrank the actor.
func (s *AuthService) ChangeRole(ctx context.Context, actor *model.AccessClaims, userID string, rawRole string) (model.PublicUser, error) {
	role, ok := authz.ParseRole(rawRole)
	if !ok {
		return model.PublicUser{}, apierror.BadRequest("unknown role", rawRole)
	}

	if s.roles.Rank(role) > s.roles.Rank(actor.Role) {
		slog.Warn("role change rejected", "reason", "escalation above actor", "actor_id", actor.UserID, "role", role)
		return model.PublicUser{}, model.ErrForbidden
	}

	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return model.PublicUser{}, err
	}

	slog.Info("role changed", "user_id", userID, "role", role, "actor_id", actor.UserID)
	return s.GetUserByID(ctx, userID)
}

func (s *AuthService) issuePair(ctx context.Context, user model.User, device model.DeviceInfo) (model.AuthResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return model.AuthResponse{}, err
	}

	refresh, err := s.tokens.GenerateRefreshToken(ctx, user.ID, device)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		User:                  user.Public(),
		AccessToken:           accessToken,
		RefreshToken:          refresh.Token,
		RefreshTokenExpiresAt: refresh.ExpiresAt,
	}, nil
}
