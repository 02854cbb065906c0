// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carterperez-dev/airline-directory/internal/core"
	"github.com/carterperez-dev/airline-directory/internal/middleware"
	"github.com/carterperez-dev/airline-directory/internal/rbac"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
)

type UserInfo struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         rbac.Role
	IsActive     bool
	Avatar       string
	TokenVersion int
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, userID string) error
	RecordLogin(ctx context.Context, userID string) error
}

type TokenIssuer interface {
	CreateAccessToken(claims SessionClaims) (*IssuedToken, error)
	ParseAccessToken(token string) (*middleware.AccessTokenClaims, error)
}

type Service struct {
	tokens    TokenIssuer
	users     UserProvider
	blacklist Blacklist
	logger    *slog.Logger
}

func NewService(
	tokens TokenIssuer,
	users UserProvider,
	blacklist Blacklist,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tokens:    tokens,
		users:     users,
		blacklist: blacklist,
		logger:    logger.With("component", "auth"),
	}
}

type Session struct {
	Token *IssuedToken
	User  *UserInfo
}

// Login checks credentials before account state, so a deactivated account
// is only revealed to a caller who already knows the password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	if newHash != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.Warn("password rehash failed", "user_id", user.ID, "error", err)
		}
	}

	if err := s.users.RecordLogin(ctx, user.ID); err != nil {
		s.logger.Warn("record login failed", "user_id", user.ID, "error", err)
	}

	return s.issue(user)
}

func (s *Service) Logout(ctx context.Context, claims *middleware.AccessTokenClaims) error {
	if claims == nil {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}

	if err := s.blacklist.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

// VerifyAccessToken is the full check used by the authentication
// middleware: signature, blacklist, account state and token_version.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.tokens.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("verify token: %w", core.ErrForbidden)
	}

	if claims.TokenVersion < user.TokenVersion {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	// role changes take effect without re-login
	claims.Role = user.Role

	return claims, nil
}

// ChangePassword bumps token_version, which invalidates every other
// session, and returns a fresh session for the caller.
func (s *Service) ChangePassword(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
	req ChangePasswordRequest,
) (*Session, error) {
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, _, err := core.VerifyPasswordWithRehash(
		req.CurrentPassword,
		user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	if err := s.users.IncrementTokenVersion(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("increment token version: %w", err)
	}

	if err := s.blacklist.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		s.logger.Warn("blacklist old token failed", "user_id", user.ID, "error", err)
	}

	user.TokenVersion++
	return s.issue(user)
}

func (s *Service) Me(ctx context.Context, userID string) (*UserInfo, error) {
	if userID == "" {
		return nil, fmt.Errorf("me: %w", core.ErrUnauthorized)
	}

	return s.users.GetByID(ctx, userID)
}

func (s *Service) issue(user *UserInfo) (*Session, error) {
	token, err := s.tokens.CreateAccessToken(SessionClaims{
		UserID:       user.ID,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &Session{Token: token, User: user}, nil
}

var _ middleware.TokenVerifier = (*Service)(nil)
