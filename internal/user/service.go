// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/airline-directory/internal/auth"
	"github.com/carterperez-dev/airline-directory/internal/core"
	"github.com/carterperez-dev/airline-directory/internal/mailer"
	"github.com/carterperez-dev/airline-directory/internal/rbac"
)

var (
	ErrInvitationFailed = errors.New("failed to send invitation email")
	ErrSelfDeactivation = core.BadRequestError("cannot deactivate your own account")
	ErrSelfRoleChange   = core.BadRequestError("cannot change your own role")
	ErrInvalidAvatar    = core.BadRequestError("avatar must be a relative upload path")
)

type InvitationRecorder interface {
	ObserveInvitation(outcome string)
}

type ServiceConfig struct {
	Mailer      mailer.Sender
	Invitations InvitationRecorder
	LoginURL    string
	Logger      *slog.Logger
}

type Service struct {
	repo        Repository
	mailer      mailer.Sender
	invitations InvitationRecorder
	loginURL    string
	logger      *slog.Logger
}

func NewService(repo Repository, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		mailer:      cfg.Mailer,
		invitations: cfg.Invitations,
		loginURL:    cfg.LoginURL,
		logger:      logger.With("component", "user"),
	}
}

// CreateUser persists the account with a generated temporary password and
// mails it. If the mail cannot be sent the row is removed again so no
// account exists whose owner never learned the password.
func (s *Service) CreateUser(
	ctx context.Context,
	actorRole rbac.Role,
	req CreateUserRequest,
) (*User, error) {
	if err := rbac.Authorize(actorRole, rbac.ManageUsers); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	password, err := core.GenerateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	hash, err := core.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			s.observeInvitation("duplicate")
		}
		return nil, err
	}

	if err := s.sendInvitation(ctx, user, password); err != nil {
		s.observeInvitation("mail_failed")
		s.logger.Error("invitation mail failed, removing user",
			"user_id", user.ID,
			"error", err,
		)

		if delErr := s.repo.Delete(context.WithoutCancel(ctx), user.ID); delErr != nil {
			s.logger.Error("compensating delete failed",
				"user_id", user.ID,
				"error", delErr,
			)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvitationFailed, err)
	}

	s.observeInvitation("sent")
	s.logger.Info("user invited", "user_id", user.ID, "role", user.Role)

	return user, nil
}

func (s *Service) sendInvitation(ctx context.Context, u *User, password string) error {
	if s.mailer == nil {
		return mailer.ErrNotConfigured
	}

	msg, err := mailer.InvitationMessage(mailer.Invitation{
		Name:     u.Name,
		Email:    u.Email,
		Role:     string(u.Role),
		Password: password,
		LoginURL: s.loginURL,
	})
	if err != nil {
		return err
	}

	return s.mailer.Send(ctx, msg)
}

func (s *Service) observeInvitation(outcome string) {
	if s.invitations != nil {
		s.invitations.ObserveInvitation(outcome)
	}
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

// UpdateUser is the admin edit. Setting is_active to false goes through
// Deactivate so existing sessions die with it.
func (s *Service) UpdateUser(
	ctx context.Context,
	actorID, id string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}

	if req.Role != nil {
		role, err := rbac.ParseRole(*req.Role)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		if role != user.Role && actorID == user.ID {
			return nil, ErrSelfRoleChange
		}
		user.Role = role
	}

	deactivate := false
	if req.IsActive != nil {
		if !*req.IsActive && user.IsActive {
			if actorID == user.ID {
				return nil, ErrSelfDeactivation
			}
			deactivate = true
		} else {
			user.IsActive = *req.IsActive
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if deactivate {
		return s.Deactivate(ctx, actorID, id)
	}

	return user, nil
}

// Deactivate disables login and revokes outstanding tokens. Authored
// content is left untouched.
func (s *Service) Deactivate(ctx context.Context, actorID, id string) (*User, error) {
	if actorID == id {
		return nil, ErrSelfDeactivation
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("user deactivated", "user_id", id, "by", actorID)

	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}

	if req.Avatar != nil {
		avatar := strings.TrimSpace(*req.Avatar)
		if !ValidAvatarPath(avatar) {
			return nil, ErrInvalidAvatar
		}
		user.Avatar = avatar
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func ValidAvatarPath(p string) bool {
	return core.ValidUploadPath(p)
}

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) IncrementTokenVersion(ctx context.Context, userID string) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) RecordLogin(ctx context.Context, userID string) error {
	return s.repo.TouchLastLogin(ctx, userID)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		IsActive:     u.IsActive,
		Avatar:       u.Avatar,
		TokenVersion: u.TokenVersion,
	}
}

var _ auth.UserProvider = (*Service)(nil)
