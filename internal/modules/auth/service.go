package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"campaignhub/internal/domain"
	"campaignhub/internal/pkg/password"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: incorrect username or password", domain.ErrUnauthorized)
	ErrResetTokenUsed     = fmt.Errorf("%w: reset token is no longer valid", domain.ErrUnauthorized)
)

// Service contains account and authentication logic.
type Service struct {
	users  UserRepository
	tokens TokenService
	logger *slog.Logger
	now    func() time.Time
}

type LoginResult struct {
	User        *domain.User
	AccessToken string
	ExpiresIn   time.Duration
}

func NewService(users UserRepository, tokens TokenService, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger.With(slog.String("module", "auth")),
		now:    time.Now,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if problems := password.Strength(req.Password); len(problems) > 0 {
		return nil, &domain.ValidationError{Message: "weak password", Details: problems}
	}
	if taken, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return nil, err
	} else if taken {
		return nil, &domain.ValidationError{Message: "Username already exists"}
	}
	if taken, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return nil, err
	} else if taken {
		return nil, &domain.ValidationError{Message: "Email already exists"}
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		Username:     username,
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         domain.RoleCreator,
		Status:       domain.UserActive,
		Language:     req.Language,
		Timezone:     req.Timezone,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("user_id", u.ID), slog.String("username", u.Username))
	return u, nil
}

// Login authenticates by username. Unknown users, wrong passwords and
// inactive accounts all report ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(req.Password, u.PasswordHash) {
		s.logger.Warn("login failed", slog.String("username", u.Username))
		return nil, ErrInvalidCredentials
	}
	if u.Status != domain.UserActive {
		s.logger.Warn("login refused for inactive account",
			slog.String("username", u.Username),
			slog.String("status", string(u.Status)),
		)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueSessionToken(u.ID, u.Username, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLogin = &now

	s.logger.Info("user logged in", slog.String("user_id", u.ID))
	return &LoginResult{User: u, AccessToken: token, ExpiresIn: s.tokens.TTL()}, nil
}

func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	if patch.Empty() {
		return s.users.GetByID(ctx, userID)
	}

	var username, email string
	if patch.Username != nil {
		username = strings.ToLower(strings.TrimSpace(*patch.Username))
		patch.Username = &username
	}
	if patch.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*patch.Email))
		patch.Email = &email
	}
	if err := s.ensureUnique(ctx, userID, username, email); err != nil {
		return nil, err
	}

	u, err := s.users.Update(ctx, userID, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", slog.String("user_id", userID))
	return u, nil
}

func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user deleted", slog.String("user_id", userID))
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !password.Verify(req.CurrentPassword, u.PasswordHash) {
		return &domain.ValidationError{Message: "current password is incorrect"}
	}

	if err := s.setPassword(ctx, userID, req.NewPassword); err != nil {
		return err
	}

	s.logger.Info("password changed", slog.String("user_id", userID))
	return nil
}

// ForgotPassword stores a fresh reset token for the account behind email and
// returns it. An unknown email yields an empty token and no error so that
// callers cannot probe for registered addresses.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	token, err := s.tokens.IssuePasswordResetToken(u.ID)
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}
	if err := s.users.SetResetToken(ctx, u.ID, token, s.now().UTC().Add(s.tokens.ResetTTL())); err != nil {
		return "", err
	}

	s.logger.Info("password reset requested", slog.String("user_id", u.ID))
	return token, nil
}

// ResetPassword consumes a reset token. The token must be the one currently
// stored on the account; setting the password clears it.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	claims, err := s.tokens.ParsePasswordResetToken(req.Token)
	if err != nil {
		return err
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrResetTokenUsed
		}
		return err
	}
	if u.ResetToken == "" || u.ResetToken != req.Token {
		return ErrResetTokenUsed
	}
	if u.ResetTokenExpires != nil && s.now().After(*u.ResetTokenExpires) {
		return ErrResetTokenUsed
	}

	if err := s.setPassword(ctx, u.ID, req.NewPassword); err != nil {
		return err
	}

	s.logger.Info("password reset", slog.String("user_id", u.ID))
	return nil
}

func (s *Service) setPassword(ctx context.Context, userID, plain string) error {
	if problems := password.Strength(plain); len(problems) > 0 {
		return &domain.ValidationError{Message: "weak password", Details: problems}
	}
	hash, err := password.Hash(plain)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.SetPassword(ctx, userID, hash)
}

// ensureUnique rejects a username or email held by an account other than selfID.
// Empty values are skipped.
func (s *Service) ensureUnique(ctx context.Context, selfID, username, email string) error {
	if username != "" {
		if err := s.checkTaken(ctx, selfID, "Username", username, s.users.GetByUsername); err != nil {
			return err
		}
	}
	if email != "" {
		if err := s.checkTaken(ctx, selfID, "Email", email, s.users.GetByEmail); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) checkTaken(ctx context.Context, selfID, field, value string, lookup func(context.Context, string) (*domain.User, error)) error {
	u, err := lookup(ctx, value)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if u.ID == selfID {
		return nil
	}
	return &domain.ValidationError{Message: field + " already exists"}
}
