package auth

import (
	"context"
	"time"

	"campaignhub/internal/domain"
	"campaignhub/internal/pkg/jwt"
)

// UserRepository is the subset of the user store the auth service uses.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	SetPassword(ctx context.Context, id, hash string) error
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
}

// TokenService issues and parses signed tokens.
type TokenService interface {
	IssueSessionToken(userID, username, role string) (string, error)
	IssuePasswordResetToken(userID string) (string, error)
	ParsePasswordResetToken(token string) (*jwt.Claims, error)
	TTL() time.Duration
	ResetTTL() time.Duration
}
