package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campaignhub/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID                string     `gorm:"column:id;primaryKey;size:24"`
	Username          string     `gorm:"column:username;size:50;uniqueIndex"`
	Email             string     `gorm:"column:email;size:255;uniqueIndex"`
	FullName          string     `gorm:"column:full_name;size:100"`
	Role              string     `gorm:"column:role;size:20"`
	Status            string     `gorm:"column:status;size:20"`
	Language          string     `gorm:"column:language;size:10"`
	Timezone          string     `gorm:"column:timezone;size:64"`
	PasswordHash      string     `gorm:"column:password_hash"`
	IsVerified        bool       `gorm:"column:is_verified"`
	VerificationToken *string    `gorm:"column:verification_token"`
	ResetToken        *string    `gorm:"column:reset_token"`
	ResetTokenExpires *time.Time `gorm:"column:reset_token_expires"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
	LastLogin         *time.Time `gorm:"column:last_login"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	u := &domain.User{
		ID:                m.ID,
		Username:          m.Username,
		Email:             m.Email,
		FullName:          m.FullName,
		Role:              domain.UserRole(m.Role),
		Status:            domain.UserStatus(m.Status),
		Language:          m.Language,
		Timezone:          m.Timezone,
		PasswordHash:      m.PasswordHash,
		IsVerified:        m.IsVerified,
		ResetTokenExpires: m.ResetTokenExpires,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		LastLogin:         m.LastLogin,
	}
	if m.VerificationToken != nil {
		u.VerificationToken = *m.VerificationToken
	}
	if m.ResetToken != nil {
		u.ResetToken = *m.ResetToken
	}
	return u
}

func toUserModel(u *domain.User) userModel {
	m := userModel{
		ID:                u.ID,
		Username:          normalize(u.Username),
		Email:             normalize(u.Email),
		FullName:          u.FullName,
		Role:              string(u.Role),
		Status:            string(u.Status),
		Language:          u.Language,
		Timezone:          u.Timezone,
		PasswordHash:      u.PasswordHash,
		IsVerified:        u.IsVerified,
		ResetTokenExpires: u.ResetTokenExpires,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
		LastLogin:         u.LastLogin,
	}
	if u.VerificationToken != "" {
		v := u.VerificationToken
		m.VerificationToken = &v
	}
	if u.ResetToken != "" {
		v := u.ResetToken
		m.ResetToken = &v
	}
	return m
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Create assigns the id and timestamps and applies account defaults.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	u.ID = NewID()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Role == "" {
		u.Role = domain.RoleCreator
	}
	if u.Status == "" {
		u.Status = domain.UserActive
	}
	if u.Language == "" {
		u.Language = "es"
	}
	if u.Timezone == "" {
		u.Timezone = "UTC"
	}

	m := toUserModel(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username or email already exists", domain.ErrValidation)
		}
		return dbError("create user", err)
	}
	u.Username = m.Username
	u.Email = m.Email
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if !ValidID(id) {
		return nil, domain.NotFoundf("User", id)
	}
	return r.first(ctx, "User", id, "id = ?", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "User", username, "username = ?", normalize(username))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "User", email, "email = ?", normalize(email))
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", normalize(username))
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", normalize(email))
}

// Update applies only the non-nil patch fields.
func (r *UserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if !ValidID(id) {
		return nil, domain.NotFoundf("User", id)
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if patch.Username != nil {
		updates["username"] = normalize(*patch.Username)
	}
	if patch.Email != nil {
		updates["email"] = normalize(*patch.Email)
	}
	if patch.FullName != nil {
		updates["full_name"] = *patch.FullName
	}
	if patch.Language != nil {
		updates["language"] = *patch.Language
	}
	if patch.Timezone != nil {
		updates["timezone"] = *patch.Timezone
	}

	if err := r.updateColumns(ctx, id, updates); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if !ValidID(id) {
		return domain.NotFoundf("User", id)
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&userModel{})
	if res.Error != nil {
		return dbError("delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundf("User", id)
	}
	return nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]any{"last_login": at, "updated_at": at})
}

// SetPassword stores a new hash and clears any pending reset token.
func (r *UserRepository) SetPassword(ctx context.Context, id, hash string) error {
	return r.updateColumns(ctx, id, map[string]any{
		"password_hash":       hash,
		"reset_token":         nil,
		"reset_token_expires": nil,
		"updated_at":          time.Now().UTC(),
	})
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	return r.updateColumns(ctx, id, map[string]any{
		"reset_token":         token,
		"reset_token_expires": expires,
		"updated_at":          time.Now().UTC(),
	})
}

func (r *UserRepository) updateColumns(ctx context.Context, id string, updates map[string]any) error {
	if !ValidID(id) {
		return domain.NotFoundf("User", id)
	}
	res := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return fmt.Errorf("%w: username or email already exists", domain.ErrValidation)
		}
		return dbError("update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundf("User", id)
	}
	return nil
}

func (r *UserRepository) first(ctx context.Context, resource, key string, query string, args ...any) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).Where(query, args...).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundf(resource, key)
		}
		return nil, dbError("get user", err)
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&userModel{}).Where(query, args...).Count(&count).Error; err != nil {
		return false, dbError("count users", err)
	}
	return count > 0, nil
}
