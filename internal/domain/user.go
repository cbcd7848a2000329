package domain

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleCreator UserRole = "creator"
	RoleViewer  UserRole = "viewer"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCreator, RoleViewer:
		return true
	}
	return false
}

type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
	UserPending   UserStatus = "pending"
)

type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	FullName          string     `json:"full_name"`
	Role              UserRole   `json:"role"`
	Status            UserStatus `json:"status"`
	Language          string     `json:"language"`
	Timezone          string     `json:"timezone"`
	PasswordHash      string     `json:"-"`
	IsVerified        bool       `json:"is_verified"`
	VerificationToken string     `json:"-"`
	ResetToken        string     `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
}

// UserPatch lists the fields a user may change on their own profile.
// Nil fields are left untouched.
type UserPatch struct {
	Username *string
	Email    *string
	FullName *string
	Language *string
	Timezone *string
}

func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.FullName == nil && p.Language == nil && p.Timezone == nil
}
