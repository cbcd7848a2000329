package auth

import "campaignhub/internal/domain"

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Language string `json:"language" validate:"omitempty,max=10"`
	Timezone string `json:"timezone" validate:"omitempty,max=64"`
}

// LoginRequest binds from JSON or from an urlencoded form.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *domain.User `json:"user"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50,username"`
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=100"`
	Language *string `json:"language" validate:"omitempty,max=10"`
	Timezone *string `json:"timezone" validate:"omitempty,max=64"`
}

func (r UpdateProfileRequest) Patch() domain.UserPatch {
	return domain.UserPatch{
		Username: r.Username,
		Email:    r.Email,
		FullName: r.FullName,
		Language: r.Language,
		Timezone: r.Timezone,
	}
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}
