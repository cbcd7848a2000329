package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campaignhub/internal/database"
	"campaignhub/internal/domain"
	"campaignhub/internal/middleware"
	"campaignhub/internal/pkg/jwt"
	"campaignhub/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	db     *gorm.DB
	tokens *jwt.Service
	svc    *Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	tokens := jwt.New("test-secret", time.Hour)
	return fixture{
		db:     db,
		tokens: tokens,
		svc:    NewService(repository.NewUserRepository(db), tokens, nil),
	}
}

func alice() RegisterRequest {
	return RegisterRequest{
		Username: "Alice_01",
		Email:    "Alice@Example.com",
		FullName: "Alice Liddell",
		Password: "Wonder1and",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, alice())
	require.NoError(t, err)
	assert.Equal(t, "alice_01", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, domain.RoleCreator, u.Role)
	assert.Equal(t, domain.UserActive, u.Status)
	assert.NotEqual(t, "Wonder1and", u.PasswordHash)

	res, err := f.svc.Login(ctx, LoginRequest{Username: "ALICE_01", Password: "Wonder1and"})
	require.NoError(t, err)
	require.NotNil(t, res.User.LastLogin)
	assert.Equal(t, time.Hour, res.ExpiresIn)

	claims, err := f.tokens.ParseSessionToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "alice_01", claims.Username)
	assert.Equal(t, "creator", claims.Role)

	stored, err := f.svc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
}

func TestRegister_Duplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, alice())
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, alice())
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "Username already exists")

	other := alice()
	other.Username = "someone_else"
	_, err = f.svc.Register(ctx, other)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "Email already exists")
}

func TestRegister_WeakPassword(t *testing.T) {
	f := newFixture(t)

	req := alice()
	req.Password = "alllowercase"
	_, err := f.svc.Register(context.Background(), req)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Details, "password must contain at least one uppercase letter")
	assert.Contains(t, verr.Details, "password must contain at least one digit")
}

func TestRegister_PasswordOverBcryptLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := alice()
	req.Password = "Aa1" + strings.Repeat("x", 80)
	_, err := f.svc.Register(ctx, req)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Details, "password must be at most 72 bytes long")

	u, err := f.svc.Register(ctx, alice())
	require.NoError(t, err)
	err = f.svc.ChangePassword(ctx, u.ID, ChangePasswordRequest{CurrentPassword: "Wonder1and", NewPassword: req.Password})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogin_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, alice())
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginRequest{Username: "alice_01", Password: "wrong-Pass1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.svc.Login(ctx, LoginRequest{Username: "nobody", Password: "Wonder1and"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.db.Table("users").Where("id = ?", u.ID).Update("status", "suspended").Error)
	_, err = f.svc.Login(ctx, LoginRequest{Username: "alice_01", Password: "Wonder1and"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, alice())
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, u.ID, ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "N3wPassword"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, f.svc.ChangePassword(ctx, u.ID, ChangePasswordRequest{CurrentPassword: "Wonder1and", NewPassword: "N3wPassword"}))

	_, err = f.svc.Login(ctx, LoginRequest{Username: "alice_01", Password: "Wonder1and"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, LoginRequest{Username: "alice_01", Password: "N3wPassword"})
	assert.NoError(t, err)
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, alice())
	require.NoError(t, err)

	token, err := f.svc.ForgotPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// a session token is not accepted as a reset token
	login, err := f.svc.Login(ctx, LoginRequest{Username: "alice_01", Password: "Wonder1and"})
	require.NoError(t, err)
	err = f.svc.ResetPassword(ctx, ResetPasswordRequest{Token: login.AccessToken, NewPassword: "Reset1Pass"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, f.svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: "Reset1Pass"}))

	_, err = f.svc.Login(ctx, LoginRequest{Username: "alice_01", Password: "Reset1Pass"})
	assert.NoError(t, err)

	// single use
	err = f.svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: "Again1Pass"})
	assert.ErrorIs(t, err, ErrResetTokenUsed)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	token, err := f.svc.ForgotPassword(context.Background(), "ghost@example.com")
	assert.NoError(t, err)
	assert.Empty(t, token)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, alice())
	require.NoError(t, err)

	bob := alice()
	bob.Username = "bob"
	bob.Email = "bob@example.com"
	_, err = f.svc.Register(ctx, bob)
	require.NoError(t, err)

	taken := "bob"
	_, err = f.svc.UpdateProfile(ctx, u.ID, domain.UserPatch{Username: &taken})
	assert.ErrorIs(t, err, domain.ErrValidation)

	same := "Alice_01"
	name := "Alice L."
	updated, err := f.svc.UpdateProfile(ctx, u.ID, domain.UserPatch{Username: &same, FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "alice_01", updated.Username)
	assert.Equal(t, "Alice L.", updated.FullName)
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, alice())
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteAccount(ctx, u.ID))
	_, err = f.svc.Me(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteAccount(ctx, u.ID), domain.ErrNotFound)
}

func TestHandler_RegisterLoginMe(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, true)

	router := gin.New()
	v1 := router.Group("/api/v1")
	h.RegisterPublicRoutes(v1, nil)
	protected := v1.Group("", middleware.JWTAuth(f.tokens))
	h.RegisterProtectedRoutes(protected)

	do := func(method, path, token string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/api/v1/users/register", "", alice())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")

	w = do(http.MethodPost, "/api/v1/users/register", "", map[string]string{"username": "a b", "email": "bad"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(http.MethodPost, "/api/v1/users/login", "", LoginRequest{Username: "alice_01", Password: "Wonder1and"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login struct {
		Data LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, "bearer", login.Data.TokenType)
	assert.Equal(t, int64(3600), login.Data.ExpiresIn)

	w = do(http.MethodGet, "/api/v1/users/me", login.Data.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice_01"`)

	w = do(http.MethodPost, "/api/v1/users/login", "", LoginRequest{Username: "alice_01", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(http.MethodPost, "/api/v1/users/password/forgot", "", ForgotPasswordRequest{Email: "alice@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reset_token")
}
