package auth

import (
	"net/http"

	"campaignhub/internal/middleware"
	"campaignhub/internal/pkg/response"
	"campaignhub/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// Handler manages the HTTP side of accounts and authentication.
type Handler struct {
	service *Service
	// exposeResetToken returns the reset token in the forgot-password
	// response; there is no mail delivery, so only non-prod envs enable it.
	exposeResetToken bool
}

func NewHandler(service *Service, exposeResetToken bool) *Handler {
	return &Handler{service: service, exposeResetToken: exposeResetToken}
}

// RegisterPublicRoutes mounts the unauthenticated routes. limit, when
// non-nil, guards them against brute force.
func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup, limit gin.HandlerFunc) {
	users := v1.Group("/users")
	if limit != nil {
		users.Use(limit)
	}
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.POST("/password/forgot", h.ForgotPassword)
		users.POST("/password/reset", h.ResetPassword)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	me := protected.Group("/users/me")
	{
		me.GET("", h.GetMe)
		me.PUT("", h.UpdateMe)
		me.DELETE("", h.DeleteMe)
		me.POST("/password", h.ChangePassword)
	}
}

// Register creates a creator account.
// @Summary		Register user
// @Tags		Users
// @Param		request	body	RegisterRequest	true	"Account data"
// @Success		201	{object}	map[string]interface{}
// @Failure		422	{object}	map[string]interface{} "Validation error or username/email taken"
// @Router		/users/register [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if err := validator.Check(req); err != nil {
		response.FromError(c, err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, user)
}

// Login exchanges username and password for a bearer token.
// @Summary		Login
// @Tags		Users
// @Param		request	body	LoginRequest	true	"Credentials"
// @Success		200	{object}	LoginResponse
// @Failure		401	{object}	map[string]interface{} "Incorrect username or password"
// @Router		/users/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if err := validator.Check(req); err != nil {
		response.FromError(c, err)
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, LoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(res.ExpiresIn.Seconds()),
		User:        res.User,
	})
}

func (h *Handler) GetMe(c *gin.Context) {
	id, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	user, err := h.service.Me(c.Request.Context(), id.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

func (h *Handler) UpdateMe(c *gin.Context) {
	id, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if err := validator.Check(req); err != nil {
		response.FromError(c, err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), id.UserID, req.Patch())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

func (h *Handler) DeleteMe(c *gin.Context) {
	id, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), id.UserID); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	id, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if err := validator.Check(req); err != nil {
		response.FromError(c, err)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), id.UserID, req); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// ForgotPassword always answers 200 so the response does not reveal whether
// the email is registered.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if err := validator.Check(req); err != nil {
		response.FromError(c, err)
		return
	}

	token, err := h.service.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		response.FromError(c, err)
		return
	}

	data := gin.H{"message": "If the email is registered, a reset link has been issued"}
	if h.exposeResetToken && token != "" {
		data["reset_token"] = token
	}
	response.Success(c, http.StatusOK, data)
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if err := validator.Check(req); err != nil {
		response.FromError(c, err)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Password has been reset"})
}
