package campaign

import (
	"net/http"

	"campaignhub/internal/domain"
	"campaignhub/internal/middleware"
	"campaignhub/internal/pkg/response"
	"campaignhub/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the campaign routes on a group already behind JWTAuth.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	campaigns := protected.Group("/campaigns")
	{
		campaigns.GET("", h.List)
		campaigns.GET("/:id", h.Get)
		campaigns.GET("/:id/stats", h.Stats)
	}

	write := campaigns.Group("", middleware.CanWrite())
	{
		write.POST("", h.Create)
		write.PUT("/:id", h.Update)
		write.PATCH("/:id/status", h.UpdateStatus)
		write.DELETE("/:id", h.Delete)
	}
}

// Create creates a draft campaign owned by the caller.
// @Summary		Create campaign
// @Tags		Campaigns
// @Param		request	body	CreateCampaignRequest	true	"Campaign fields"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{} "Malformed body"
// @Failure		422	{object}	map[string]interface{} "Validation error"
// @Router		/campaigns [POST]
func (h *Handler) Create(c *gin.Context) {
	id, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := validator.Check(req); err != nil {
		response.FromError(c, err)
		return
	}

	campaign, err := h.service.Create(c.Request.Context(), id.UserID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, campaign)
}

// List returns the caller's campaigns, newest first.
// @Summary		List campaigns
// @Tags		Campaigns
// @Param		page	query	int		false	"Page, from 1"
// @Param		size	query	int		false	"Page size, 1..100"
// @Param		status	query	string	false	"Status filter"
// @Param		search	query	string	false	"Case insensitive name search"
// @Router		/campaigns [GET]
func (h *Handler) List(c *gin.Context) {
	id, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query parameters")
		return
	}

	filter := domain.CampaignFilter{Status: domain.CampaignStatus(q.Status), Search: q.Search}
	page, err := h.service.List(c.Request.Context(), id.UserID, filter, q.Page, q.Size)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, page)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	campaign, err := h.service.Get(c.Request.Context(), c.Param("id"), id.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, campaign)
}

// Update applies a partial update; absent fields are left untouched.
// @Summary		Update campaign
// @Tags		Campaigns
// @Param		id		path	string					true	"Campaign id"
// @Param		request	body	UpdateCampaignRequest	true	"Fields to change"
// @Router		/campaigns/{id} [PUT]
func (h *Handler) Update(c *gin.Context) {
	id, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	var req UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := validator.Check(req); err != nil {
		response.FromError(c, err)
		return
	}

	campaign, err := h.service.Update(c.Request.Context(), c.Param("id"), id.UserID, req.Patch())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, campaign)
}

// UpdateStatus changes the campaign status along the lifecycle.
// @Summary		Change campaign status
// @Tags		Campaigns
// @Param		id		path	string				true	"Campaign id"
// @Param		request	body	UpdateStatusRequest	true	"Target status"
// @Failure		409	{object}	map[string]interface{} "Status changed concurrently"
// @Failure		422	{object}	map[string]interface{} "Transition not allowed"
// @Router		/campaigns/{id}/status [PATCH]
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := validator.Check(req); err != nil {
		response.FromError(c, err)
		return
	}

	campaign, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), id.UserID, req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, campaign)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), id.UserID); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Campaign deleted successfully"})
}

func (h *Handler) Stats(c *gin.Context) {
	id, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), c.Param("id"), id.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}
