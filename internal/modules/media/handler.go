package media

import (
	"errors"
	"net/http"

	"campaignhub/internal/domain"
	"campaignhub/internal/middleware"
	"campaignhub/internal/pkg/response"
	"campaignhub/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is the slack allowed on top of the file limit for the
// form fields and part headers.
const multipartOverhead = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	media := protected.Group("/media")
	{
		media.GET("", h.List)
		media.GET("/:id", h.Get)
		media.GET("/:id/status", h.Status)
	}

	write := media.Group("", middleware.CanWrite())
	{
		write.POST("/upload", h.Upload)
		write.PATCH("/:id", h.Update)
		write.DELETE("/:id", h.Delete)
		write.POST("/:id/reprocess", h.Reprocess)
	}
}

// Upload stores a file for one of the caller's campaigns.
// @Summary		Upload media
// @Tags		Media
// @Accept		multipart/form-data
// @Param		file		formData	file	true	"File"
// @Param		campaign_id	formData	string	true	"Campaign id"
// @Param		file_type	formData	string	true	"image, video, audio or document"
// @Success		201	{object}	UploadResponse
// @Failure		400	{object}	map[string]interface{} "Invalid file"
// @Failure		413	{object}	map[string]interface{} "File too large"
// @Router		/media/upload [POST]
func (h *Handler) Upload(c *gin.Context) {
	id, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	limit := h.service.MaxFileSize() + multipartOverhead
	if c.Request.ContentLength > limit {
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Request body too large")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Request body too large")
			return
		}
		response.Error(c, http.StatusBadRequest, "FILE_UPLOAD_ERROR", "file is required")
		return
	}

	file, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "FILE_UPLOAD_ERROR", "Failed to read uploaded file")
		return
	}
	defer file.Close()

	f, err := h.service.Upload(c.Request.Context(), id.UserID, Upload{
		CampaignID:  c.PostForm("campaign_id"),
		FileType:    domain.MediaType(c.PostForm("file_type")),
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        file,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, UploadResponse{
		FileID:   f.ID,
		Filename: f.Filename,
		URL:      f.URL,
		Status:   f.Status,
		Message:  "File uploaded successfully",
	})
}

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

	filter := domain.MediaFilter{CampaignID: q.CampaignID, FileType: domain.MediaType(q.FileType)}
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

	f, err := h.service.Get(c.Request.Context(), c.Param("id"), id.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, f)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	var req UpdateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := validator.Check(req); err != nil {
		response.FromError(c, err)
		return
	}

	f, err := h.service.Update(c.Request.Context(), c.Param("id"), id.UserID, req.Patch())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, f)
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

	response.Success(c, http.StatusOK, gin.H{"message": "Media file deleted successfully"})
}

func (h *Handler) Status(c *gin.Context) {
	id, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	st, err := h.service.Status(c.Request.Context(), c.Param("id"), id.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, st)
}

func (h *Handler) Reprocess(c *gin.Context) {
	id, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	st, err := h.service.Reprocess(c.Request.Context(), c.Param("id"), id.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, st)
}
