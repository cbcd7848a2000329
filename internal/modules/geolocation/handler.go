package geolocation

import (
	"net/http"

	"campaignhub/internal/domain"
	"campaignhub/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type searchQuery struct {
	Query   string `form:"query"`
	Country string `form:"country"`
	Limit   int    `form:"limit"`
}

type reverseRequest struct {
	Latitude  *float64 `json:"latitude" form:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" form:"longitude" binding:"required"`
}

type distanceRequest struct {
	Point1 []float64 `json:"point1" binding:"required"`
	Point2 []float64 `json:"point2" binding:"required"`
}

type citiesQuery struct {
	CountryCode string `form:"country_code"`
	RegionCode  string `form:"region_code"`
	Limit       int    `form:"limit"`
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/geolocation")
	{
		g.GET("/search", h.Search)
		g.POST("/reverse", h.Reverse)
		g.POST("/validate", h.Validate)
		g.GET("/countries", h.Countries)
		g.GET("/regions", h.Regions)
		g.GET("/cities", h.Cities)
		g.POST("/distance", h.Distance)
	}
}

// Search looks locations up by free text.
// @Summary		Search locations
// @Tags		Geolocation
// @Param		query	query	string	true	"Search text"
// @Param		country	query	string	false	"ISO country filter"
// @Param		limit	query	int		false	"1..50"
// @Router		/geolocation/search [GET]
func (h *Handler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query parameters")
		return
	}

	places, err := h.service.Search(c.Request.Context(), q.Query, q.Country, q.Limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": places, "total": len(places)})
}

func (h *Handler) Reverse(c *gin.Context) {
	var req reverseRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "latitude and longitude are required")
		return
	}

	place, err := h.service.Reverse(c.Request.Context(), *req.Latitude, *req.Longitude)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, place)
}

func (h *Handler) Validate(c *gin.Context) {
	var loc domain.GeoLocation
	if err := c.ShouldBindJSON(&loc); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	response.Success(c, http.StatusOK, h.service.Validate(loc))
}

func (h *Handler) Countries(c *gin.Context) {
	response.Success(c, http.StatusOK, Countries())
}

func (h *Handler) Regions(c *gin.Context) {
	response.Success(c, http.StatusOK, Regions(c.Query("country_code")))
}

func (h *Handler) Cities(c *gin.Context) {
	var q citiesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query parameters")
		return
	}

	cities, err := h.service.Cities(q.CountryCode, q.RegionCode, q.Limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cities)
}

func (h *Handler) Distance(c *gin.Context) {
	var req distanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "point1 and point2 are required")
		return
	}

	d, err := h.service.Distance(req.Point1, req.Point2)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}
