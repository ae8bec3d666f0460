package search

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zots0127/codepoint/pkg/importer"
)

// ImportRunner triggers an import run from the admin endpoint.
type ImportRunner interface {
	Run(opts importer.Options) (*importer.Result, error)
}

// API exposes the search service over HTTP.
type API struct {
	service *Service
	imports ImportRunner
	apiKey  string
}

func NewAPI(service *Service, imports ImportRunner, apiKey string) *API {
	return &API{
		service: service,
		imports: imports,
		apiKey:  apiKey,
	}
}

func (a *API) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")

	api.GET("/postcodes", a.searchText)
	api.GET("/postcodes/nearest", a.searchNearby)

	admin := api.Group("")
	admin.Use(a.authMiddleware())
	admin.POST("/import", a.triggerImport)

	router.GET("/health", a.health)
}

func (a *API) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if a.apiKey == "" || apiKey != a.apiKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			c.Abort()
			return
		}
		c.Next()
	}
}

type textQuery struct {
	Text string `form:"text" binding:"required,min=2"`
	Page int    `form:"page"`
}

func (a *API) searchText(c *gin.Context) {
	var query textQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text parameter of at least 2 characters is required"})
		return
	}

	result, err := a.service.Text(query.Text, query.Page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Pointers so latitude/longitude zero is a valid input.
type nearbyQuery struct {
	Latitude  *float64 `form:"latitude" binding:"required"`
	Longitude *float64 `form:"longitude" binding:"required"`
}

func (a *API) searchNearby(c *gin.Context) {
	var query nearbyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude parameters are required"})
		return
	}

	result, err := a.service.Nearby(*query.Latitude, *query.Longitude)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type importRequest struct {
	UsePrevious bool `json:"use_previous"`
	Force       bool `json:"force"`
}

func (a *API) triggerImport(c *gin.Context) {
	if a.imports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "import is not configured"})
		return
	}

	var req importRequest
	_ = c.ShouldBindJSON(&req) // empty body means a plain run

	result, err := a.imports.Run(importer.Options{UsePrevious: req.UsePrevious, Force: req.Force})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *API) health(c *gin.Context) {
	count, err := a.service.Count()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "postcodes": count})
}
