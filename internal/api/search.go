package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mealwise/backend/internal/middleware"
	"github.com/mealwise/backend/internal/search"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type NLSearchRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

type NLSearchResponse struct {
	Parsed  search.ParsedQuery    `json:"parsed"`
	Applied search.AppliedFilters `json:"applied"`
	Results []search.RecipeResult `json:"results"`
}

type SearchHandler struct {
	searchService *search.Service
	validator     middleware.TokenValidator
	rateLimiter   *middleware.RateLimiter
}

func NewSearchHandler(searchService *search.Service, validator middleware.TokenValidator, rateLimiter *middleware.RateLimiter) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		validator:     validator,
		rateLimiter:   rateLimiter,
	}
}

func (h *SearchHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/search")
	group.Use(middleware.AuthMiddleware(h.validator))
	{
		group.GET("/recipes", h.ListRecipes)

		nl := group.Group("")
		if h.rateLimiter != nil {
			nl.Use(h.rateLimiter.RateLimitMiddleware())
		}
		nl.POST("/nl", h.SearchNL)
	}
}

func (h *SearchHandler) ListRecipes(c *gin.Context) {
	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxSearchLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 50"})
			return
		}
		limit = parsed
	}

	results, err := h.searchService.ListRecipes(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recipes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *SearchHandler) SearchNL(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req NLSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultSearchLimit
	}
	if req.Limit < 1 || req.Limit > maxSearchLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 50"})
		return
	}

	parsed, applied, results, err := h.searchService.SearchNL(c.Request.Context(), userID, req.Query, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, NLSearchResponse{
		Parsed:  parsed,
		Applied: applied,
		Results: results,
	})
}
