package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mealwise/backend/internal/middleware"
	"github.com/mealwise/backend/internal/models"
	"github.com/mealwise/backend/internal/service"
)

type CreateAllergyRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type MapIngredientRequest struct {
	IngredientID   uint   `json:"ingredient_id"`
	IngredientName string `json:"ingredient_name"`
}

type AutoMapRequest struct {
	Limit int `json:"limit"`
}

type SetUserAllergiesRequest struct {
	AllergyIDs []uint `json:"allergy_ids" binding:"required"`
}

type AllergyHandler struct {
	allergyService *service.AllergyService
	validator      middleware.TokenValidator
	db             *gorm.DB
}

func NewAllergyHandler(allergyService *service.AllergyService, validator middleware.TokenValidator, db *gorm.DB) *AllergyHandler {
	return &AllergyHandler{
		allergyService: allergyService,
		validator:      validator,
		db:             db,
	}
}

func (h *AllergyHandler) RegisterRoutes(router *gin.RouterGroup) {
	allergies := router.Group("/allergies")
	allergies.Use(middleware.AuthMiddleware(h.validator))
	{
		allergies.GET("", h.ListAllergies)
		allergies.POST("", h.CreateAllergy)
		allergies.GET("/mine", h.GetUserAllergies)
		allergies.PUT("/mine", h.SetUserAllergies)
		allergies.GET("/:id/ingredients", h.MappedIngredients)
		allergies.POST("/:id/ingredients", h.MapIngredient)
		allergies.POST("/:id/auto-map", h.AutoMap)
		allergies.DELETE("/:id/ingredients/:ingredient_id", h.UnmapIngredient)
	}
}

func (h *AllergyHandler) ListAllergies(c *gin.Context) {
	allergies, err := h.allergyService.ListAllergies(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list allergies"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"allergies": allergies})
}

func (h *AllergyHandler) CreateAllergy(c *gin.Context) {
	if !h.requireSuperuser(c) {
		return
	}

	var req CreateAllergyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	allergy, err := h.allergyService.CreateAllergy(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create allergy"})
		return
	}
	c.JSON(http.StatusCreated, allergy)
}

func (h *AllergyHandler) MappedIngredients(c *gin.Context) {
	allergyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ingredients, err := h.allergyService.MappedIngredients(c.Request.Context(), allergyID)
	if err != nil {
		if errors.Is(err, service.ErrAllergyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "allergy not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list mapped ingredients"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

func (h *AllergyHandler) MapIngredient(c *gin.Context) {
	if !h.requireSuperuser(c) {
		return
	}

	allergyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req MapIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	mapping, err := h.allergyService.MapIngredient(c.Request.Context(), allergyID, req.IngredientID, req.IngredientName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAllergyNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "allergy not found"})
		case errors.Is(err, service.ErrIngredientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "ingredient not found"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, mapping)
}

func (h *AllergyHandler) AutoMap(c *gin.Context) {
	if !h.requireSuperuser(c) {
		return
	}

	allergyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req AutoMapRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.allergyService.AutoMap(c.Request.Context(), allergyID, req.Limit)
	if err != nil {
		if errors.Is(err, service.ErrAllergyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "allergy not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to auto-map ingredients"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mapped": created})
}

func (h *AllergyHandler) UnmapIngredient(c *gin.Context) {
	if !h.requireSuperuser(c) {
		return
	}

	allergyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ingredientID, ok := pathID(c, "ingredient_id")
	if !ok {
		return
	}

	if err := h.allergyService.UnmapIngredient(c.Request.Context(), allergyID, ingredientID); err != nil {
		if errors.Is(err, service.ErrAllergyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mapping not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove mapping"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AllergyHandler) GetUserAllergies(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	allergies, err := h.allergyService.UserAllergies(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list user allergies"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"allergies": allergies})
}

func (h *AllergyHandler) SetUserAllergies(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SetUserAllergiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	allergies, err := h.allergyService.SetUserAllergies(c.Request.Context(), userID, req.AllergyIDs)
	if err != nil {
		if errors.Is(err, service.ErrAllergyNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown allergy id"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user allergies"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"allergies": allergies})
}

func (h *AllergyHandler) requireSuperuser(c *gin.Context) bool {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}
	if !user.IsSuperuser {
		c.JSON(http.StatusForbidden, gin.H{"error": "superuser access required"})
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
