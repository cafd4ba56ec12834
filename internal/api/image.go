package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mealwise/backend/internal/middleware"
	"github.com/mealwise/backend/internal/service"
)

// 5 MB upload cap
const maxImageBytes = 5 << 20

type ImageHandler struct {
	imageService *service.ImageService
	validator    middleware.TokenValidator
}

func NewImageHandler(imageService *service.ImageService, validator middleware.TokenValidator) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		validator:    validator,
	}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	recipes.Use(middleware.AuthMiddleware(h.validator))
	{
		recipes.POST("/:id/image", h.UploadImage)
	}
}

func (h *ImageHandler) UploadImage(c *gin.Context) {
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if fileHeader.Size > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds 5MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
		return
	}

	url, err := h.imageService.UploadRecipeImage(
		c.Request.Context(),
		recipeID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
