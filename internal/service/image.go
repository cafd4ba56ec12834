package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealwise/backend/internal/models"
)

var ErrRecipeNotFound = errors.New("recipe not found")

// S3Uploader is the slice of the S3 API the image service needs.
type S3Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageService stores recipe images in S3 and records their public URL.
type ImageService struct {
	db     *gorm.DB
	client S3Uploader
	bucket string
}

func NewImageService(db *gorm.DB, client S3Uploader, bucket string) *ImageService {
	return &ImageService{
		db:     db,
		client: client,
		bucket: bucket,
	}
}

// UploadRecipeImage uploads the image bytes for a recipe and updates the
// recipe's image_url. The original filename only contributes its extension.
func (s *ImageService) UploadRecipeImage(ctx context.Context, recipeID uint, fileName, contentType string, data []byte) (string, error) {
	var recipe models.Recipe
	if err := s.db.First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrRecipeNotFound
		}
		return "", err
	}

	ext := strings.ToLower(path.Ext(fileName))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		ext = ".png"
	}
	if contentType == "" {
		contentType = "image/png"
	}

	key := fmt.Sprintf("recipe-images/%d/%s%s", recipeID, uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
	if err := s.db.Model(&models.Recipe{}).Where("id = ?", recipeID).
		Update("image_url", publicURL).Error; err != nil {
		return "", err
	}

	return publicURL, nil
}
