package service_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealwise/backend/internal/models"
	"github.com/mealwise/backend/internal/service"
	"github.com/mealwise/backend/internal/testhelpers"
)

type fakeUploader struct {
	keys         []string
	contentTypes []string
}

func (f *fakeUploader) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.keys = append(f.keys, *params.Key)
	f.contentTypes = append(f.contentTypes, *params.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestUploadRecipeImage(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	uploader := &fakeUploader{}
	svc := service.NewImageService(db, uploader, "recipe-bucket")

	recipe := models.Recipe{Name: "Paneer Tikka", Instructions: "Cook."}
	require.NoError(t, db.Create(&recipe).Error)

	url, err := svc.UploadRecipeImage(context.Background(), recipe.ID, "photo.JPG", "image/jpeg", []byte{0xFF, 0xD8})
	require.NoError(t, err)
	assert.Contains(t, url, "recipe-bucket.s3.amazonaws.com/recipe-images/")

	require.Len(t, uploader.keys, 1)
	assert.Contains(t, uploader.keys[0], ".jpg")
	assert.Equal(t, "image/jpeg", uploader.contentTypes[0])

	var updated models.Recipe
	require.NoError(t, db.First(&updated, recipe.ID).Error)
	assert.Equal(t, url, updated.ImageURL)
}

func TestUploadRecipeImageUnknownRecipe(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewImageService(db, &fakeUploader{}, "recipe-bucket")

	_, err := svc.UploadRecipeImage(context.Background(), 9999, "photo.png", "image/png", []byte{1})
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)
}
