package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mealwise/backend/internal/models"
	"github.com/mealwise/backend/internal/service"
	"github.com/mealwise/backend/internal/testhelpers"
)

func floatPtr(v float64) *float64 { return &v }

func seedProfile(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	require.NoError(t, db.Create(&models.UserProfile{UserID: userID}).Error)
	return userID
}

func TestGetProfileNotFound(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewProfileService(db)

	_, err := svc.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateProfileRecomputesBMI(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewProfileService(db)
	userID := seedProfile(t, db)

	profile, err := svc.UpdateProfile(context.Background(), userID, &service.UpdateProfileRequest{
		HeightCm: floatPtr(180),
		WeightKg: floatPtr(81),
	})
	require.NoError(t, err)
	require.NotNil(t, profile.BMI)
	assert.InDelta(t, 25.0, *profile.BMI, 0.01)
}

func TestUpdateProfileExplicitBMIWins(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewProfileService(db)
	userID := seedProfile(t, db)

	profile, err := svc.UpdateProfile(context.Background(), userID, &service.UpdateProfileRequest{
		HeightCm: floatPtr(180),
		WeightKg: floatPtr(81),
		BMI:      floatPtr(22.5),
	})
	require.NoError(t, err)
	require.NotNil(t, profile.BMI)
	assert.InDelta(t, 22.5, *profile.BMI, 0.001)
}

func TestUpdateProfilePartialUpdate(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewProfileService(db)
	userID := seedProfile(t, db)

	age := 34
	habits := "vegetarian"
	_, err := svc.UpdateProfile(context.Background(), userID, &service.UpdateProfileRequest{
		Age:           &age,
		DietaryHabits: &habits,
	})
	require.NoError(t, err)

	profile, err := svc.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, profile.Age)
	assert.Equal(t, 34, *profile.Age)
	assert.Equal(t, "vegetarian", profile.DietaryHabits)
	assert.Nil(t, profile.BMI)
}
