package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealwise/backend/internal/models"
)

// UpdateProfileRequest carries the profile fields a user may change.
// Nil pointers mean "leave unchanged".
type UpdateProfileRequest struct {
	Age              *int     `json:"age"`
	Gender           *string  `json:"gender"`
	HeightCm         *float64 `json:"height_cm"`
	WeightKg         *float64 `json:"weight_kg"`
	BMI              *float64 `json:"bmi"`
	DietaryHabits    *string  `json:"dietary_habits"`
	PreferredCuisine *string  `json:"preferred_cuisine"`
	FoodAversions    *string  `json:"food_aversions"`
}

// ProfileService handles user profile operations
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{
		db: db,
	}
}

// GetProfile retrieves a user's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile updates a user's profile. When height and weight are known
// and the caller did not supply a BMI, the stored BMI is recomputed.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}

	if req.Age != nil {
		profile.Age = req.Age
	}
	if req.Gender != nil {
		profile.Gender = *req.Gender
	}
	if req.HeightCm != nil {
		profile.HeightCm = req.HeightCm
	}
	if req.WeightKg != nil {
		profile.WeightKg = req.WeightKg
	}
	if req.BMI != nil {
		profile.BMI = req.BMI
	}
	if req.DietaryHabits != nil {
		profile.DietaryHabits = *req.DietaryHabits
	}
	if req.PreferredCuisine != nil {
		profile.PreferredCuisine = *req.PreferredCuisine
	}
	if req.FoodAversions != nil {
		profile.FoodAversions = *req.FoodAversions
	}

	if req.BMI == nil && profile.HeightCm != nil && profile.WeightKg != nil && *profile.HeightCm > 0 {
		heightM := *profile.HeightCm / 100.0
		bmi := *profile.WeightKg / (heightM * heightM)
		profile.BMI = &bmi
	}

	if err := s.db.Save(&profile).Error; err != nil {
		return nil, err
	}

	return &profile, nil
}
