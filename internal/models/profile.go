package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProfile holds the health data used for calorie-bucket prioritization.
// Height and weight are optional; BMI is stored when known and derived
// otherwise.
type UserProfile struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Age              *int           `json:"age,omitempty"`
	Gender           string         `gorm:"size:20" json:"gender,omitempty"`
	HeightCm         *float64       `json:"height_cm,omitempty"`
	WeightKg         *float64       `json:"weight_kg,omitempty"`
	BMI              *float64       `gorm:"column:bmi" json:"bmi,omitempty"`
	DietaryHabits    string         `gorm:"size:50" json:"dietary_habits,omitempty"`
	PreferredCuisine string         `gorm:"size:50" json:"preferred_cuisine,omitempty"`
	FoodAversions    string         `json:"food_aversions,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
