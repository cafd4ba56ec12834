package models

import (
	"time"

	"github.com/google/uuid"
)

// Allergy is a canonical allergy (e.g. "peanut") that maps to the concrete
// ingredients it covers.
type Allergy struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description,omitempty"`

	IngredientMappings []AllergyIngredientMapping `gorm:"foreignKey:AllergyID" json:"ingredient_mappings,omitempty"`
}

func (Allergy) TableName() string {
	return "allergies"
}

// AllergyIngredientMapping links an allergy to one excluded ingredient.
// Unique per (allergy, ingredient) pair.
type AllergyIngredientMapping struct {
	ID           uint `gorm:"primarykey" json:"id"`
	AllergyID    uint `gorm:"not null;uniqueIndex:idx_allergy_ingredient" json:"allergy_id"`
	IngredientID uint `gorm:"not null;uniqueIndex:idx_allergy_ingredient" json:"ingredient_id"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}

func (AllergyIngredientMapping) TableName() string {
	return "allergy_ingredient_mappings"
}

// UserAllergy assigns an allergy to a user and defines the user's persisted
// exclusion set for search.
type UserAllergy struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	AllergyID uint      `gorm:"not null" json:"allergy_id"`
	Severity  string    `gorm:"size:20" json:"severity,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Allergy *Allergy `gorm:"foreignKey:AllergyID" json:"allergy,omitempty"`
}

func (UserAllergy) TableName() string {
	return "user_allergies"
}
