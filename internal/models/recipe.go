package models

import (
	"time"

	"gorm.io/gorm"
)

// CuisineType values mirror the cuisine_type column's enum.
type CuisineType string

const (
	CuisineIndian        CuisineType = "indian"
	CuisineItalian       CuisineType = "italian"
	CuisineMexican       CuisineType = "mexican"
	CuisineChinese       CuisineType = "chinese"
	CuisineJapanese      CuisineType = "japanese"
	CuisineThai          CuisineType = "thai"
	CuisineMediterranean CuisineType = "mediterranean"
	CuisineAmerican      CuisineType = "american"
	CuisineOther         CuisineType = "other"
)

// Recipe is the catalogue entity. Recipes keep integer identity: the search
// ranking tie-breaks on ascending ID.
//
// IsVegetarian is deliberately a pointer: an unset value means "unknown", and
// a non-veg filter must keep unknown recipes rather than exclude them.
type Recipe struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"not null;index" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	Instructions string         `gorm:"type:text;not null" json:"instructions"`
	PrepTime     *int           `json:"prep_time,omitempty"`
	CookTime     *int           `json:"cook_time,omitempty"`
	Servings     int            `gorm:"not null;default:1" json:"servings"`
	CuisineType  CuisineType    `gorm:"size:30" json:"cuisine_type,omitempty"`
	IsVegetarian *bool          `json:"is_vegetarian,omitempty"`
	IsVegan      bool           `gorm:"default:false" json:"is_vegan"`
	IsGlutenFree bool           `gorm:"default:false" json:"is_gluten_free"`
	IsDairyFree  bool           `gorm:"default:false" json:"is_dairy_free"`
	ImageURL     string         `json:"image_url,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Ingredients     []RecipeIngredient     `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
	NutritionalInfo *RecipeNutritionalInfo `gorm:"foreignKey:RecipeID" json:"nutritional_info,omitempty"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// RecipeNutritionalInfo is 1:1 with Recipe; values are per serving.
type RecipeNutritionalInfo struct {
	ID       uint     `gorm:"primarykey" json:"id"`
	RecipeID uint     `gorm:"not null;uniqueIndex" json:"recipe_id"`
	Calories float64  `gorm:"not null" json:"calories"`
	ProteinG float64  `gorm:"column:protein_g;not null" json:"protein_g"`
	CarbsG   float64  `gorm:"column:carbs_g;not null" json:"carbs_g"`
	FatG     float64  `gorm:"column:fat_g;not null" json:"fat_g"`
	FiberG   *float64 `gorm:"column:fiber_g" json:"fiber_g,omitempty"`
	SugarG   *float64 `gorm:"column:sugar_g" json:"sugar_g,omitempty"`
	SodiumMg *float64 `gorm:"column:sodium_mg" json:"sodium_mg,omitempty"`
}

func (RecipeNutritionalInfo) TableName() string {
	return "recipe_nutritional_info"
}
