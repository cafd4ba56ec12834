package models

type Ingredient struct {
	ID              uint    `gorm:"primarykey" json:"id"`
	Name            string  `gorm:"not null;index" json:"name"`
	Category        string  `json:"category,omitempty"`
	Unit            string  `gorm:"not null" json:"unit"` // g, ml, piece, etc.
	CaloriesPerUnit float64 `gorm:"not null" json:"calories_per_unit"`
	ProteinPerUnit  float64 `gorm:"not null" json:"protein_per_unit"`
	CarbsPerUnit    float64 `gorm:"not null" json:"carbs_per_unit"`
	FatPerUnit      float64 `gorm:"not null" json:"fat_per_unit"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

// RecipeIngredient is one ingredient line of a recipe. The allergy exclusion
// filter checks these lines both by ingredient ID and by ingredient name.
type RecipeIngredient struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	RecipeID     uint    `gorm:"not null;index" json:"recipe_id"`
	IngredientID uint    `gorm:"not null;index" json:"ingredient_id"`
	Quantity     float64 `gorm:"not null" json:"quantity"`
	Notes        string  `json:"notes,omitempty"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
