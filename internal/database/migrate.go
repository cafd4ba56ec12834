package database

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mealwise/backend/internal/models"
)

// AutoMigrate creates or updates the schema for every application model.
// Production deployments run the SQL migrations instead; this path backs
// local development and the sqlite test databases.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Recipe{},
		&models.RecipeNutritionalInfo{},
		&models.Ingredient{},
		&models.RecipeIngredient{},
		&models.Allergy{},
		&models.AllergyIngredientMapping{},
		&models.UserAllergy{},
	)
}

var defaultAllergies = []models.Allergy{
	{Name: "milk", Description: "Dairy milk and milk-derived products"},
	{Name: "egg", Description: "Chicken eggs and egg-derived products"},
	{Name: "peanut", Description: "Peanuts and peanut-derived products"},
	{Name: "tree nut", Description: "Almonds, cashews, walnuts and other tree nuts"},
	{Name: "soy", Description: "Soybeans and soy-derived products"},
	{Name: "wheat", Description: "Wheat and wheat-derived products"},
	{Name: "gluten", Description: "Gluten-containing grains"},
	{Name: "fish", Description: "Finned fish"},
	{Name: "shellfish", Description: "Crustaceans and molluscs"},
	{Name: "sesame", Description: "Sesame seeds and sesame-derived products"},
}

// SeedDefaultAllergies inserts the common allergen catalog and maps each
// allergy to any existing ingredients whose name contains the allergy name.
// Existing allergies are left untouched.
func SeedDefaultAllergies(db *gorm.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, seed := range defaultAllergies {
		var allergy models.Allergy
		err := db.Where("LOWER(name) = ?", strings.ToLower(seed.Name)).First(&allergy).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("error looking up allergy %q: %w", seed.Name, err)
			}
			allergy = seed
			if err := db.Create(&allergy).Error; err != nil {
				return fmt.Errorf("error creating allergy %q: %w", seed.Name, err)
			}
			logger.Info("seeded allergy", zap.String("name", allergy.Name))
		}

		if err := autoMapAllergy(db, &allergy); err != nil {
			return err
		}
	}
	return nil
}

func autoMapAllergy(db *gorm.DB, allergy *models.Allergy) error {
	var ingredientIDs []uint
	pattern := "%" + strings.ToLower(allergy.Name) + "%"
	if err := db.Model(&models.Ingredient{}).
		Where("LOWER(name) LIKE ?", pattern).
		Pluck("id", &ingredientIDs).Error; err != nil {
		return fmt.Errorf("error finding ingredients for allergy %q: %w", allergy.Name, err)
	}

	for _, id := range ingredientIDs {
		mapping := models.AllergyIngredientMapping{AllergyID: allergy.ID, IngredientID: id}
		var existing models.AllergyIngredientMapping
		err := db.Where("allergy_id = ? AND ingredient_id = ?", allergy.ID, id).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("error checking allergy mapping: %w", err)
		}
		if err := db.Create(&mapping).Error; err != nil {
			return fmt.Errorf("error creating allergy mapping: %w", err)
		}
	}
	return nil
}
