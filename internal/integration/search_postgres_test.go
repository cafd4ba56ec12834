package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mealwise/backend/internal/database"
	"github.com/mealwise/backend/internal/models"
	"github.com/mealwise/backend/internal/search"
	"github.com/mealwise/backend/internal/service"
	"github.com/mealwise/backend/internal/testhelpers"
)

// Exercises the full search path against a real PostgreSQL to catch SQL that
// sqlite happens to accept. Requires docker; skips otherwise.
func TestSearchAgainstPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	db := testhelpers.SetupPostgresDatabase(t)
	require.NoError(t, database.SeedDefaultAllergies(db, nil))

	seedRecipe(t, db, "Peanut Noodles", "Noodles in peanut sauce", []string{"noodles", "peanut butter"}, 550)
	seedRecipe(t, db, "Chicken Stir Fry", "Quick weeknight dinner", []string{"chicken breast", "broccoli"}, 420)
	seedRecipe(t, db, "Paneer Tikka", "Grilled paneer dinner", []string{"paneer", "yogurt"}, 380)

	auth := service.NewAuthService(db, "integration-secret")
	token, err := auth.Register("Dana", "dana@example.com", "password123")
	require.NoError(t, err)
	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	userID := claims.UserID

	var peanut models.Allergy
	require.NoError(t, db.Where("name = ?", "peanut").First(&peanut).Error)
	allergySvc := service.NewAllergyService(db)
	_, err = allergySvc.SetUserAllergies(context.Background(), userID, []uint{peanut.ID})
	require.NoError(t, err)

	svc := search.NewService(db, nil, nil)
	_, applied, results, err := svc.SearchNL(context.Background(), userID, "dinner", 10)
	require.NoError(t, err)

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	assert.NotContains(t, names, "Peanut Noodles")
	assert.Contains(t, names, "Chicken Stir Fry")
	assert.Contains(t, names, "Paneer Tikka")
	assert.Contains(t, applied.AllergyTerms, "peanut")
}

func seedRecipe(t *testing.T, db *gorm.DB, name, desc string, ingredients []string, calories float64) {
	t.Helper()
	recipe := models.Recipe{Name: name, Description: desc, Instructions: "Cook.", Servings: 2}
	require.NoError(t, db.Create(&recipe).Error)
	require.NoError(t, db.Create(&models.RecipeNutritionalInfo{
		RecipeID: recipe.ID,
		Calories: calories,
		ProteinG: 25,
		CarbsG:   40,
		FatG:     12,
	}).Error)
	for _, ingName := range ingredients {
		var ing models.Ingredient
		err := db.Where("LOWER(name) = ?", ingName).First(&ing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ing = models.Ingredient{Name: ingName, Unit: "g"}
			require.NoError(t, db.Create(&ing).Error)
		} else {
			require.NoError(t, err)
		}
		require.NoError(t, db.Create(&models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ing.ID,
			Quantity:     100,
		}).Error)
	}
}
