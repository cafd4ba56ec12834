package search_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mealwise/backend/internal/models"
	"github.com/mealwise/backend/internal/search"
	"github.com/mealwise/backend/internal/testhelpers"
)

func newTestService(t *testing.T) (*search.Service, *gorm.DB) {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)
	return search.NewService(db, nil, nil), db
}

func createUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := models.User{
		Name:         "Test User",
		Email:        uuid.New().String() + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func createProfileWithBMI(t *testing.T, db *gorm.DB, userID uuid.UUID, bmi float64) {
	t.Helper()
	profile := models.UserProfile{UserID: userID, BMI: &bmi}
	require.NoError(t, db.Create(&profile).Error)
}

type recipeSeed struct {
	name        string
	description string
	isVeg       *bool
	calories    float64
	proteinG    float64
	carbsG      float64
	ingredients []string
}

func createRecipe(t *testing.T, db *gorm.DB, seed recipeSeed) models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		Name:         seed.name,
		Description:  seed.description,
		Instructions: "Cook and serve.",
		Servings:     2,
		IsVegetarian: seed.isVeg,
	}
	require.NoError(t, db.Create(&recipe).Error)

	if seed.calories > 0 {
		info := models.RecipeNutritionalInfo{
			RecipeID: recipe.ID,
			Calories: seed.calories,
			ProteinG: seed.proteinG,
			CarbsG:   seed.carbsG,
			FatG:     10,
		}
		require.NoError(t, db.Create(&info).Error)
	}

	for _, name := range seed.ingredients {
		ingredient := findOrCreateIngredient(t, db, name)
		ri := models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ingredient.ID,
			Quantity:     1,
		}
		require.NoError(t, db.Create(&ri).Error)
	}
	return recipe
}

func findOrCreateIngredient(t *testing.T, db *gorm.DB, name string) models.Ingredient {
	t.Helper()
	var ingredient models.Ingredient
	err := db.Where("name = ?", name).First(&ingredient).Error
	if err == nil {
		return ingredient
	}
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	ingredient = models.Ingredient{Name: name, Unit: "g"}
	require.NoError(t, db.Create(&ingredient).Error)
	return ingredient
}

func giveAllergy(t *testing.T, db *gorm.DB, userID uuid.UUID, name string, mappedIngredients ...string) models.Allergy {
	t.Helper()
	allergy := models.Allergy{Name: name}
	require.NoError(t, db.Create(&allergy).Error)
	require.NoError(t, db.Create(&models.UserAllergy{UserID: userID, AllergyID: allergy.ID}).Error)
	for _, ing := range mappedIngredients {
		ingredient := findOrCreateIngredient(t, db, ing)
		mapping := models.AllergyIngredientMapping{AllergyID: allergy.ID, IngredientID: ingredient.ID}
		require.NoError(t, db.Create(&mapping).Error)
	}
	return allergy
}

func resultNames(results []search.RecipeResult) []string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	return names
}

func TestSearchNLAllergyExclusionNeverRelaxed(t *testing.T) {
	svc, db := newTestService(t)
	userID := createUser(t, db)
	giveAllergy(t, db, userID, "peanut", "peanut")

	createRecipe(t, db, recipeSeed{name: "Peanut Chicken Satay", ingredients: []string{"peanut", "chicken"}})
	// Unmapped ingredient caught by the name-substring exclusion.
	createRecipe(t, db, recipeSeed{name: "Chicken Peanut Noodles", ingredients: []string{"roasted peanuts", "chicken"}})
	safe := createRecipe(t, db, recipeSeed{name: "Chicken Stir Fry", ingredients: []string{"chicken"}})

	_, applied, results, err := svc.SearchNL(context.Background(), userID, "chicken", 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, safe.ID, results[0].ID)
	assert.Contains(t, applied.AllergyTerms, "peanut")
	assert.NotEmpty(t, applied.MappedIngredientIDs)
}

func TestSearchNLExcludesQueryExclusionTerms(t *testing.T) {
	svc, db := newTestService(t)
	userID := createUser(t, db)

	createRecipe(t, db, recipeSeed{name: "Mushroom Pasta", ingredients: []string{"mushrooms", "pasta"}})
	safe := createRecipe(t, db, recipeSeed{name: "Tomato Pasta", ingredients: []string{"tomato", "pasta"}})

	_, applied, results, err := svc.SearchNL(context.Background(), userID, "pasta without mushrooms", 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, safe.ID, results[0].ID)
	// Plural expansion makes the singular form an exclusion term too.
	assert.Contains(t, applied.AllergyTerms, "mushroom")
	assert.Contains(t, applied.AllergyTerms, "mushrooms")
	assert.NotContains(t, applied.SearchTerms, "mushrooms")
}

func TestSearchNLConflictWarning(t *testing.T) {
	svc, db := newTestService(t)
	userID := createUser(t, db)
	giveAllergy(t, db, userID, "milk")

	createRecipe(t, db, recipeSeed{name: "Margherita Pizza", ingredients: []string{"flour"}})

	_, applied, _, err := svc.SearchNL(context.Background(), userID, "cheese pizza", 10)
	require.NoError(t, err)

	require.NotEmpty(t, applied.Warnings)
	assert.Contains(t, applied.Warnings[0], "'cheese'")
	assert.Contains(t, applied.Warnings[0], "'milk'")
}

func TestSearchNLDietFilters(t *testing.T) {
	svc, db := newTestService(t)
	userID := createUser(t, db)

	vegTrue, vegFalse := true, false
	createRecipe(t, db, recipeSeed{name: "Paneer Bowl", isVeg: &vegTrue})
	createRecipe(t, db, recipeSeed{name: "Chicken Bowl", isVeg: &vegFalse})
	createRecipe(t, db, recipeSeed{name: "Mystery Bowl"})

	_, _, vegResults, err := svc.SearchNL(context.Background(), userID, "veg recipes", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Paneer Bowl"}, resultNames(vegResults))

	// Unknown diet flags stay in for non-veg searches.
	_, _, nonVegResults, err := svc.SearchNL(context.Background(), userID, "non veg recipes", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chicken Bowl", "Mystery Bowl"}, resultNames(nonVegResults))
}

func TestSearchNLBMISteersTowardLowerBuckets(t *testing.T) {
	svc, db := newTestService(t)
	userID := createUser(t, db)
	createProfileWithBMI(t, db, userID, 30.0)

	createRecipe(t, db, recipeSeed{name: "Dinner Bowl High", calories: 701, proteinG: 20, carbsG: 50})
	createRecipe(t, db, recipeSeed{name: "Dinner Bowl Low", calories: 399, proteinG: 20, carbsG: 50})
	createRecipe(t, db, recipeSeed{name: "Dinner Bowl Medium", calories: 400, proteinG: 20, carbsG: 50})

	_, applied, results, err := svc.SearchNL(context.Background(), userID, "dinner", 10)
	require.NoError(t, err)

	require.Equal(t, []string{"Dinner Bowl Low", "Dinner Bowl Medium", "Dinner Bowl High"}, resultNames(results))
	assert.Contains(t, results[0].Reasons, "calorie_bucket=low")
	assert.Contains(t, results[0].Reasons, "bmi_high_prioritized_low")
	assert.Contains(t, results[1].Reasons, "calorie_bucket=medium")
	assert.NotContains(t, results[2].Reasons, "bmi_high_prioritized_low")
	require.NotNil(t, applied.BMI)
	assert.InDelta(t, 30.0, *applied.BMI, 0.001)
}

func TestSearchNLExplicitHighCalorieOverridesBMI(t *testing.T) {
	svc, db := newTestService(t)
	userID := createUser(t, db)
	createProfileWithBMI(t, db, userID, 30.0)

	createRecipe(t, db, recipeSeed{name: "Dinner Bowl Low", calories: 399, proteinG: 20, carbsG: 50})
	createRecipe(t, db, recipeSeed{name: "Dinner Bowl High", calories: 800, proteinG: 20, carbsG: 50})

	parsed, _, results, err := svc.SearchNL(context.Background(), userID, "high calorie dinner", 10)
	require.NoError(t, err)

	assert.True(t, parsed.WantsHighCalorie)
	require.NotEmpty(t, results)
	assert.Equal(t, "Dinner Bowl High", results[0].Name)
	assert.Contains(t, results[0].Reasons, "calorie_bucket=high")
	assert.NotContains(t, results[0].Reasons, "bmi_high_prioritized_low")
}

func TestSearchNLNutritionCascade(t *testing.T) {
	svc, db := newTestService(t)
	userID := createUser(t, db)

	both := createRecipe(t, db, recipeSeed{name: "Chicken Breast Bowl", calories: 450, proteinG: 30, carbsG: 20})
	proteinOnly := createRecipe(t, db, recipeSeed{name: "Chicken Rice", calories: 600, proteinG: 30, carbsG: 60})
	carbOnly := createRecipe(t, db, recipeSeed{name: "Chicken Salad", calories: 300, proteinG: 10, carbsG: 10})
	neither := createRecipe(t, db, recipeSeed{name: "Chicken Pie", calories: 800, proteinG: 5, carbsG: 80})

	_, applied, results, err := svc.SearchNL(context.Background(), userID, "high protein low carb chicken", 10)
	require.NoError(t, err)

	require.Equal(t, []uint{both.ID, proteinOnly.ID, carbOnly.ID, neither.ID},
		[]uint{results[0].ID, results[1].ID, results[2].ID, results[3].ID})

	assert.Contains(t, results[0].Reasons, "constraint=high_protein")
	assert.Contains(t, results[0].Reasons, "constraint=low_carb")
	assert.Contains(t, results[1].Reasons, "fallback_attempt=high_protein_only")
	assert.Contains(t, results[2].Reasons, "fallback_attempt=low_carb_only")

	assert.True(t, applied.Nutrition.HighProtein)
	assert.True(t, applied.Nutrition.LowCarb)
	assert.Equal(t, 20.0, applied.Nutrition.HighProteinMinG)
	assert.Equal(t, 30.0, applied.Nutrition.LowCarbMaxG)
	// The strict attempt produced results, so no relaxation warning.
	assert.Empty(t, applied.Warnings)
	// Generic nutrition words never become text terms.
	assert.Equal(t, []string{"chicken"}, applied.SearchTerms)
}

func TestSearchNLMediumBucketBoundsInclusive(t *testing.T) {
	svc, db := newTestService(t)
	userID := createUser(t, db)
	createProfileWithBMI(t, db, userID, 30.0)

	// 400.0 and 700.0 sit exactly on the medium bucket bounds.
	createRecipe(t, db, recipeSeed{name: "Dinner Bowl Four Hundred", calories: 400.0, proteinG: 20, carbsG: 50})
	createRecipe(t, db, recipeSeed{name: "Dinner Bowl Seven Hundred", calories: 700.0, proteinG: 20, carbsG: 50})
	createRecipe(t, db, recipeSeed{name: "Dinner Bowl Above", calories: 700.5, proteinG: 20, carbsG: 50})

	_, _, results, err := svc.SearchNL(context.Background(), userID, "dinner", 10)
	require.NoError(t, err)

	require.Equal(t, []string{"Dinner Bowl Four Hundred", "Dinner Bowl Seven Hundred", "Dinner Bowl Above"},
		resultNames(results))
	assert.Contains(t, results[0].Reasons, "calorie_bucket=medium")
	assert.Contains(t, results[1].Reasons, "calorie_bucket=medium")
	assert.NotContains(t, results[2].Reasons, "calorie_bucket=medium")
}

func TestSearchNLAllergyExclusionHoldsThroughCascade(t *testing.T) {
	svc, db := newTestService(t)
	userID := createUser(t, db)
	giveAllergy(t, db, userID, "peanut", "peanut")

	// Satisfies every nutrition attempt but carries the allergen.
	createRecipe(t, db, recipeSeed{name: "Peanut Butter Meal", calories: 450, proteinG: 30, carbsG: 20, ingredients: []string{"peanut"}})
	proteinOnly := createRecipe(t, db, recipeSeed{name: "Chicken Meal", calories: 600, proteinG: 30, carbsG: 60})
	neither := createRecipe(t, db, recipeSeed{name: "Veggie Meal", calories: 300, proteinG: 5, carbsG: 50})

	_, applied, results, err := svc.SearchNL(context.Background(), userID, "high protein low carb meal", 10)
	require.NoError(t, err)

	// The cascade relaxed all the way down and still never surfaced the allergen.
	require.Equal(t, []uint{proteinOnly.ID, neither.ID}, []uint{results[0].ID, results[1].ID})
	assert.NotContains(t, resultNames(results), "Peanut Butter Meal")
	assert.Contains(t, results[0].Reasons, "fallback_attempt=high_protein_only")
	require.NotEmpty(t, applied.Warnings)
	assert.Contains(t, applied.Warnings[len(applied.Warnings)-1], "high protein + low carb")
}

func TestSearchNLRelaxationWarning(t *testing.T) {
	svc, db := newTestService(t)
	userID := createUser(t, db)

	createRecipe(t, db, recipeSeed{name: "Chicken Rice", calories: 600, proteinG: 30, carbsG: 60})

	_, applied, results, err := svc.SearchNL(context.Background(), userID, "high protein low carb chicken", 10)
	require.NoError(t, err)

	require.NotEmpty(t, results)
	require.NotEmpty(t, applied.Warnings)
	assert.Contains(t, applied.Warnings[0], "high protein + low carb")
}

func TestSearchNLDeterministicAndDeduplicated(t *testing.T) {
	svc, db := newTestService(t)
	userID := createUser(t, db)

	for _, name := range []string{"Chicken Curry", "Chicken Soup", "Chicken Wrap", "Chicken Bake"} {
		createRecipe(t, db, recipeSeed{name: name, calories: 500, proteinG: 25, carbsG: 40})
	}

	_, _, first, err := svc.SearchNL(context.Background(), userID, "high protein chicken", 10)
	require.NoError(t, err)
	_, _, second, err := svc.SearchNL(context.Background(), userID, "high protein chicken", 10)
	require.NoError(t, err)

	assert.Equal(t, resultNames(first), resultNames(second))

	seen := make(map[uint]bool)
	for _, r := range first {
		assert.False(t, seen[r.ID], "duplicate recipe %d in results", r.ID)
		seen[r.ID] = true
	}
}

func TestSearchNLRespectsLimit(t *testing.T) {
	svc, db := newTestService(t)
	userID := createUser(t, db)

	for _, name := range []string{"Curry One", "Curry Two", "Curry Three"} {
		createRecipe(t, db, recipeSeed{name: name})
	}

	_, _, results, err := svc.SearchNL(context.Background(), userID, "curry", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchNLMissingProfile(t *testing.T) {
	svc, db := newTestService(t)
	userID := createUser(t, db)

	createRecipe(t, db, recipeSeed{name: "Plain Rice"})

	_, applied, results, err := svc.SearchNL(context.Background(), userID, "rice", 10)
	require.NoError(t, err)
	assert.Nil(t, applied.BMI)
	assert.Len(t, results, 1)
}

func TestListRecipesOrderedByID(t *testing.T) {
	svc, db := newTestService(t)

	a := createRecipe(t, db, recipeSeed{name: "Alpha"})
	b := createRecipe(t, db, recipeSeed{name: "Beta"})

	results, err := svc.ListRecipes(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, a.ID, results[0].ID)
	assert.Equal(t, b.ID, results[1].ID)
}
