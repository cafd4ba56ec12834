package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mealwise/backend/internal/models"
)

func TestScoreRecipeText(t *testing.T) {
	recipe := &models.Recipe{
		Name:         "Paneer Tikka Masala",
		Description:  "Creamy tomato curry with grilled paneer",
		Instructions: "Marinate the paneer, grill, then simmer in curry sauce.",
	}

	t.Run("weights name desc instructions", func(t *testing.T) {
		ts := scoreRecipeText(recipe, []string{"tikka", "tomato", "simmer"})
		assert.Equal(t, 1, ts.NameHits)
		assert.Equal(t, 1, ts.DescHits)
		assert.Equal(t, 1, ts.InstrHits)
		assert.Equal(t, 5*1+2*1+1, ts.Score)
	})

	t.Run("term counts in first matching field only", func(t *testing.T) {
		// "paneer" appears in all three fields but only the name counts.
		ts := scoreRecipeText(recipe, []string{"paneer"})
		assert.Equal(t, 1, ts.NameHits)
		assert.Equal(t, 0, ts.DescHits)
		assert.Equal(t, 0, ts.InstrHits)
		assert.Equal(t, 5, ts.Score)
	})

	t.Run("no terms no score", func(t *testing.T) {
		assert.Equal(t, textScore{}, scoreRecipeText(recipe, nil))
	})

	t.Run("miss scores zero", func(t *testing.T) {
		ts := scoreRecipeText(recipe, []string{"sushi"})
		assert.Equal(t, 0, ts.Score)
	})
}

func TestBuildResultTotalTime(t *testing.T) {
	prep, cook := 15, 30

	t.Run("prep plus cook", func(t *testing.T) {
		r := buildResult(&models.Recipe{PrepTime: &prep, CookTime: &cook}, nil)
		assert.Equal(t, 45, *r.TotalTime)
	})

	t.Run("prep only", func(t *testing.T) {
		r := buildResult(&models.Recipe{PrepTime: &prep}, nil)
		assert.Equal(t, 15, *r.TotalTime)
	})

	t.Run("neither", func(t *testing.T) {
		r := buildResult(&models.Recipe{}, nil)
		assert.Nil(t, r.TotalTime)
	})
}

func TestBuildResultIngredientLines(t *testing.T) {
	recipe := &models.Recipe{
		Ingredients: []models.RecipeIngredient{
			{Notes: "200g", Ingredient: &models.Ingredient{Name: "paneer"}},
			{Ingredient: &models.Ingredient{Name: "tomato"}},
			{Notes: "dangling", Ingredient: nil},
		},
	}

	r := buildResult(recipe, nil)
	assert.Equal(t, []string{"paneer", "tomato"}, r.Ingredients)
	assert.Equal(t, []string{"200g paneer", "tomato"}, r.IngredientLines)
	assert.NotNil(t, r.Reasons)
}
