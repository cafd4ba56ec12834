package search

import (
	"strings"

	"gorm.io/gorm"

	"github.com/mealwise/backend/internal/models"
)

// Calorie bucket boundaries, per serving.
const (
	lowCalorieMax    = 400.0
	mediumCalorieMax = 700.0
)

// candidateFilters is one attempt's worth of declarative filter predicates.
// All filters are conjunctive. Exclusion terms must already be normalized
// and sorted.
type candidateFilters struct {
	Diet                DietType
	Terms               []string
	RequireAllTerms     bool
	ExclusionTerms      []string
	ExcludedIngredients []uint
	HighProtein         bool
	LowCarb             bool
	Bucket              CalorieBucket
}

// buildCandidateQuery composes the filtered, ID-ordered recipe query for one
// attempt. Pure composition; nothing executes until fetch.
func (s *Service) buildCandidateQuery(f candidateFilters) *gorm.DB {
	q := s.db.Model(&models.Recipe{}).
		Joins("LEFT JOIN recipe_nutritional_info ON recipe_nutritional_info.recipe_id = recipes.id").
		Preload("Ingredients.Ingredient").
		Preload("NutritionalInfo")

	switch f.Diet {
	case DietVeg:
		q = q.Where("recipes.is_vegetarian = ?", true)
	case DietNonVeg:
		// Unknown diet flags stay in: non-veg means "not known vegetarian".
		q = q.Where("recipes.is_vegetarian = ? OR recipes.is_vegetarian IS NULL", false)
	}

	q = applyTextTerms(q, f.Terms, f.RequireAllTerms)
	q = applyAllergyExclusions(q, f.ExclusionTerms, f.ExcludedIngredients)

	if f.HighProtein {
		q = q.Where("recipe_nutritional_info.protein_g >= ?", highProteinMinG)
	}
	if f.LowCarb {
		q = q.Where("recipe_nutritional_info.carbs_g <= ?", lowCarbMaxG)
	}

	switch f.Bucket {
	case BucketLow:
		q = q.Where("recipe_nutritional_info.calories < ?", lowCalorieMax)
	case BucketMedium:
		q = q.Where("recipe_nutritional_info.calories >= ? AND recipe_nutritional_info.calories <= ?",
			lowCalorieMax, mediumCalorieMax)
	case BucketHigh:
		q = q.Where("recipe_nutritional_info.calories > ?", mediumCalorieMax)
	}

	return q.Order("recipes.id ASC")
}

const textMatchClause = "(LOWER(recipes.name) LIKE ? OR LOWER(COALESCE(recipes.description, '')) LIKE ? OR LOWER(recipes.instructions) LIKE ?)"

// applyTextTerms matches terms by substring against name, description and
// instructions. OR-combined by default, AND-combined when requireAll is set.
func applyTextTerms(q *gorm.DB, terms []string, requireAll bool) *gorm.DB {
	if len(terms) == 0 {
		return q
	}

	if requireAll {
		for _, t := range terms {
			like := "%" + t + "%"
			q = q.Where(textMatchClause, like, like, like)
		}
		return q
	}

	parts := make([]string, 0, len(terms))
	args := make([]interface{}, 0, len(terms)*3)
	for _, t := range terms {
		like := "%" + t + "%"
		parts = append(parts, textMatchClause)
		args = append(args, like, like, like)
	}
	return q.Where(strings.Join(parts, " OR "), args...)
}

// applyAllergyExclusions excludes any recipe whose ingredient lines hit the
// mapped ingredient IDs or whose ingredient names substring-match an
// exclusion term. Applied on every attempt; never relaxed.
func applyAllergyExclusions(q *gorm.DB, terms []string, ingredientIDs []uint) *gorm.DB {
	if len(ingredientIDs) > 0 {
		q = q.Where(
			"NOT EXISTS (SELECT 1 FROM recipe_ingredients ri WHERE ri.recipe_id = recipes.id AND ri.ingredient_id IN ?)",
			ingredientIDs)
	}
	for _, t := range terms {
		if t == "" {
			continue
		}
		q = q.Where(
			"NOT EXISTS (SELECT 1 FROM recipe_ingredients ri JOIN ingredients i ON i.id = ri.ingredient_id WHERE ri.recipe_id = recipes.id AND LOWER(i.name) LIKE ?)",
			"%"+t+"%")
	}
	return q
}
