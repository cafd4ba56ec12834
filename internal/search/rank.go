package search

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/mealwise/backend/internal/models"
)

// Ranked fetches over-fetch so the scorer has a meaningful pool before
// truncation.
const maxRankedFetch = 250

type textScore struct {
	Score     int
	NameHits  int
	DescHits  int
	InstrHits int
}

// scoreRecipeText counts term hits per text field. A term scores in at most
// one field: name first, then description, then instructions. Composite
// score weighs name 5x and description 2x.
func scoreRecipeText(r *models.Recipe, terms []string) textScore {
	if len(terms) == 0 {
		return textScore{}
	}

	name := strings.ToLower(r.Name)
	desc := strings.ToLower(r.Description)
	instr := strings.ToLower(r.Instructions)

	var ts textScore
	for _, t := range terms {
		tt := strings.ToLower(strings.TrimSpace(t))
		if tt == "" {
			continue
		}
		switch {
		case strings.Contains(name, tt):
			ts.NameHits++
		case desc != "" && strings.Contains(desc, tt):
			ts.DescHits++
		case strings.Contains(instr, tt):
			ts.InstrHits++
		}
	}
	ts.Score = ts.NameHits*5 + ts.DescHits*2 + ts.InstrHits
	return ts
}

// fetchResults executes the query with a plain row limit, preserving the
// collection's ID-ascending order. Used when no free-text terms are active.
func (s *Service) fetchResults(q *gorm.DB, limit int) ([]RecipeResult, error) {
	var recipes []models.Recipe
	if err := q.Limit(limit).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recipes: %w", err)
	}

	out := make([]RecipeResult, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		out = append(out, buildResult(r, nutritionReasons(r.NutritionalInfo)))
	}
	return out, nil
}

// fetchRankedResults over-fetches up to max(limit*10, 50) capped at
// maxRankedFetch candidates, scores them against the terms, sorts by
// descending score with deterministic tie-breaks, and truncates to limit.
func (s *Service) fetchRankedResults(q *gorm.DB, limit int, terms []string) ([]RecipeResult, error) {
	if len(terms) == 0 {
		return s.fetchResults(q, limit)
	}

	fetchLimit := limit * 10
	if fetchLimit < 50 {
		fetchLimit = 50
	}
	if fetchLimit > maxRankedFetch {
		fetchLimit = maxRankedFetch
	}

	var recipes []models.Recipe
	if err := q.Limit(fetchLimit).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recipes: %w", err)
	}

	type scoredCandidate struct {
		ts     textScore
		recipe *models.Recipe
	}
	scored := make([]scoredCandidate, 0, len(recipes))
	for i := range recipes {
		scored = append(scored, scoredCandidate{
			ts:     scoreRecipeText(&recipes[i], terms),
			recipe: &recipes[i],
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.ts.Score != b.ts.Score {
			return a.ts.Score > b.ts.Score
		}
		if a.ts.NameHits != b.ts.NameHits {
			return a.ts.NameHits > b.ts.NameHits
		}
		if a.ts.DescHits != b.ts.DescHits {
			return a.ts.DescHits > b.ts.DescHits
		}
		return a.recipe.ID < b.recipe.ID
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	out := make([]RecipeResult, 0, len(scored))
	for _, sc := range scored {
		reasons := []string{fmt.Sprintf("score=%d", sc.ts.Score)}
		if sc.ts.NameHits > 0 {
			reasons = append(reasons, fmt.Sprintf("name_matches=%d", sc.ts.NameHits))
		}
		if sc.ts.DescHits > 0 {
			reasons = append(reasons, fmt.Sprintf("desc_matches=%d", sc.ts.DescHits))
		}
		if sc.ts.InstrHits > 0 {
			reasons = append(reasons, fmt.Sprintf("instr_matches=%d", sc.ts.InstrHits))
		}
		reasons = append(reasons, nutritionReasons(sc.recipe.NutritionalInfo)...)
		out = append(out, buildResult(sc.recipe, reasons))
	}
	return out, nil
}

func nutritionReasons(nut *models.RecipeNutritionalInfo) []string {
	if nut == nil {
		return nil
	}
	return []string{
		fmt.Sprintf("protein_g=%.1f", nut.ProteinG),
		fmt.Sprintf("carbs_g=%.1f", nut.CarbsG),
	}
}

// buildResult assembles the flat response snapshot for one recipe.
func buildResult(r *models.Recipe, reasons []string) RecipeResult {
	res := RecipeResult{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		ImageURL:        r.ImageURL,
		PrepTime:        r.PrepTime,
		CookTime:        r.CookTime,
		Servings:        r.Servings,
		CuisineType:     string(r.CuisineType),
		Instructions:    r.Instructions,
		IngredientLines: []string{},
		Ingredients:     []string{},
		Reasons:         reasons,
	}
	if res.Reasons == nil {
		res.Reasons = []string{}
	}

	if nut := r.NutritionalInfo; nut != nil {
		calories := nut.Calories
		res.Calories = &calories
		protein := nut.ProteinG
		res.ProteinG = &protein
		carbs := nut.CarbsG
		res.CarbsG = &carbs
		fat := nut.FatG
		res.FatG = &fat
		res.FiberG = nut.FiberG
		res.SugarG = nut.SugarG
		res.SodiumMg = nut.SodiumMg
	}

	for _, ri := range r.Ingredients {
		if ri.Ingredient == nil || ri.Ingredient.Name == "" {
			continue
		}
		res.Ingredients = append(res.Ingredients, ri.Ingredient.Name)
		line := strings.TrimSpace(strings.TrimSpace(ri.Notes) + " " + ri.Ingredient.Name)
		res.IngredientLines = append(res.IngredientLines, line)
	}

	switch {
	case r.PrepTime != nil && r.CookTime != nil:
		total := *r.PrepTime + *r.CookTime
		res.TotalTime = &total
	case r.PrepTime != nil:
		res.TotalTime = r.PrepTime
	case r.CookTime != nil:
		res.TotalTime = r.CookTime
	}

	return res
}
