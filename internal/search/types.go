// Package search implements the natural-language recipe search engine:
// query interpretation (LLM-assisted with a deterministic fallback),
// allergy-safety exclusion, nutrition-aware filtering and a cascading
// constraint-relaxation strategy with deterministic ranking.
package search

// DietType is the diet preference extracted from a query. The zero value
// means no preference.
type DietType string

const (
	DietNone   DietType = ""
	DietVeg    DietType = "veg"
	DietNonVeg DietType = "non_veg"
)

// CalorieBucket classifies per-serving calories. The zero value means no
// bucket. Boundaries are fixed: LOW < 400, 400 <= MEDIUM <= 700, HIGH > 700.
type CalorieBucket string

const (
	BucketNone   CalorieBucket = ""
	BucketLow    CalorieBucket = "low"
	BucketMedium CalorieBucket = "medium"
	BucketHigh   CalorieBucket = "high"
)

// ParsedQuery is the structured intent extracted from a free-text query.
type ParsedQuery struct {
	Diet             DietType      `json:"diet,omitempty"`
	CalorieBucket    CalorieBucket `json:"calorie_bucket,omitempty"`
	IncludeTerms     []string      `json:"include_terms"`
	ExcludeTerms     []string      `json:"exclude_terms"`
	WantsHighCalorie bool          `json:"wants_high_calorie"`
}

// NutritionConstraints are the secondary constraints detected from the query
// text on top of the primary parse.
type NutritionConstraints struct {
	HighProtein bool `json:"high_protein"`
	LowCarb     bool `json:"low_carb"`
	// RequireAllTextTerms switches free-text matching from ANY to ALL, used
	// when two nutrition axes are combined.
	RequireAllTextTerms bool `json:"require_all_text_terms"`
}

// NutritionFilters echoes the nutrition constraints and their fixed
// thresholds in the applied-filters record.
type NutritionFilters struct {
	HighProtein     bool    `json:"high_protein"`
	LowCarb         bool    `json:"low_carb"`
	HighProteinMinG float64 `json:"high_protein_min_g"`
	LowCarbMaxG     float64 `json:"low_carb_max_g"`
}

// AppliedFilters describes every filter that shaped a search response, so
// clients can explain the result set.
type AppliedFilters struct {
	Parsed              ParsedQuery      `json:"parsed"`
	BMI                 *float64         `json:"bmi"`
	BMICutoff           float64          `json:"bmi_cutoff"`
	DefaultActivity     string           `json:"default_activity"`
	AllergyTerms        []string         `json:"allergy_terms"`
	MappedIngredientIDs []uint           `json:"mapped_ingredient_ids"`
	Warnings            []string         `json:"warnings"`
	Nutrition           NutritionFilters `json:"nutrition"`
	SearchTerms         []string         `json:"search_terms"`
}

// RecipeResult is one search hit: a flat recipe snapshot plus the
// human-readable reasons explaining why it matched.
type RecipeResult struct {
	ID              uint     `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Calories        *float64 `json:"calories"`
	ImageURL        string   `json:"image_url,omitempty"`
	PrepTime        *int     `json:"prep_time,omitempty"`
	CookTime        *int     `json:"cook_time,omitempty"`
	TotalTime       *int     `json:"total_time,omitempty"`
	Servings        int      `json:"servings"`
	CuisineType     string   `json:"cuisine_type,omitempty"`
	ProteinG        *float64 `json:"protein_g,omitempty"`
	CarbsG          *float64 `json:"carbs_g,omitempty"`
	FatG            *float64 `json:"fat_g,omitempty"`
	FiberG          *float64 `json:"fiber_g,omitempty"`
	SugarG          *float64 `json:"sugar_g,omitempty"`
	SodiumMg        *float64 `json:"sodium_mg,omitempty"`
	IngredientLines []string `json:"ingredient_lines"`
	Ingredients     []string `json:"ingredients"`
	Instructions    string   `json:"instructions,omitempty"`
	Reasons         []string `json:"reasons"`
}
