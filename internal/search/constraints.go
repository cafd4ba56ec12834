package search

import "strings"

// Nutrition heuristic thresholds (per serving) applied when the user asks
// for high-protein / low-carb type queries.
const (
	highProteinMinG = 20.0
	lowCarbMaxG     = 30.0
)

// detectNutritionConstraints inspects the raw query and the parsed include
// terms for secondary nutrition constraints the primary parse does not
// capture.
func detectNutritionConstraints(query string, parsed ParsedQuery) NutritionConstraints {
	q := " " + normalizeTerm(query) + " "

	include := make(map[string]bool, len(parsed.IncludeTerms))
	for _, t := range parsed.IncludeTerms {
		include[normalizeTerm(t)] = true
	}

	highProtein := strings.Contains(q, " high protein ") ||
		strings.Contains(q, " high-protein ") ||
		strings.Contains(q, " protein rich ") ||
		(include["protein"] && include["high"]) ||
		include["high protein"]

	lowCarb := strings.Contains(q, " low carb ") ||
		strings.Contains(q, " low-carb ") ||
		strings.Contains(q, " low carbs ") ||
		strings.Contains(q, " low carbohydrate ") ||
		strings.Contains(q, " keto ") ||
		strings.Contains(q, " keto-friendly ") ||
		include["low carb"] ||
		include["low carbohydrate"]

	return NutritionConstraints{
		HighProtein: highProtein,
		LowCarb:     lowCarb,
		// Combining both axes narrows text matching to ALL terms to keep the
		// result set from going over-broad.
		RequireAllTextTerms: highProtein && lowCarb,
	}
}
