package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mealwise/backend/internal/models"
)

// Above this BMI, searches soft-steer toward lower-calorie buckets unless
// the user explicitly asked for high calorie.
const bmiLowCalorieCutoff = 22.9

// Service drives natural-language recipe search over the relational
// catalogue. All per-request state is local to each call.
type Service struct {
	db     *gorm.DB
	parser *Parser
	logger *zap.Logger
}

// NewService creates a search Service. A nil parser gets a fallback-only one.
func NewService(db *gorm.DB, parser *Parser, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if parser == nil {
		parser = NewParser(nil, logger)
	}
	return &Service{db: db, parser: parser, logger: logger}
}

// ListRecipes returns the unfiltered, ID-ordered recipe listing.
func (s *Service) ListRecipes(ctx context.Context, limit int) ([]RecipeResult, error) {
	return s.fetchResults(s.buildCandidateQuery(candidateFilters{}), limit)
}

// computeBMI prefers the stored BMI and derives weight/height² otherwise.
// Returns nil when undeterminable.
func computeBMI(profile *models.UserProfile) *float64 {
	if profile == nil {
		return nil
	}
	if profile.BMI != nil {
		bmi := *profile.BMI
		return &bmi
	}
	if profile.HeightCm == nil || profile.WeightKg == nil {
		return nil
	}
	heightM := *profile.HeightCm / 100.0
	if heightM <= 0 {
		return nil
	}
	bmi := *profile.WeightKg / (heightM * heightM)
	return &bmi
}

func calorieBucketFor(calories *float64) CalorieBucket {
	if calories == nil {
		return BucketNone
	}
	switch {
	case *calories < lowCalorieMax:
		return BucketLow
	case *calories <= mediumCalorieMax:
		return BucketMedium
	default:
		return BucketHigh
	}
}

// attempt is one configuration of nutrition-constraint and text-matching
// strictness tried in sequence until the result quota is met.
type attempt struct {
	highProtein bool
	lowCarb     bool
	requireAll  bool
	label       string
}

// buildAttempts orders the cascade: both constraints first, then each alone,
// then fully relaxed. The high-protein-before-low-carb order is kept for
// behavioral compatibility with the existing ranking.
func buildAttempts(c NutritionConstraints) []attempt {
	if !c.HighProtein && !c.LowCarb {
		return []attempt{{label: "no_nutrition"}}
	}
	var attempts []attempt
	if c.HighProtein && c.LowCarb {
		attempts = append(attempts,
			attempt{highProtein: true, lowCarb: true, requireAll: c.RequireAllTextTerms, label: "both"},
			attempt{highProtein: true, label: "high_protein_only"},
			attempt{lowCarb: true, label: "low_carb_only"},
		)
	} else {
		attempts = append(attempts,
			attempt{highProtein: c.HighProtein, lowCarb: c.LowCarb, label: "single"})
	}
	return append(attempts, attempt{label: "no_nutrition"})
}

// SearchNL interprets the query, resolves allergy exclusions and nutrition
// constraints, and runs the cascading relaxation search. It never fails on
// parse problems; only data-access errors propagate.
func (s *Service) SearchNL(ctx context.Context, userID uuid.UUID, query string, limit int) (ParsedQuery, AppliedFilters, []RecipeResult, error) {
	parsed := s.parser.Parse(ctx, query)

	var profile *models.UserProfile
	var row models.UserProfile
	err := s.db.Where("user_id = ?", userID).First(&row).Error
	switch {
	case err == nil:
		profile = &row
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No profile: BMI stays unknown and no bucket preference applies.
	default:
		return parsed, AppliedFilters{}, nil, fmt.Errorf("failed to load profile: %w", err)
	}
	bmi := computeBMI(profile)

	allergyTerms, err := s.userAllergyTerms(userID)
	if err != nil {
		return parsed, AppliedFilters{}, nil, err
	}
	for _, t := range parsed.ExcludeTerms {
		if nt := normalizeTerm(t); nt != "" {
			allergyTerms[nt] = true
		}
	}
	expandPluralTerms(allergyTerms)

	mappedIDs, err := s.mappedIngredientIDs(allergyTerms, userID)
	if err != nil {
		return parsed, AppliedFilters{}, nil, err
	}

	warnings := allergyConflictWarnings(query, allergyTerms)
	constraints := detectNutritionConstraints(query, parsed)

	searchTerms := extractSearchTerms(query, parsed)
	// Exclusions never become positive search terms.
	filtered := searchTerms[:0]
	for _, t := range searchTerms {
		if allergyTerms[normalizeTerm(t)] {
			continue
		}
		// Generic nutrition words are handled by the threshold filters;
		// requiring them as literal recipe text would drop valid results.
		if constraints.HighProtein && (t == "protein" || t == "proteins") {
			continue
		}
		if constraints.LowCarb &&
			(t == "carb" || t == "carbs" || t == "carbohydrate" || t == "carbohydrates" || t == "keto") {
			continue
		}
		filtered = append(filtered, t)
	}
	searchTerms = filtered

	// Soft enforcement: high BMI without an explicit high-calorie ask
	// prioritizes low then medium buckets. Never a hard filter.
	bmiSteered := bmi != nil && *bmi > bmiLowCalorieCutoff && !parsed.WantsHighCalorie
	var preferredBuckets []CalorieBucket
	if bmiSteered {
		preferredBuckets = []CalorieBucket{BucketLow, BucketMedium}
	} else if parsed.CalorieBucket != BucketNone {
		preferredBuckets = []CalorieBucket{parsed.CalorieBucket}
	}

	exclusionTerms := sortedTerms(allergyTerms)
	excludedIngredients := sortedIDs(mappedIDs)

	runOnce := func(bucket CalorieBucket, a attempt) ([]RecipeResult, error) {
		q := s.buildCandidateQuery(candidateFilters{
			Diet:                parsed.Diet,
			Terms:               searchTerms,
			RequireAllTerms:     a.requireAll,
			ExclusionTerms:      exclusionTerms,
			ExcludedIngredients: excludedIngredients,
			HighProtein:         a.highProtein,
			LowCarb:             a.lowCarb,
			Bucket:              bucket,
		})
		return s.fetchRankedResults(q, limit, searchTerms)
	}

	attempts := buildAttempts(constraints)

	results := []RecipeResult{}
	seen := make(map[uint]bool)
	usedAttempt := ""

	for _, a := range attempts {
		if len(results) >= limit {
			break
		}
		beforeCount := len(results)

		for _, bucket := range preferredBuckets {
			hits, err := runOnce(bucket, a)
			if err != nil {
				return parsed, AppliedFilters{}, nil, err
			}
			for _, r := range hits {
				if seen[r.ID] {
					continue
				}
				r.Reasons = append(r.Reasons, fmt.Sprintf("calorie_bucket=%s", calorieBucketFor(r.Calories)))
				if a.highProtein {
					r.Reasons = append(r.Reasons, "constraint=high_protein")
				}
				if a.lowCarb {
					r.Reasons = append(r.Reasons, "constraint=low_carb")
				}
				if bmiSteered {
					r.Reasons = append(r.Reasons, "bmi_high_prioritized_low")
				}
				results = append(results, r)
				seen[r.ID] = true
				if len(results) >= limit {
					break
				}
			}
			if len(results) >= limit {
				break
			}
		}

		if len(results) < limit {
			hits, err := runOnce(BucketNone, a)
			if err != nil {
				return parsed, AppliedFilters{}, nil, err
			}
			for _, r := range hits {
				if seen[r.ID] {
					continue
				}
				if a.highProtein {
					r.Reasons = append(r.Reasons, "constraint=high_protein")
				}
				if a.lowCarb {
					r.Reasons = append(r.Reasons, "constraint=low_carb")
				}
				if a.label != "no_nutrition" {
					r.Reasons = append(r.Reasons, fmt.Sprintf("fallback_attempt=%s", a.label))
				}
				results = append(results, r)
				seen[r.ID] = true
				if len(results) >= limit {
					break
				}
			}
		}

		if len(results) > beforeCount && usedAttempt == "" {
			usedAttempt = a.label
		}
	}

	if usedAttempt != "" && usedAttempt != "both" && constraints.HighProtein && constraints.LowCarb {
		warnings = append(warnings,
			"No recipes matched all requested constraints (high protein + low carb). Showing best available matches.")
	}
	if warnings == nil {
		warnings = []string{}
	}

	applied := AppliedFilters{
		Parsed:              parsed,
		BMI:                 bmi,
		BMICutoff:           bmiLowCalorieCutoff,
		DefaultActivity:     "sedentary",
		AllergyTerms:        exclusionTerms,
		MappedIngredientIDs: excludedIngredients,
		Warnings:            warnings,
		Nutrition: NutritionFilters{
			HighProtein:     constraints.HighProtein,
			LowCarb:         constraints.LowCarb,
			HighProteinMinG: highProteinMinG,
			LowCarbMaxG:     lowCarbMaxG,
		},
		SearchTerms: searchTerms,
	}

	s.logger.Debug("search_nl completed",
		zap.String("query", query),
		zap.String("attempt", usedAttempt),
		zap.Int("results", len(results)))

	return parsed, applied, results, nil
}
