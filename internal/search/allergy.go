package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mealwise/backend/internal/models"
)

// allergyQuerySynonyms expands an allergy name to the food words a query may
// use for it, so we can warn when a query asks for something the user is
// allergic to.
var allergyQuerySynonyms = map[string][]string{
	"milk": {
		"milk", "dairy", "cheese", "butter", "cream",
		"yogurt", "paneer", "curd", "ghee",
	},
	"peanut": {"peanut", "peanuts", "peanut butter"},
}

// userAllergyTerms loads the user's persisted allergy names, normalized.
// Computed fresh per request; never cached.
func (s *Service) userAllergyTerms(userID uuid.UUID) (map[string]bool, error) {
	var names []string
	err := s.db.Model(&models.Allergy{}).
		Joins("JOIN user_allergies ON user_allergies.allergy_id = allergies.id").
		Where("user_allergies.user_id = ?", userID).
		Pluck("allergies.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user allergies: %w", err)
	}

	terms := make(map[string]bool, len(names))
	for _, n := range names {
		if t := normalizeTerm(n); t != "" {
			terms[t] = true
		}
	}
	return terms, nil
}

// expandPluralTerms adds the naive singular form of every plural-looking
// term, so "peanuts" in a query can match ingredient "peanut".
func expandPluralTerms(terms map[string]bool) {
	for t := range terms {
		if strings.HasSuffix(t, "s") && len(t) > 3 {
			terms[t[:len(t)-1]] = true
		}
	}
}

// mappedIngredientIDs resolves exclusion terms to concrete ingredient IDs
// through two independent joins: the user's direct allergy assignments, and
// allergy names matching any exclusion term by substring.
func (s *Service) mappedIngredientIDs(terms map[string]bool, userID uuid.UUID) (map[uint]bool, error) {
	allergyIDs := make(map[uint]bool)

	var direct []uint
	err := s.db.Model(&models.UserAllergy{}).
		Where("user_id = ?", userID).
		Pluck("allergy_id", &direct).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load allergy assignments: %w", err)
	}
	for _, id := range direct {
		allergyIDs[id] = true
	}

	if len(terms) > 0 {
		q := s.db.Model(&models.Allergy{})
		for i, t := range sortedTerms(terms) {
			like := "%" + t + "%"
			if i == 0 {
				q = q.Where("LOWER(name) LIKE ?", like)
			} else {
				q = q.Or("LOWER(name) LIKE ?", like)
			}
		}
		var byName []uint
		if err := q.Pluck("id", &byName).Error; err != nil {
			return nil, fmt.Errorf("failed to match allergy names: %w", err)
		}
		for _, id := range byName {
			allergyIDs[id] = true
		}
	}

	if len(allergyIDs) == 0 {
		return map[uint]bool{}, nil
	}

	ids := make([]uint, 0, len(allergyIDs))
	for id := range allergyIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var mapped []uint
	err = s.db.Model(&models.AllergyIngredientMapping{}).
		Where("allergy_id IN ?", ids).
		Pluck("ingredient_id", &mapped).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load allergy ingredient mappings: %w", err)
	}

	out := make(map[uint]bool, len(mapped))
	for _, id := range mapped {
		out[id] = true
	}
	return out, nil
}

// allergyConflictWarnings scans the query for foods that imply one of the
// user's allergies and emits an informational warning per conflicting
// allergy. This never blocks exclusion.
func allergyConflictWarnings(query string, terms map[string]bool) []string {
	qNorm := normalizeTerm(query)
	padded := " " + qNorm + " "

	qTokens := make(map[string]bool)
	for _, tok := range tokenRe.FindAllString(qNorm, -1) {
		qTokens[tok] = true
	}

	var warnings []string
	for _, a := range sortedTerms(terms) {
		for _, syn := range allergyQuerySynonyms[a] {
			st := normalizeTerm(syn)
			if st == "" {
				continue
			}
			if qTokens[st] || strings.Contains(padded, " "+st+" ") {
				warnings = append(warnings, fmt.Sprintf(
					"Query seems to include '%s' but you have selected allergy '%s', so relevant recipes may be excluded.",
					st, a))
				break
			}
		}
	}
	return warnings
}

func sortedTerms(terms map[string]bool) []string {
	out := make([]string, 0, len(terms))
	for t := range terms {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func sortedIDs(ids map[uint]bool) []uint {
	out := make([]uint, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
