package search

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// QueryOracle converts a parsing prompt into free text expected to contain a
// single JSON object. Implementations must bound their own timeout.
type QueryOracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Parser turns free-text queries into a ParsedQuery. When an oracle is
// configured it is tried first; on any failure the deterministic fallback
// parser takes over. Parse never returns an error.
type Parser struct {
	oracle QueryOracle
	logger *zap.Logger
}

// NewParser creates a Parser. A nil oracle means fallback-only parsing.
func NewParser(oracle QueryOracle, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{oracle: oracle, logger: logger}
}

const parsePrompt = `You are a parser for a recipe search API. Convert the user query into a compact JSON object. Return ONLY JSON, no extra text.

Schema:
{
  "diet": null | "veg" | "non_veg",
  "calorie_bucket": null | "low" | "medium" | "high",
  "include_terms": [string],
  "exclude_terms": [string],
  "wants_high_calorie": boolean
}

User query: %s
`

var (
	excludeTermRe    = regexp.MustCompile(`\b(no|without|exclude)\s+([a-zA-Z][a-zA-Z\s_-]{1,30})`)
	highCaloriePhrRe = regexp.MustCompile(`\b(high[-\s]?cal|high[-\s]?calorie|high[-\s]?calories|high\s+kcal)\b`)
	fencedJSONRe     = regexp.MustCompile("(?is)```(?:json)?\\s*(\\{.*?\\})\\s*```")
)

// Parse extracts structured intent from a query.
func (p *Parser) Parse(ctx context.Context, query string) ParsedQuery {
	if p.oracle == nil {
		p.logger.Debug("parse: no oracle configured, using fallback")
		return fallbackParse(query)
	}

	raw, err := p.oracle.Complete(ctx, fmt.Sprintf(parsePrompt, query))
	if err != nil {
		p.logger.Debug("parse: oracle call failed, using fallback", zap.Error(err))
		return fallbackParse(query)
	}

	data := extractJSONObject(raw)
	if data == nil {
		p.logger.Debug("parse: oracle did not return JSON, using fallback")
		return fallbackParse(query)
	}

	parsed := ParsedQuery{
		Diet:             coerceDiet(data["diet"]),
		CalorieBucket:    coerceCalorieBucket(data["calorie_bucket"]),
		IncludeTerms:     sanitizeTerms(data["include_terms"]),
		ExcludeTerms:     sanitizeTerms(data["exclude_terms"]),
		WantsHighCalorie: coerceBool(data["wants_high_calorie"]),
	}

	// Safety net: an explicit high-calorie phrase always wins over a missing
	// bucket, no matter what the oracle said.
	if parsed.CalorieBucket == BucketNone && highCaloriePhrRe.MatchString(normalizeTerm(query)) {
		parsed.CalorieBucket = BucketHigh
		parsed.WantsHighCalorie = true
	}

	return parsed
}

// fallbackParse is the deterministic keyword/regex parser used whenever the
// oracle is unavailable or misbehaves.
func fallbackParse(query string) ParsedQuery {
	q := normalizeTerm(query)

	var diet DietType
	switch {
	case strings.Contains(q, "non-veg") || strings.Contains(q, "non veg") ||
		strings.Contains(q, "nonvegetarian") || strings.Contains(q, "non vegetarian"):
		diet = DietNonVeg
	case strings.Contains(q, "veg"):
		// "veg" also covers "vegetarian"; non-veg phrases were checked first.
		diet = DietVeg
	}

	var bucket CalorieBucket
	wantsHighCalorie := false
	switch {
	case strings.Contains(q, "low calorie") || strings.Contains(q, "low calories") ||
		strings.Contains(q, "low-calorie") || strings.Contains(q, "low-calories") ||
		strings.Contains(q, "low kcal") || strings.Contains(q, "light"):
		bucket = BucketLow
	case strings.Contains(q, "high calorie") || strings.Contains(q, "high calories") ||
		strings.Contains(q, "high-calorie") || strings.Contains(q, "high-calories") ||
		strings.Contains(q, "high kcal"):
		bucket = BucketHigh
		wantsHighCalorie = true
	case strings.Contains(q, "medium calorie") || strings.Contains(q, "moderate calorie"):
		bucket = BucketMedium
	}

	var excludeTerms []string
	for _, m := range excludeTermRe.FindAllStringSubmatch(q, -1) {
		if term := normalizeTerm(m[2]); term != "" {
			excludeTerms = append(excludeTerms, term)
		}
	}

	return ParsedQuery{
		Diet:             diet,
		CalorieBucket:    bucket,
		IncludeTerms:     []string{},
		ExcludeTerms:     excludeTerms,
		WantsHighCalorie: wantsHighCalorie,
	}
}

// extractJSONObject pulls the first JSON object out of oracle output.
// Strategy: fenced code block first, then a brace-balanced streaming decode
// from each "{", then a naive first-"{"/last-"}" slice.
func extractJSONObject(text string) map[string]any {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return nil
	}

	if m := fencedJSONRe.FindStringSubmatch(cleaned); m != nil {
		cleaned = strings.TrimSpace(m[1])
	}

	for i := 0; i < len(cleaned); i++ {
		if cleaned[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(cleaned[i:]))
		var obj map[string]any
		if err := dec.Decode(&obj); err == nil && obj != nil {
			return obj
		}
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end <= start {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &obj); err != nil {
		return nil
	}
	return obj
}

func coerceDiet(value any) DietType {
	if value == nil {
		return DietNone
	}
	s := normalizeTerm(strings.ReplaceAll(fmt.Sprintf("%v", value), "-", " "))
	switch s {
	case "":
		return DietNone
	case "veg", "vegetarian", "vegan":
		return DietVeg
	case "non veg", "nonveg", "non vegetarian", "nonvegetarian", "non_veg":
		return DietNonVeg
	}
	return DietNone
}

func coerceCalorieBucket(value any) CalorieBucket {
	if value == nil {
		return BucketNone
	}
	s := normalizeTerm(strings.ReplaceAll(fmt.Sprintf("%v", value), "-", " "))
	switch {
	case s == "":
		return BucketNone
	case strings.HasPrefix(s, "low"):
		return BucketLow
	case strings.HasPrefix(s, "med") || strings.HasPrefix(s, "moderate"):
		return BucketMedium
	case strings.HasPrefix(s, "high"):
		return BucketHigh
	case s == "400 700" || s == "400 to 700" || s == "mid":
		return BucketMedium
	}
	return BucketNone
}

func coerceBool(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	}
	switch normalizeTerm(fmt.Sprintf("%v", value)) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}

const maxSanitizedTerms = 12

// sanitizeTerms coerces an untyped oracle field into a bounded list of
// normalized terms. Anything unusable is dropped, never an error.
func sanitizeTerms(value any) []string {
	if value == nil {
		return []string{}
	}

	var items []string
	switch v := value.(type) {
	case []any:
		for _, x := range v {
			items = append(items, fmt.Sprintf("%v", x))
		}
	case []string:
		items = v
	case string:
		items = []string{v}
	default:
		items = []string{fmt.Sprintf("%v", v)}
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, raw := range items {
		t := normalizeTerm(raw)
		if len(t) > 64 {
			t = strings.TrimSpace(t[:64])
		}
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) >= maxSanitizedTerms {
			break
		}
	}
	return out
}
