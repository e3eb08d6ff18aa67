package service

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"roomie/internal/model"
	"roomie/internal/utils"
)

// Words directly before a dollar amount that make it a lower bound
var minRentMarkers = []string{"over", "above", "from", "at least", "min", "minimum", "more than"}

var queryStopwords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "with": true, "for": true,
	"near": true, "in": true, "at": true, "to": true, "of": true, "or": true,
	"under": true, "below": true, "over": true, "above": true, "less": true,
	"than": true, "more": true, "max": true, "min": true, "from": true,
	"room": true, "rooms": true, "place": true, "looking": true, "want": true,
	"need": true, "month": true, "mo": true, "per": true, "within": true,
	"miles": true, "mile": true, "mi": true, "campus": true, "speaks": true,
	"speaking": true, "friendly": true, "allowed": true, "ok": true,
}

var digitsPattern = regexp.MustCompile(`^\$?\d+(?:\.\d+)?(?:mi)?$`)

// IntentParser turns a free-text listings query ("quiet furnished studio
// under $1400 within 1 mile") into filters, reusing the extractor's rules.
type IntentParser struct {
	logger *slog.Logger
}

// NewIntentParser creates a new intent parser
func NewIntentParser(logger *slog.Logger) *IntentParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntentParser{logger: logger}
}

// Parse extracts filters and leftover keywords from query. An empty query
// yields empty filters and zero confidence.
func (p *IntentParser) Parse(query string) *model.QueryIntent {
	query = strings.TrimSpace(query)
	result := &model.QueryIntent{
		Filters:  &model.ListingFilters{},
		Keywords: []string{},
	}
	if query == "" {
		return result
	}

	lowered := strings.ToLower(query)
	f := result.Filters
	signals := 0

	minRent, maxRent := parseRentBounds(query)
	if minRent != nil {
		f.MinRent = minRent
		signals++
	}
	if maxRent != nil {
		f.MaxRent = maxRent
		signals++
	}
	if v, ok := matchDistance(query); ok {
		f.MaxDistance = &v
		signals++
	}

	switch {
	case strings.Contains(lowered, "unfurnished"):
		f.IsFurnished = boolPtr(false)
		signals++
	case strings.Contains(lowered, "furnished"):
		f.IsFurnished = boolPtr(true)
		signals++
	}
	if containsAny(lowered, petKeywords) {
		f.AllowsPets = boolPtr(true)
		signals++
	}
	if tags := utils.MatchVibeTags(lowered); len(tags) > 0 {
		f.VibeTags = tags
		signals++
	}
	if langs := utils.MatchLanguages(lowered); len(langs) > 0 {
		f.Languages = langs
		signals++
	}

	result.Keywords = queryKeywords(lowered)
	result.Confidence = confidence(signals, len(result.Keywords))

	p.logger.Debug("query_parsed",
		"query", query,
		"signals", signals,
		"keywords", result.Keywords,
		"confidence", result.Confidence,
	)
	return result
}

// parseRentBounds classifies each dollar amount as a lower bound when a
// min marker precedes it and as an upper bound otherwise. The first of each
// kind wins.
func parseRentBounds(query string) (minRent, maxRent *decimal.Decimal) {
	lowered := strings.ToLower(query)
	for _, m := range rentPattern.FindAllStringSubmatchIndex(query, -1) {
		v, err := decimal.NewFromString(query[m[2]:m[3]])
		if err != nil {
			continue
		}
		before := strings.TrimSpace(lowered[:m[0]])
		isMin := false
		for _, marker := range minRentMarkers {
			if strings.HasSuffix(before, marker) {
				isMin = true
				break
			}
		}
		if isMin && minRent == nil {
			minRent = &v
		} else if !isMin && maxRent == nil {
			maxRent = &v
		}
	}
	return minRent, maxRent
}

func queryKeywords(lowered string) []string {
	words := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '$' && r != '.'
	})
	keywords := []string{}
	seen := map[string]bool{}
	for _, w := range words {
		w = strings.Trim(w, ".")
		if len(w) < 3 || queryStopwords[w] || digitsPattern.MatchString(w) || seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
	}
	return keywords
}

func confidence(signals, keywords int) float64 {
	switch {
	case signals > 0:
		c := 0.3 + 0.15*float64(signals)
		if c > 0.95 {
			c = 0.95
		}
		return c
	case keywords > 0:
		return 0.1
	default:
		return 0
	}
}

func boolPtr(v bool) *bool {
	return &v
}
