package service

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"roomie/internal/model"
)

//go:embed schools.yaml
var defaultSchoolsYAML []byte

const (
	maxSchoolSuggestions = 20
	zipPromptDisplay     = "Enter a 5-digit ZIP code to search by location"

	SuggestionSchool = "school"
	SuggestionZIP    = "zip"
)

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// School is one entry of the campus directory
type School struct {
	Name  string `yaml:"name"`
	City  string `yaml:"city"`
	State string `yaml:"state"`
}

// IsZIPCode reports whether s is exactly five ASCII digits
func IsZIPCode(s string) bool {
	return zipPattern.MatchString(s)
}

// Suggester backs the home page search box: schools by name, then ZIP codes.
type Suggester struct {
	schools []School
}

// NewSuggester creates a suggester over schools. A nil slice loads the
// embedded directory.
func NewSuggester(schools []School) (*Suggester, error) {
	if schools == nil {
		if err := yaml.Unmarshal(defaultSchoolsYAML, &schools); err != nil {
			return nil, fmt.Errorf("parse schools: %w", err)
		}
	}
	return &Suggester{schools: schools}, nil
}

// Suggest returns dropdown entries for query. Queries shorter than two
// characters get nothing; without a school match a five digit query becomes
// a ZIP search and anything of three or more characters gets the ZIP prompt.
func (s *Suggester) Suggest(query string) []model.SearchSuggestion {
	query = strings.TrimSpace(query)
	results := []model.SearchSuggestion{}
	if len(query) < 2 {
		return results
	}

	lowered := strings.ToLower(query)
	for _, school := range s.schools {
		if !strings.Contains(strings.ToLower(school.Name), lowered) {
			continue
		}
		results = append(results, model.SearchSuggestion{
			Type:    SuggestionSchool,
			Value:   fmt.Sprintf("%s, %s, %s", school.Name, school.City, school.State),
			Display: fmt.Sprintf("%s • %s, %s", school.Name, school.City, school.State),
		})
		if len(results) == maxSchoolSuggestions {
			break
		}
	}
	if len(results) > 0 {
		return results
	}

	switch {
	case IsZIPCode(query):
		results = append(results, model.SearchSuggestion{
			Type:    SuggestionZIP,
			Value:   query,
			Display: "Search by ZIP: " + query,
		})
	case len(query) >= 3:
		results = append(results, model.SearchSuggestion{
			Type:    SuggestionZIP,
			Value:   "",
			Display: zipPromptDisplay,
		})
	}
	return results
}
