package utils

import (
	"strings"
)

// VibeKeyword maps a mood word found in free text to its display tag
type VibeKeyword struct {
	Keyword string
	Tag     string
}

// VibeVocabulary is the ordered mood vocabulary. Its order fixes both the
// order of extracted tags and the dimensions of VibeVector.
var VibeVocabulary = []VibeKeyword{
	{"quiet", "Quiet"},
	{"social", "Social"},
	{"study", "Study-friendly"},
	{"party", "Party-friendly"},
	{"clean", "Clean"},
	{"relaxed", "Relaxed"},
	{"active", "Active"},
	{"creative", "Creative"},
	{"professional", "Professional"},
	{"outdoor", "Outdoorsy"},
}

// DefaultVibeTags is used when a message mentions no mood at all
var DefaultVibeTags = []string{"Quiet", "Study-friendly"}

// BaseLanguage is spoken at every listing
const BaseLanguage = "English"

// AdditionalLanguages are recognized on top of BaseLanguage, in output order
var AdditionalLanguages = []string{
	"Spanish", "French", "German", "Chinese", "Japanese",
	"Korean", "Arabic", "Russian", "Portuguese",
}

// MatchVibeTags returns the display tags whose keyword occurs in the
// lower-cased text, in vocabulary order.
func MatchVibeTags(lowered string) []string {
	var tags []string
	for _, v := range VibeVocabulary {
		if strings.Contains(lowered, v.Keyword) {
			tags = append(tags, v.Tag)
		}
	}
	return tags
}

// MatchLanguages returns the additional languages named in the lower-cased
// text, in vocabulary order.
func MatchLanguages(lowered string) []string {
	var langs []string
	for _, l := range AdditionalLanguages {
		if strings.Contains(lowered, strings.ToLower(l)) {
			langs = append(langs, l)
		}
	}
	return langs
}

var vibeAliases = map[string]string{
	"calm":           "Quiet",
	"peaceful":       "Quiet",
	"studious":       "Study-friendly",
	"study friendly": "Study-friendly",
	"partying":       "Party-friendly",
	"party friendly": "Party-friendly",
	"tidy":           "Clean",
	"neat":           "Clean",
	"chill":          "Relaxed",
	"laid back":      "Relaxed",
	"sporty":         "Active",
	"artsy":          "Creative",
	"outdoors":       "Outdoorsy",
}

// NormalizeVibeTag maps user supplied tag spellings ("study", "tidy",
// "Study-Friendly") to the canonical display tag. Unknown tags come back
// title-cased with ok=false.
func NormalizeVibeTag(tag string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(tag))
	if lower == "" {
		return "", false
	}
	for _, v := range VibeVocabulary {
		if lower == v.Keyword || lower == strings.ToLower(v.Tag) {
			return v.Tag, true
		}
	}
	if canonical, ok := vibeAliases[strings.ReplaceAll(lower, "-", " ")]; ok {
		return canonical, true
	}
	return titleCase(lower), false
}

// NormalizeLanguage maps a language name to its canonical spelling
func NormalizeLanguage(lang string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(lang))
	if lower == strings.ToLower(BaseLanguage) {
		return BaseLanguage, true
	}
	for _, l := range AdditionalLanguages {
		if lower == strings.ToLower(l) {
			return l, true
		}
	}
	return titleCase(lower), false
}

// VibeVector one-hot encodes tags over VibeVocabulary. Unknown tags are
// ignored.
func VibeVector(tags []string) []float32 {
	vec := make([]float32, len(VibeVocabulary))
	for _, t := range tags {
		canonical, ok := NormalizeVibeTag(t)
		if !ok {
			continue
		}
		for i, v := range VibeVocabulary {
			if v.Tag == canonical {
				vec[i] = 1
			}
		}
	}
	return vec
}

// NormalizeTags canonicalizes and de-duplicates tags, keeping first
// occurrence order.
func NormalizeTags(tags []string, normalize func(string) (string, bool)) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		canonical, _ := normalize(t)
		if canonical == "" || seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
