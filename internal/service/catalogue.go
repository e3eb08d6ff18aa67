package service

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed replies.yaml
var defaultCatalogueYAML []byte

// Category is a named group of trigger substrings and candidate replies
type Category struct {
	Name     string   `yaml:"name"`
	Triggers []string `yaml:"triggers"`
	Replies  []string `yaml:"replies"`
}

// Catalogue is the full reply set the selector draws from. It is immutable
// once loaded.
type Catalogue struct {
	DefaultReply string     `yaml:"default_reply"`
	Apology      string     `yaml:"apology"`
	FollowUps    []string   `yaml:"follow_ups"`
	Categories   []Category `yaml:"categories"`
}

// LoadCatalogue reads a catalogue from path, or the embedded default when
// path is empty.
func LoadCatalogue(path string) (*Catalogue, error) {
	data := defaultCatalogueYAML
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalogue %s: %w", path, err)
		}
		data = raw
	}
	return ParseCatalogue(data)
}

// DefaultCatalogue returns the embedded catalogue. It panics only if the
// embedded file is broken.
func DefaultCatalogue() *Catalogue {
	cat, err := ParseCatalogue(defaultCatalogueYAML)
	if err != nil {
		panic(err)
	}
	return cat
}

// ParseCatalogue decodes and validates a YAML catalogue. Triggers are
// lower-cased so they can be compared against lower-cased messages.
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var cat Catalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}

	if strings.TrimSpace(cat.DefaultReply) == "" {
		return nil, errors.New("catalogue: default_reply is required")
	}
	if strings.TrimSpace(cat.Apology) == "" {
		return nil, errors.New("catalogue: apology is required")
	}

	seen := make(map[string]bool, len(cat.Categories))
	for i := range cat.Categories {
		c := &cat.Categories[i]
		if c.Name == "" {
			return nil, fmt.Errorf("catalogue: category %d has no name", i)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("catalogue: duplicate category %q", c.Name)
		}
		seen[c.Name] = true
		if len(c.Replies) == 0 {
			return nil, fmt.Errorf("catalogue: category %q has no replies", c.Name)
		}

		triggers := make([]string, 0, len(c.Triggers))
		for _, t := range c.Triggers {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				triggers = append(triggers, t)
			}
		}
		if len(triggers) == 0 {
			return nil, fmt.Errorf("catalogue: category %q has no triggers", c.Name)
		}
		c.Triggers = triggers
	}

	return &cat, nil
}

// Category looks up a category by name
func (c *Catalogue) Category(name string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}
