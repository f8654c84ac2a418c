package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// CategoryAll is the catch-all selector meaning "no category filter".
const CategoryAll = "todos"

// Category is one entry of the category vocabulary.
type Category struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

//go:embed categories.yaml
var categoriesYAML []byte

// Categories is the fixed vocabulary offered in the category control.
var Categories = mustParseCategories(categoriesYAML)

// IsCatchAll reports whether sel disables category filtering.
func IsCatchAll(sel string) bool {
	switch strings.TrimSpace(sel) {
	case "", CategoryAll, "all":
		return true
	default:
		return false
	}
}

// CategoryLabel returns the display label for value, or value itself when unknown.
func CategoryLabel(value string) string {
	for _, c := range Categories {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

// ParseCategories decodes a YAML category list. The first entry must be the catch-all.
func ParseCategories(raw []byte) ([]Category, error) {
	var out []Category
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("catalog: parse categories: %w", err)
	}
	if len(out) == 0 || out[0].Value != CategoryAll {
		return nil, fmt.Errorf("catalog: category vocabulary must start with %q", CategoryAll)
	}
	for i, c := range out {
		if strings.TrimSpace(c.Value) == "" {
			return nil, fmt.Errorf("catalog: category %d has no value", i)
		}
	}
	return out, nil
}

func mustParseCategories(raw []byte) []Category {
	out, err := ParseCategories(raw)
	if err != nil {
		panic(err)
	}
	return out
}
