package normalize

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var categoriesYAML []byte

// categoryRule maps a set of keywords to a category tag. Rules are
// evaluated in file order, first match wins, so more specific
// categories must come before broader ones.
type categoryRule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

type taxonomy struct {
	Rules []categoryRule `yaml:"rules"`
}

var categoryRules = mustLoadTaxonomy()

func mustLoadTaxonomy() []categoryRule {
	var t taxonomy
	if err := yaml.Unmarshal(categoriesYAML, &t); err != nil {
		panic("normalize: parse categories.yaml: " + err.Error())
	}
	return t.Rules
}

// Categorize infers a category tag by keyword matching over the given
// texts (business name, scraped category label, bio, search term).
// Returns "other" when no rule matches.
func Categorize(texts ...string) string {
	var b strings.Builder
	for _, t := range texts {
		b.WriteString(strings.ToLower(t))
		b.WriteByte(' ')
	}
	haystack := b.String()

	for _, rule := range categoryRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(haystack, kw) {
				return rule.Category
			}
		}
	}
	return "other"
}
