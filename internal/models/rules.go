package models

import (
	"encoding/json"
	"strings"
)

// Rules is the matcher rule set for an Edit.
//
// Every list is non-nil after construction or decoding.
type Rules struct {
	Categories        []string `json:"categories"`
	Keywords          []string `json:"keywords"`
	Colors            []string `json:"colors"`
	ExcludeCategories []string `json:"exclude_categories"`
}

// NewRules builds a normalized rule set: terms are trimmed, blanks dropped, and nil lists replaced with empty ones.
func NewRules(categories, keywords, colors, exclude []string) Rules {
	return Rules{
		Categories:        cleanTerms(categories),
		Keywords:          cleanTerms(keywords),
		Colors:            cleanTerms(colors),
		ExcludeCategories: cleanTerms(exclude),
	}
}

// IsEmpty reports whether the rule set has no positive terms. Exclusions alone can never produce a match.
func (r Rules) IsEmpty() bool {
	return len(r.Categories) == 0 && len(r.Keywords) == 0 && len(r.Colors) == 0
}

// Normalize returns a copy with the same guarantees as [NewRules].
func (r Rules) Normalize() Rules {
	return NewRules(r.Categories, r.Keywords, r.Colors, r.ExcludeCategories)
}

// MarshalJSON always emits arrays, never null.
func (r Rules) MarshalJSON() ([]byte, error) {
	type plain Rules
	return json.Marshal(plain(r.Normalize()))
}

// UnmarshalJSON decodes leniently: a field that isn't an array of strings becomes an empty list instead of an error.
//
// Only a payload that isn't a JSON object at all is rejected.
func (r *Rules) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		if strings.TrimSpace(string(data)) == "null" {
			*r = NewRules(nil, nil, nil, nil)
			return nil
		}
		return err
	}

	*r = NewRules(
		termList(raw["categories"]),
		termList(raw["keywords"]),
		termList(raw["colors"]),
		termList(raw["exclude_categories"]),
	)
	return nil
}

// ParseRules decodes stored rule text, treating unreadable input as an empty rule set.
func ParseRules(data string) Rules {
	var r Rules
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return NewRules(nil, nil, nil, nil)
	}
	return r
}

// String encodes the rules for storage.
func (r Rules) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return `{"categories":[],"keywords":[],"colors":[],"exclude_categories":[]}`
	}
	return string(b)
}

// termList decodes a single rule field. Non-arrays and arrays with non-string members yield nil.
func termList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var terms []string
	if err := json.Unmarshal(raw, &terms); err != nil {
		return nil
	}
	return terms
}

func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
