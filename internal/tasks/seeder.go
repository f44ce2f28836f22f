package tasks

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/curator/internal/models"
	"github.com/desertthunder/curator/internal/shared"
)

// Suggestion is a starter edit definition.
type Suggestion struct {
	Name        string
	Description string
	Source      models.EditSource
	Rules       models.Rules
}

// Suggestions is the built-in library the [Seeder] draws from.
var Suggestions = []Suggestion{
	{
		Name:        "Date Night",
		Description: "Evening pieces for dinner out.",
		Source:      models.SourceOccasion,
		Rules:       models.NewRules([]string{"dresses", "tops"}, []string{"silk", "satin", "evening"}, []string{"black", "red"}, []string{"kids"}),
	},
	{
		Name:        "Wedding Guest",
		Description: "Dressy looks for ceremonies and receptions.",
		Source:      models.SourceOccasion,
		Rules:       models.NewRules([]string{"dresses", "jumpsuits"}, []string{"midi", "maxi", "floral"}, []string{"blush", "sage", "blue"}, []string{"bridal"}),
	},
	{
		Name:        "Gifts for Her",
		Description: "Easy wins for birthdays and holidays.",
		Source:      models.SourceOccasion,
		Rules:       models.NewRules([]string{"accessories", "jewelry"}, []string{"gift", "necklace", "scarf"}, nil, nil),
	},
	{
		Name:        "Summer Linen",
		Description: "Breathable layers for hot days.",
		Source:      models.SourceSeasonal,
		Rules:       models.NewRules([]string{"shirts", "trousers", "dresses"}, []string{"linen", "cotton"}, []string{"white", "sand"}, []string{"outerwear"}),
	},
	{
		Name:        "Autumn Layers",
		Description: "Knits and jackets for cooler weather.",
		Source:      models.SourceSeasonal,
		Rules:       models.NewRules([]string{"knitwear", "outerwear"}, []string{"wool", "cardigan", "jacket"}, []string{"camel", "brown", "olive"}, nil),
	},
	{
		Name:        "Holiday Party",
		Description: "Sequins, velvet and statement pieces.",
		Source:      models.SourceSeasonal,
		Rules:       models.NewRules([]string{"dresses", "skirts"}, []string{"velvet", "sequin", "party"}, []string{"gold", "silver", "green"}, nil),
	},
	{
		Name:        "Workwear Edit",
		Description: "Tailoring for the office.",
		Source:      models.SourceCategory,
		Rules:       models.NewRules([]string{"blazers", "trousers", "shirts"}, []string{"tailored", "pleated"}, []string{"navy", "grey"}, []string{"sale"}),
	},
	{
		Name:        "Denim Shop",
		Description: "Every cut of denim in one place.",
		Source:      models.SourceCategory,
		Rules:       models.NewRules([]string{"denim", "jeans"}, []string{"denim"}, []string{"indigo"}, nil),
	},
}

// Seeder inserts starter edits from a suggestion library.
type Seeder struct {
	edits       EditStore
	suggestions []Suggestion
	logger      *log.Logger
}

// NewSeeder creates a Seeder over the built-in [Suggestions].
func NewSeeder(edits EditStore, logger *log.Logger) *Seeder {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Seeder{edits: edits, suggestions: Suggestions, logger: logger}
}

// WithSuggestions replaces the suggestion library.
func (s *Seeder) WithSuggestions(suggestions []Suggestion) *Seeder {
	s.suggestions = suggestions
	return s
}

// Seed inserts each suggestion as a suggested edit, skipping any whose slug is already taken.
func (s *Seeder) Seed() (*Summary, error) {
	result := &Summary{Total: len(s.suggestions)}

	for _, sg := range s.suggestions {
		slug := shared.Slugify(sg.Name)
		exists, err := s.edits.SlugExists(slug)
		if err != nil {
			return result, fmt.Errorf("failed to check slug %s: %w", slug, err)
		}
		if exists {
			result.Skipped++
			continue
		}

		edit := models.NewEdit(0, sg.Name, slug, sg.Description, sg.Source, sg.Rules)
		if err := s.edits.Create(edit); err != nil {
			s.logger.Warn("seed failed", "edit", slug, "error", err)
			result.recordError(defaultMaxErrors, "%s: %v", slug, err)
			continue
		}
		result.Added++
	}

	s.logger.Info("seeded suggestions", "added", result.Added, "skipped", result.Skipped, "total", result.Total)
	return result, nil
}
