package tasks

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/curator/internal/models"
	"github.com/desertthunder/curator/internal/shared"
)

const (
	categoryWeight = 30
	keywordWeight  = 10
	colorWeight    = 5

	defaultMaxScan = 500
	defaultLimit   = 100
)

// Catalog reads candidate products from the storefront.
type Catalog interface {
	FindCandidates(ctx context.Context, limit int) ([]models.CatalogProduct, error)
}

// Candidate is a scored product produced by the [Matcher].
type Candidate struct {
	Product models.CatalogProduct `json:"product"`
	Score   int                   `json:"score"`
	Reasons []string              `json:"reasons"`
}

// Matcher scores catalog products against a rule set.
type Matcher struct {
	catalog      Catalog
	maxScan      int
	defaultLimit int
	logger       *log.Logger
}

// NewMatcher creates a Matcher bounded by the matcher config section.
func NewMatcher(catalog Catalog, cfg shared.MatcherConfig, logger *log.Logger) *Matcher {
	maxScan := cfg.MaxScan
	if maxScan <= 0 {
		maxScan = defaultMaxScan
	}
	limit := cfg.DefaultLimit
	if limit <= 0 {
		limit = defaultLimit
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Matcher{catalog: catalog, maxScan: maxScan, defaultLimit: limit, logger: logger}
}

// Match returns up to limit candidates ordered by score, highest first.
//
// A limit of zero or less uses the configured default. Catalog failures are logged and produce no candidates.
func (m *Matcher) Match(ctx context.Context, rules models.Rules, limit int) []Candidate {
	if limit <= 0 {
		limit = m.defaultLimit
	}

	rules = rules.Normalize()
	if rules.IsEmpty() {
		return []Candidate{}
	}

	products, err := m.catalog.FindCandidates(ctx, m.maxScan)
	if err != nil {
		m.logger.Error("catalog read failed", "error", err)
		return []Candidate{}
	}

	candidates := make([]Candidate, 0, len(products))
	for _, p := range products {
		score, reasons, ok := Score(p, rules)
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{Product: p, Score: score, Reasons: reasons})
	}

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		return b.Score - a.Score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	m.logger.Debug("matched catalog", "scanned", len(products), "matched", len(candidates))
	return candidates
}

// Score rates a single product against the rules. ok is false when the product is excluded or scores zero.
//
// Excluded categories win over everything else. Each category term adds 30 when any tag contains it,
// each keyword adds 10 and each color adds 5 when the title or description contains it.
// All comparisons are case-insensitive substring matches. The total is capped at 100.
func Score(p models.CatalogProduct, rules models.Rules) (score int, reasons []string, ok bool) {
	tags := make([]string, len(p.CategoryTags))
	for i, tag := range p.CategoryTags {
		tags[i] = strings.ToLower(tag)
	}

	for _, term := range rules.ExcludeCategories {
		if anyContains(tags, strings.ToLower(term)) {
			return 0, nil, false
		}
	}

	reasons = []string{}
	for _, term := range rules.Categories {
		if anyContains(tags, strings.ToLower(term)) {
			score += categoryWeight
			reasons = append(reasons, "cat:"+term)
		}
	}

	text := p.SearchText()
	for _, term := range rules.Keywords {
		if strings.Contains(text, strings.ToLower(term)) {
			score += keywordWeight
			reasons = append(reasons, "kw:"+term)
		}
	}
	for _, term := range rules.Colors {
		if strings.Contains(text, strings.ToLower(term)) {
			score += colorWeight
			reasons = append(reasons, "col:"+term)
		}
	}

	if score == 0 {
		return 0, nil, false
	}
	return models.ClampScore(score), reasons, true
}

func anyContains(values []string, term string) bool {
	for _, v := range values {
		if strings.Contains(v, term) {
			return true
		}
	}
	return false
}
