// package services defines the external collaborators the curation engine talks to.
//
// Taxonomy (storefront term API over HTTP)
package services

import (
	"context"
)

// Taxonomy is the external term store that published Edits are mirrored into.
type Taxonomy interface {
	// CreateTerm creates a term and returns its id.
	CreateTerm(ctx context.Context, name, slug string) (int64, error)

	// FindTermBySlug returns the term with the given slug, or nil when none exists.
	FindTermBySlug(ctx context.Context, slug string) (*Term, error)

	// AssignProductToTerm attaches a product to a term.
	// A false result without an error means the service declined the assignment.
	AssignProductToTerm(ctx context.Context, productID, termID int64) (bool, error)

	// GetTaxonomyMeta reads a term's SEO fields.
	GetTaxonomyMeta(ctx context.Context, termID int64) (*TermMeta, error)

	// SetTaxonomyMeta writes a term's SEO fields.
	SetTaxonomyMeta(ctx context.Context, termID int64, meta TermMeta) error

	// Name returns the name of the service
	Name() string
}

// Term is a term as reported by the taxonomy service
type Term struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TermMeta holds the SEO copy attached to a term
type TermMeta struct {
	Description     string `json:"description"`
	MetaDescription string `json:"meta_description"`
}
