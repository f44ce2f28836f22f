package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/curator/internal/models"
	"github.com/desertthunder/curator/internal/services"
	"github.com/desertthunder/curator/internal/shared"
)

// EditDetail is an edit with its memberships and per-status counts.
type EditDetail struct {
	Edit        *models.Edit
	Memberships []*models.Membership
	Stats       models.EditStats
}

// List returns live edits, optionally filtered by status.
func (e *EditEngine) List(status string) ([]*models.Edit, error) {
	if status != "" && !models.EditStatus(status).Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, status)
	}
	return e.edits.List(map[string]any{"status": status})
}

// CreateEdit creates a manual edit in the suggested state. The slug is derived from the name and
// suffixed with -2, -3, ... when taken.
func (e *EditEngine) CreateEdit(name, description string, rules models.Rules, autoRegenerate bool) (*models.Edit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}

	base := shared.Slugify(name)
	if base == "" {
		return nil, fmt.Errorf("%w: name %q has no usable characters", shared.ErrValidation, name)
	}

	slug, err := e.edits.UniqueSlug(base)
	if err != nil {
		return nil, err
	}

	edit := models.NewEdit(0, name, slug, strings.TrimSpace(description), models.SourceManual, rules)
	edit.SetAutoRegenerate(autoRegenerate)
	if err := e.edits.Create(edit); err != nil {
		return nil, err
	}

	e.logger.Info("edit created", "edit", slug)
	return edit, nil
}

// UpdateRules replaces the edit's rules. A nil autoRegenerate leaves the flag unchanged.
// Existing memberships are not re-scored.
func (e *EditEngine) UpdateRules(editID string, rules models.Rules, autoRegenerate *bool) (*models.Edit, error) {
	edit, err := e.getEdit(editID)
	if err != nil {
		return nil, err
	}

	edit.SetRules(rules)
	if autoRegenerate != nil {
		edit.SetAutoRegenerate(*autoRegenerate)
	}
	if err := e.edits.Update(edit); err != nil {
		return nil, err
	}
	return edit, nil
}

// DeleteEdit soft-deletes the edit and drops its memberships. The storefront term is left in place.
func (e *EditEngine) DeleteEdit(editID string) error {
	if err := e.edits.Delete(editID); err != nil {
		return err
	}
	e.logger.Info("edit deleted", "id", editID)
	return nil
}

// Detail loads an edit with all of its memberships.
func (e *EditEngine) Detail(editID string) (*EditDetail, error) {
	edit, err := e.getEdit(editID)
	if err != nil {
		return nil, err
	}

	memberships, err := e.memberships.ListByEdit(edit.ID(), "")
	if err != nil {
		return nil, err
	}

	var stats models.EditStats
	for _, m := range memberships {
		stats.Add(m.Status(), 1)
	}

	return &EditDetail{Edit: edit, Memberships: memberships, Stats: stats}, nil
}

// SEO reads the SEO copy of the edit's storefront term.
func (e *EditEngine) SEO(ctx context.Context, editID string) (*services.TermMeta, error) {
	termID, err := e.requireTerm(editID)
	if err != nil {
		return nil, err
	}
	return e.taxonomy.GetTaxonomyMeta(ctx, termID)
}

// UpdateSEO writes the SEO copy of the edit's storefront term.
func (e *EditEngine) UpdateSEO(ctx context.Context, editID string, meta services.TermMeta) error {
	termID, err := e.requireTerm(editID)
	if err != nil {
		return err
	}
	return e.taxonomy.SetTaxonomyMeta(ctx, termID, meta)
}

func (e *EditEngine) requireTerm(editID string) (int64, error) {
	edit, err := e.getEdit(editID)
	if err != nil {
		return 0, err
	}
	if !edit.HasTerm() {
		return 0, fmt.Errorf("%w: edit %s has no storefront term", shared.ErrPreconditionFailed, edit.Slug())
	}
	return *edit.TermID(), nil
}
