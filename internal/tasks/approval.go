package tasks

import (
	"errors"
	"fmt"

	"github.com/desertthunder/curator/internal/models"
	"github.com/desertthunder/curator/internal/shared"
)

// ErrNoProducts is returned when a request names no products.
var ErrNoProducts = fmt.Errorf("%w: no product ids given", shared.ErrValidation)

// Approve moves the listed memberships to approved. The edit is promoted from suggested when anything moved.
func (e *EditEngine) Approve(editID string, productIDs []int64) (*Summary, error) {
	if len(productIDs) == 0 {
		return nil, ErrNoProducts
	}
	edit, err := e.getEdit(editID)
	if err != nil {
		return nil, err
	}

	result, err := e.transitionProducts(edit, productIDs, models.MembershipApproved)
	return e.promote(edit, result, err)
}

// ApproveAllPending approves every pending membership of the edit.
func (e *EditEngine) ApproveAllPending(editID string) (*Summary, error) {
	edit, err := e.getEdit(editID)
	if err != nil {
		return nil, err
	}

	pending, err := e.memberships.ListByEdit(edit.ID(), models.MembershipPending)
	if err != nil {
		return nil, err
	}

	result := &Summary{Total: len(pending)}
	var transitionErr error
	for _, m := range pending {
		if err := e.moveMembership(edit, m, models.MembershipApproved, result); err != nil && transitionErr == nil {
			transitionErr = err
		}
	}
	return e.promote(edit, result, settle(result, transitionErr))
}

// Reject moves the listed memberships to rejected. Rejected memberships stay stored, so later
// regenerations never bring them back.
func (e *EditEngine) Reject(editID string, productIDs []int64) (*Summary, error) {
	if len(productIDs) == 0 {
		return nil, ErrNoProducts
	}
	edit, err := e.getEdit(editID)
	if err != nil {
		return nil, err
	}

	return e.transitionProducts(edit, productIDs, models.MembershipRejected)
}

// AddProducts inserts manual memberships as approved with a full score.
// Products the edit already holds are left as they are.
func (e *EditEngine) AddProducts(editID string, productIDs []int64) (*Summary, error) {
	if len(productIDs) == 0 {
		return nil, ErrNoProducts
	}
	edit, err := e.getEdit(editID)
	if err != nil {
		return nil, err
	}

	result := &Summary{Total: len(productIDs)}
	for _, id := range productIDs {
		m := models.NewMembership(edit.ID(), id, 100, []string{"manual"}, models.MembershipApproved, models.MembershipFromManual)
		inserted, err := e.memberships.InsertIfAbsent(m)
		switch {
		case err != nil:
			e.logger.Warn("manual add failed", "edit", edit.Slug(), "product", id, "error", err)
			result.recordError(e.maxErrors, "product %d: %v", id, err)
		case inserted:
			result.Added++
		default:
			result.Skipped++
		}
	}

	return e.promote(edit, result, nil)
}

func (e *EditEngine) transitionProducts(edit *models.Edit, productIDs []int64, next models.MembershipStatus) (*Summary, error) {
	result := &Summary{Total: len(productIDs)}

	var transitionErr error
	for _, id := range productIDs {
		m, err := e.memberships.Get(edit.ID(), id)
		if err != nil {
			e.logger.Warn("membership lookup failed", "edit", edit.Slug(), "product", id, "error", err)
			result.recordError(e.maxErrors, "product %d: %v", id, err)
			continue
		}
		if err := e.moveMembership(edit, m, next, result); err != nil && transitionErr == nil {
			transitionErr = err
		}
	}

	return result, settle(result, transitionErr)
}

// moveMembership applies one transition and records the outcome. It returns the transition error, if any.
func (e *EditEngine) moveMembership(edit *models.Edit, m *models.Membership, next models.MembershipStatus, result *Summary) error {
	from := m.Status()
	if err := m.Transition(next); err != nil {
		e.logger.Warn("rejected transition", "edit", edit.Slug(), "product", m.ProductID(), "from", from, "to", next)
		result.recordError(e.maxErrors, "product %d: %v", m.ProductID(), err)
		return err
	}
	if err := e.memberships.SaveStatus(m, from); err != nil {
		e.logger.Warn("membership update failed", "edit", edit.Slug(), "product", m.ProductID(), "error", err)
		result.recordError(e.maxErrors, "product %d: %v", m.ProductID(), err)
		if errors.Is(err, models.ErrInvalidTransition) {
			return err
		}
		return nil
	}
	result.Added++
	return nil
}

// promote moves a suggested edit to approved once at least one membership was added or approved.
func (e *EditEngine) promote(edit *models.Edit, result *Summary, opErr error) (*Summary, error) {
	if result.Added > 0 && edit.PromoteToApproved() {
		if err := e.edits.Update(edit); err != nil {
			return result, fmt.Errorf("failed to promote edit: %w", err)
		}
		e.logger.Info("edit approved", "edit", edit.Slug())
	}
	return result, opErr
}

// settle reports a transition error only when nothing moved, so partial success still reads as success.
func settle(result *Summary, transitionErr error) error {
	if result.Added == 0 && transitionErr != nil {
		return fmt.Errorf("%w: no memberships changed", models.ErrInvalidTransition)
	}
	return nil
}
