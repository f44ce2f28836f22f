package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/curator/internal/models"
	"github.com/desertthunder/curator/internal/services"
	"github.com/desertthunder/curator/internal/shared"
)

const defaultMaxErrors = 5

// EditStore persists edits.
type EditStore interface {
	Create(edit *models.Edit) error
	Get(id string) (*models.Edit, error)
	GetBySlug(slug string) (*models.Edit, error)
	SlugExists(slug string) (bool, error)
	UniqueSlug(base string) (string, error)
	Update(edit *models.Edit) error
	Delete(id string) error
	List(criteria map[string]any) ([]*models.Edit, error)
}

// MembershipStore persists memberships. InsertIfAbsent must treat an existing (edit, product) pair as a no-op.
type MembershipStore interface {
	InsertIfAbsent(m *models.Membership) (bool, error)
	Get(editID string, productID int64) (*models.Membership, error)
	ListByEdit(editID string, status models.MembershipStatus) ([]*models.Membership, error)
	ListEligibleForSync(editID string) ([]*models.Membership, error)
	SaveStatus(m *models.Membership, from models.MembershipStatus) error
	Stats(editID string) (models.EditStats, error)
}

// Summary counts the outcome of a per-item operation.
//
// Added is the number of items that changed: rows inserted, memberships moved, or products synced.
type Summary struct {
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Total   int      `json:"total"`
	Errors  []string `json:"errors,omitempty"`
}

func (s *Summary) recordError(max int, format string, args ...any) {
	s.Failed++
	if len(s.Errors) < max {
		s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
	}
}

// EditEngine runs every operation on edits and their memberships.
type EditEngine struct {
	edits       EditStore
	memberships MembershipStore
	taxonomy    services.Taxonomy
	matcher     *Matcher
	limiter     *rate.Limiter
	maxErrors   int
	logger      *log.Logger
	now         func() time.Time
}

// NewEditEngine creates an EditEngine. External calls made during sync are paced by cfg.RateLimit per second;
// zero or less disables pacing.
func NewEditEngine(edits EditStore, memberships MembershipStore, taxonomy services.Taxonomy, matcher *Matcher, cfg shared.SyncConfig, logger *log.Logger) *EditEngine {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	maxErrors := cfg.MaxErrors
	if maxErrors <= 0 {
		maxErrors = defaultMaxErrors
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &EditEngine{
		edits:       edits,
		memberships: memberships,
		taxonomy:    taxonomy,
		matcher:     matcher,
		limiter:     rate.NewLimiter(limit, 1),
		maxErrors:   maxErrors,
		logger:      logger,
		now:         time.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *EditEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *EditEngine) getEdit(id string) (*models.Edit, error) {
	edit, err := e.edits.Get(id)
	if err != nil {
		if errors.Is(err, shared.ErrEditNotFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrEditNotFound, id)
		}
		return nil, err
	}
	return edit, nil
}

// Preview runs the matcher against the edit's current rules without writing anything.
func (e *EditEngine) Preview(ctx context.Context, editID string, limit int) ([]Candidate, error) {
	edit, err := e.getEdit(editID)
	if err != nil {
		return nil, err
	}
	return e.matcher.Match(ctx, edit.Rules(), limit), nil
}

// Regenerate adds a pending membership for every matching product the edit doesn't already hold.
//
// Existing memberships are never modified or removed, whatever their status or score.
func (e *EditEngine) Regenerate(ctx context.Context, editID string, progress chan<- ProgressUpdate) (*Summary, error) {
	edit, err := e.getEdit(editID)
	if err != nil {
		return nil, err
	}

	logger := shared.WithLogger(e.logger, "edit", edit.Slug())
	e.sendProgress(progress, scanCatalogUpdate(edit))

	candidates := e.matcher.Match(ctx, edit.Rules(), 0)
	result := &Summary{Total: len(candidates)}

	for i, c := range candidates {
		m := models.NewMembership(edit.ID(), c.Product.ID, c.Score, c.Reasons, models.MembershipPending, models.MembershipFromMatcher)
		inserted, err := e.memberships.InsertIfAbsent(m)
		if err != nil {
			logger.Warn("membership insert failed", "product", c.Product.ID, "error", err)
			result.recordError(e.maxErrors, "product %d: %v", c.Product.ID, err)
			continue
		}
		if inserted {
			result.Added++
		} else {
			result.Skipped++
		}
		e.sendProgress(progress, insertUpdate(i+1, len(candidates), c, inserted))
	}

	now := e.now()
	edit.SetLastRegeneratedAt(&now)
	if err := e.edits.Update(edit); err != nil {
		return result, fmt.Errorf("failed to stamp regeneration: %w", err)
	}

	logger.Info("regenerated", "added", result.Added, "skipped", result.Skipped, "failed", result.Failed, "total", result.Total)
	return result, nil
}

// CreateTerm links the edit to a storefront term, creating the term when no term with the edit's slug exists.
//
// Calling it again on an edit that already has a term returns that term without contacting the storefront.
func (e *EditEngine) CreateTerm(ctx context.Context, editID string, progress chan<- ProgressUpdate) (int64, error) {
	edit, err := e.getEdit(editID)
	if err != nil {
		return 0, err
	}
	if edit.HasTerm() {
		return *edit.TermID(), nil
	}

	existing, err := e.taxonomy.FindTermBySlug(ctx, edit.Slug())
	if err != nil {
		return 0, fmt.Errorf("failed to look up term: %w", err)
	}

	var termID int64
	if existing != nil {
		termID = existing.ID
	} else {
		termID, err = e.taxonomy.CreateTerm(ctx, edit.Name(), edit.Slug())
		if err != nil {
			return 0, fmt.Errorf("failed to create term: %w", err)
		}
	}

	if err := edit.MarkCreated(termID); err != nil {
		e.logger.Warn("rejected transition", "edit", edit.Slug(), "error", err)
		return 0, err
	}
	if err := e.edits.Update(edit); err != nil {
		return 0, fmt.Errorf("failed to save term: %w", err)
	}

	e.sendProgress(progress, createTermUpdate(edit, termID, existing != nil))
	e.logger.Info("linked term", "edit", edit.Slug(), "term", termID, "existing", existing != nil)
	return termID, nil
}

// Sync assigns every unsynced approved or pending membership to the edit's term, highest score first.
//
// A failed assignment leaves its membership untouched and the loop continues. Assignments run on a context
// detached from the caller's cancellation. When at least one product synced, the edit becomes active.
func (e *EditEngine) Sync(ctx context.Context, editID string, progress chan<- ProgressUpdate) (*Summary, error) {
	edit, err := e.getEdit(editID)
	if err != nil {
		return nil, err
	}
	if !edit.HasTerm() {
		return nil, fmt.Errorf("%w: edit %s has no storefront term", shared.ErrPreconditionFailed, edit.Slug())
	}
	termID := *edit.TermID()

	items, err := e.memberships.ListEligibleForSync(edit.ID())
	if err != nil {
		return nil, err
	}

	logger := shared.WithLogger(e.logger, "edit", edit.Slug(), "term", termID)
	result := &Summary{Total: len(items)}
	e.sendProgress(progress, syncStartUpdate(len(items), termID))

	callCtx := context.WithoutCancel(ctx)
	for i, m := range items {
		if err := e.limiter.Wait(callCtx); err != nil {
			result.recordError(e.maxErrors, "product %d: %v", m.ProductID(), err)
			continue
		}

		ok, err := e.taxonomy.AssignProductToTerm(callCtx, m.ProductID(), termID)
		if err == nil && !ok {
			err = fmt.Errorf("%w: assignment declined", shared.ErrAPIRequest)
		}
		if err != nil {
			logger.Warn("assignment failed", "product", m.ProductID(), "error", err)
			result.recordError(e.maxErrors, "product %d: %v", m.ProductID(), err)
			e.sendProgress(progress, syncItemUpdate(i+1, len(items), m.ProductID(), err))
			continue
		}

		from := m.Status()
		if err := m.MarkSynced(e.now()); err != nil {
			logger.Warn("rejected transition", "product", m.ProductID(), "error", err)
			result.recordError(e.maxErrors, "product %d: %v", m.ProductID(), err)
			continue
		}
		if err := e.memberships.SaveStatus(m, from); err != nil {
			logger.Error("assigned but not recorded", "product", m.ProductID(), "error", err)
			result.recordError(e.maxErrors, "product %d: %v", m.ProductID(), err)
			continue
		}

		result.Added++
		e.sendProgress(progress, syncItemUpdate(i+1, len(items), m.ProductID(), nil))
	}

	if result.Added > 0 {
		if err := edit.MarkActive(e.now()); err != nil {
			logger.Warn("rejected transition", "error", err)
		} else if err := e.edits.Update(edit); err != nil {
			return result, fmt.Errorf("failed to activate edit: %w", err)
		}
	}

	logger.Info("synced", "added", result.Added, "failed", result.Failed, "total", result.Total)
	return result, nil
}
