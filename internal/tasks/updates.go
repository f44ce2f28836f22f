package tasks

import (
	"fmt"

	"github.com/desertthunder/curator/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ScanCatalog Phase = iota
	InsertMemberships
	SyncMemberships
	CreateTerm
	Batch
)

func (p Phase) String() string {
	switch p {
	case ScanCatalog:
		return "scan_catalog"
	case InsertMemberships:
		return "insert_memberships"
	case SyncMemberships:
		return "sync_memberships"
	case CreateTerm:
		return "create_term"
	case Batch:
		return "batch"
	default:
		return ""
	}
}

func scanCatalogUpdate(edit *models.Edit) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanCatalog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Scanning catalog for %s...", edit.Name()),
	}
}

func insertUpdate(step, total int, c Candidate, inserted bool) ProgressUpdate {
	mark := "="
	if inserted {
		mark = "+"
	}
	return ProgressUpdate{
		Phase:   InsertMemberships,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s (%d)", step, total, mark, c.Product.Title, c.Score),
		Data:    c,
	}
}

func syncStartUpdate(total int, termID int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncMemberships,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Assigning %d products to term %d...", total, termID),
	}
}

func syncItemUpdate(step, total int, productID int64, err error) ProgressUpdate {
	if err != nil {
		return ProgressUpdate{
			Phase:   SyncMemberships,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ product %d: %v", step, total, productID, err),
		}
	}
	return ProgressUpdate{
		Phase:   SyncMemberships,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ product %d", step, total, productID),
	}
}

func createTermUpdate(edit *models.Edit, termID int64, existing bool) ProgressUpdate {
	verb := "Created"
	if existing {
		verb = "Linked existing"
	}
	return ProgressUpdate{
		Phase:   CreateTerm,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%s term %d for %s", verb, termID, edit.Slug()),
		Data:    termID,
	}
}

func batchUpdate(step, total int, editID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Batch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, editID),
	}
}
