package tasks

import (
	"context"
)

// BatchItem is the outcome of one edit within a batch.
type BatchItem struct {
	EditID  string   `json:"edit_id"`
	Summary *Summary `json:"summary,omitempty"`
	Error   string   `json:"error,omitempty"`
	Err     error    `json:"-"`
}

// BatchResult aggregates a batch run. Added, Failed and Total sum the per-edit summaries.
type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Errored   int         `json:"errored"`
	Added     int         `json:"added"`
	Failed    int         `json:"failed"`
	Total     int         `json:"total"`
}

type editOperation func(ctx context.Context, editID string, progress chan<- ProgressUpdate) (*Summary, error)

// SyncMany syncs each edit in order. An edit that fails (missing, no term) is reported in its item
// and the batch carries on.
func (e *EditEngine) SyncMany(ctx context.Context, editIDs []string, progress chan<- ProgressUpdate) *BatchResult {
	return e.runBatch(ctx, editIDs, progress, e.Sync)
}

// RegenerateMany regenerates each edit in order.
func (e *EditEngine) RegenerateMany(ctx context.Context, editIDs []string, progress chan<- ProgressUpdate) *BatchResult {
	return e.runBatch(ctx, editIDs, progress, e.Regenerate)
}

// RegenerateAuto regenerates every edit flagged for automatic regeneration.
func (e *EditEngine) RegenerateAuto(ctx context.Context, progress chan<- ProgressUpdate) (*BatchResult, error) {
	edits, err := e.edits.List(map[string]any{"auto_regenerate": true})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(edits))
	for i, edit := range edits {
		ids[i] = edit.ID()
	}
	return e.RegenerateMany(ctx, ids, progress), nil
}

func (e *EditEngine) runBatch(ctx context.Context, editIDs []string, progress chan<- ProgressUpdate, op editOperation) *BatchResult {
	result := &BatchResult{Items: make([]BatchItem, 0, len(editIDs))}

	for i, id := range editIDs {
		e.sendProgress(progress, batchUpdate(i+1, len(editIDs), id))

		summary, err := op(ctx, id, nil)
		item := BatchItem{EditID: id, Summary: summary}
		if err != nil {
			item.Error = err.Error()
			item.Err = err
			result.Errored++
			e.logger.Warn("batch item failed", "edit", id, "error", err)
		} else {
			result.Succeeded++
		}

		if summary != nil {
			result.Added += summary.Added
			result.Failed += summary.Failed
			result.Total += summary.Total
		}
		result.Items = append(result.Items, item)
	}

	return result
}
