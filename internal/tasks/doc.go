// Package tasks runs the edit curation workflow with real-time progress reporting.
//
// # Matching
//
// [Matcher] scores in-stock catalog products against an edit's [models.Rules]:
//   - excluded categories drop the product outright
//   - +30 per category term found in any category tag
//   - +10 per keyword and +5 per color found in the title or description
//
// Matching is case-insensitive substring search. Scores are capped at 100 and zero scores are dropped.
// Results are ordered by score, ties keeping catalog order.
//
// # Core Operations
//
// [EditEngine] implements every operation on an edit:
//
//  1. [EditEngine.Regenerate] : Adds pending memberships for new matches
//     - Strictly additive: approved, rejected and synced memberships are never touched
//     - Relies on the storage unique index, so concurrent runs can't duplicate rows
//
//  2. [EditEngine.Approve], [EditEngine.ApproveAllPending], [EditEngine.Reject], [EditEngine.AddProducts]
//     - Apply the membership transition table; disallowed moves count as failed
//     - Approving or adding anything promotes a suggested edit to approved
//
//  3. [EditEngine.CreateTerm] : Links the edit to a storefront term, once
//
//  4. [EditEngine.Sync] : Assigns unsynced approved and pending memberships to the term
//     - Per-item failures are recorded and skipped
//     - Calls are paced by a [rate.Limiter] and detached from caller cancellation
//     - Any success activates the edit
//
//  5. [EditEngine.SyncMany], [EditEngine.RegenerateMany], [EditEngine.RegenerateAuto] : Sequential batches
//
// # Progress Reporting
//
// All long-running operations accept an optional channel for progress updates.
// Updates use select with default to prevent blocking.
//
// # Seeding
//
// [Seeder] inserts the built-in [Suggestions] as suggested edits, skipping slugs that already exist.
package tasks
