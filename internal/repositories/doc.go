// Package repositories implements SQLite persistence for edits, memberships and the catalog mirror.
//
// Key Implementations:
//   - [EditRepository] : Edit CRUD with soft deletes, slug lookups and unique slug generation
//   - [MembershipRepository] : Per-product memberships; inserts that hit the (edit, product) unique index are no-ops
//   - [CatalogRepository] : Read-only candidate scan over the products mirror, plus an import path to fill it
//
// Sequence numbers provide stable, human-readable ordering (e.g., edit #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
