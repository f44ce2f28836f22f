// Package models defines domain entities and persistence interfaces for the edit curation service.
//
// The package contains two categories of types:
//
// 1. Value objects and DTOs: plain structs that travel between layers
//   - [Rules] : Category/keyword/color/exclusion terms driving the matcher
//   - [CatalogProduct] : Read-only product snapshot from the storefront catalog
//   - [EditStats] : Membership counts per status
//   - [EditExport] : An edit with its memberships, as handed to formatters and the HTTP API
//
// 2. Persistent Entities: database-backed models with guarded lifecycles
//   - [Edit] : A named curated collection (suggested → approved → created → active)
//   - [Membership] : One product's candidacy in one Edit (pending → approved|rejected, terminal synced)
//
// Both entities carry an explicit transition table. Moves outside the table return [ErrInvalidTransition]
// and leave the entity untouched, so callers can't drift an Edit or Membership into a state the workflow never allows.
//
// The Repository[T] interface defines standard CRUD operations for database access.
package models
