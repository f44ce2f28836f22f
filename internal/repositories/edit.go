package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/curator/internal/models"
	"github.com/desertthunder/curator/internal/shared"
)

const editColumns = `id, sequence, name, slug, description, source, rules, status, auto_regenerate, term_id,
	last_regenerated_at, last_synced_at, created_at, updated_at, deleted_at`

// rowScanner is satisfied by both [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

// EditRepository implements models.Repository[*models.Edit].
type EditRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Edit] = (*EditRepository)(nil)

// NewEditRepository creates a new EditRepository with the given database connection
func NewEditRepository(db *sql.DB) *EditRepository {
	return &EditRepository{db: db}
}

// Create inserts a new edit with a generated ID and sequence
func (r *EditRepository) Create(edit *models.Edit) error {
	if err := edit.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	sequence, err := NextSequence(r.db, "edits")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	edit.SetID(shared.GenerateID())
	edit.SetSequence(sequence)

	query := `
		INSERT INTO edits (id, sequence, name, slug, description, source, rules, status, auto_regenerate, term_id,
			last_regenerated_at, last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		edit.ID(),
		sequence,
		edit.Name(),
		edit.Slug(),
		edit.Description(),
		string(edit.Source()),
		edit.Rules().String(),
		string(edit.Status()),
		edit.AutoRegenerate(),
		nullInt64(edit.TermID()),
		nullTime(edit.LastRegeneratedAt()),
		nullTime(edit.LastSyncedAt()),
		edit.CreatedAt(),
		edit.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert edit: %w", err)
	}

	return nil
}

// Get retrieves an edit by ID, excluding soft-deleted edits
func (r *EditRepository) Get(id string) (*models.Edit, error) {
	query := `SELECT ` + editColumns + ` FROM edits WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// GetBySlug retrieves a live edit by slug
func (r *EditRepository) GetBySlug(slug string) (*models.Edit, error) {
	query := `SELECT ` + editColumns + ` FROM edits WHERE slug = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, slug))
}

// SlugExists reports whether any edit, including soft-deleted ones, holds the slug.
func (r *EditRepository) SlugExists(slug string) (bool, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM edits WHERE slug = ?`, slug).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return n > 0, nil
}

// UniqueSlug returns base, or base suffixed with -2, -3, ... until it is free.
func (r *EditRepository) UniqueSlug(base string) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		exists, err := r.SlugExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// Update persists every mutable field of an edit
func (r *EditRepository) Update(edit *models.Edit) error {
	if err := edit.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	now := time.Now()
	edit.SetUpdatedAt(now)

	query := `
		UPDATE edits
		SET description = ?, rules = ?, status = ?, auto_regenerate = ?, term_id = ?,
			last_regenerated_at = ?, last_synced_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		edit.Description(),
		edit.Rules().String(),
		string(edit.Status()),
		edit.AutoRegenerate(),
		nullInt64(edit.TermID()),
		nullTime(edit.LastRegeneratedAt()),
		nullTime(edit.LastSyncedAt()),
		now,
		edit.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update edit: %w", err)
	}

	return requireRow(result, edit.ID())
}

// Delete soft-deletes an edit and removes its memberships in one transaction
func (r *EditRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE edits SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete edit: %w", err)
	}
	if err := requireRow(result, id); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM edit_memberships WHERE edit_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// List retrieves live edits matching the criteria.
//
// Supported keys: "status" (string or models.EditStatus) and "auto_regenerate" (bool).
func (r *EditRepository) List(criteria map[string]any) ([]*models.Edit, error) {
	query := `SELECT ` + editColumns + ` FROM edits WHERE deleted_at IS NULL`
	args := []any{}

	switch status := criteria["status"].(type) {
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	case models.EditStatus:
		query += " AND status = ?"
		args = append(args, string(status))
	}

	if auto, ok := criteria["auto_regenerate"].(bool); ok {
		query += " AND auto_regenerate = ?"
		args = append(args, auto)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edits: %w", err)
	}
	defer rows.Close()

	edits := []*models.Edit{}
	for rows.Next() {
		edit, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		edits = append(edits, edit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return edits, nil
}

func (r *EditRepository) scan(row rowScanner) (*models.Edit, error) {
	var (
		id, name, slug, description, source, rules, status string
		sequence                                           int
		autoRegenerate                                     bool
		termID                                             sql.NullInt64
		lastRegeneratedAt, lastSyncedAt, deletedAt         sql.NullTime
		createdAt, updatedAt                               time.Time
	)

	err := row.Scan(&id, &sequence, &name, &slug, &description, &source, &rules, &status, &autoRegenerate, &termID,
		&lastRegeneratedAt, &lastSyncedAt, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrEditNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan edit: %w", err)
	}

	edit := models.NewEdit(sequence, name, slug, description, models.EditSource(source), models.ParseRules(rules))
	edit.SetID(id)
	edit.SetAutoRegenerate(autoRegenerate)
	edit.SetCreatedAt(createdAt)
	edit.SetUpdatedAt(updatedAt)
	edit.SetLastRegeneratedAt(timePtr(lastRegeneratedAt))
	edit.SetLastSyncedAt(timePtr(lastSyncedAt))
	edit.SetDeletedAt(timePtr(deletedAt))

	var term *int64
	if termID.Valid {
		term = &termID.Int64
	}
	edit.Restore(models.EditStatus(status), term)

	return edit, nil
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrEditNotFound, id)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
