package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/curator/internal/models"
	"github.com/desertthunder/curator/internal/shared"
)

const membershipColumns = `id, edit_id, product_id, score, reasons, status, source, synced, synced_at, created_at, updated_at`

// MembershipRepository persists edit memberships.
//
// The (edit_id, product_id) pair is unique at the storage level; inserts that collide are no-ops.
type MembershipRepository struct {
	db *sql.DB
}

// NewMembershipRepository creates a new MembershipRepository with the given database connection
func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// InsertIfAbsent stores m unless a membership for the same edit and product already exists.
// It reports whether a row was written.
func (r *MembershipRepository) InsertIfAbsent(m *models.Membership) (bool, error) {
	if err := m.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	reasons, err := json.Marshal(m.Reasons())
	if err != nil {
		return false, fmt.Errorf("failed to encode reasons: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO edit_memberships (id, edit_id, product_id, score, reasons, status, source, synced, synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(edit_id, product_id) DO NOTHING
	`

	result, err := r.db.Exec(query,
		id,
		m.EditID(),
		m.ProductID(),
		m.Score(),
		string(reasons),
		string(m.Status()),
		string(m.Source()),
		m.Synced(),
		nullTime(m.SyncedAt()),
		m.CreatedAt(),
		m.UpdatedAt(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert membership: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	m.SetID(id)
	return true, nil
}

// Get retrieves the membership of a product in an edit
func (r *MembershipRepository) Get(editID string, productID int64) (*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM edit_memberships WHERE edit_id = ? AND product_id = ?`
	return r.scan(r.db.QueryRow(query, editID, productID))
}

// ListByEdit returns all memberships of an edit, highest score first.
// An empty status returns every status.
func (r *MembershipRepository) ListByEdit(editID string, status models.MembershipStatus) ([]*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM edit_memberships WHERE edit_id = ?`
	args := []any{editID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY score DESC, product_id ASC"
	return r.query(query, args...)
}

// ListEligibleForSync returns unsynced approved or pending memberships, highest score first.
func (r *MembershipRepository) ListEligibleForSync(editID string) ([]*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM edit_memberships
		WHERE edit_id = ? AND synced = 0 AND status IN (?, ?)
		ORDER BY score DESC, product_id ASC`
	return r.query(query, editID, string(models.MembershipApproved), string(models.MembershipPending))
}

// SaveStatus writes a membership's status and sync fields.
//
// The write only lands if the stored status still equals from, so two writers racing on
// the same membership can't both apply a transition.
func (r *MembershipRepository) SaveStatus(m *models.Membership, from models.MembershipStatus) error {
	now := time.Now()
	result, err := r.db.Exec(`
		UPDATE edit_memberships
		SET status = ?, synced = ?, synced_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, string(m.Status()), m.Synced(), nullTime(m.SyncedAt()), now, m.ID(), string(from))
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: membership %d changed concurrently", models.ErrInvalidTransition, m.ProductID())
	}

	m.SetUpdatedAt(now)
	return nil
}

// Stats counts an edit's memberships per status.
func (r *MembershipRepository) Stats(editID string) (models.EditStats, error) {
	var stats models.EditStats

	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM edit_memberships WHERE edit_id = ? GROUP BY status`, editID)
	if err != nil {
		return stats, fmt.Errorf("failed to query membership stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return stats, fmt.Errorf("failed to scan membership stats: %w", err)
		}
		stats.Add(models.MembershipStatus(status), count)
	}

	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("row iteration error: %w", err)
	}
	return stats, nil
}

func (r *MembershipRepository) query(query string, args ...any) ([]*models.Membership, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	memberships := []*models.Membership{}
	for rows.Next() {
		m, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return memberships, nil
}

func (r *MembershipRepository) scan(row rowScanner) (*models.Membership, error) {
	var (
		id, editID, reasons, status, source string
		productID                           int64
		score                               int
		synced                              bool
		syncedAt                            sql.NullTime
		createdAt, updatedAt                time.Time
	)

	err := row.Scan(&id, &editID, &productID, &score, &reasons, &status, &source, &synced, &syncedAt, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrMembershipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan membership: %w", err)
	}

	var reasonList []string
	if err := json.Unmarshal([]byte(reasons), &reasonList); err != nil {
		reasonList = []string{}
	}

	m := models.NewMembership(editID, productID, score, reasonList, models.MembershipStatus(status), models.MembershipSource(source))
	m.SetID(id)
	m.SetCreatedAt(createdAt)
	m.SetUpdatedAt(updatedAt)
	m.Restore(synced, timePtr(syncedAt))

	return m, nil
}
