package models

import (
	"fmt"
	"time"
)

// MembershipStatus is the lifecycle state of a [Membership].
type MembershipStatus string

const (
	MembershipPending  MembershipStatus = "pending"
	MembershipApproved MembershipStatus = "approved"
	MembershipRejected MembershipStatus = "rejected"
	MembershipSynced   MembershipStatus = "synced"
)

var membershipTransitions = map[MembershipStatus][]MembershipStatus{
	MembershipPending:  {MembershipApproved, MembershipRejected, MembershipSynced},
	MembershipApproved: {MembershipRejected, MembershipSynced},
	MembershipRejected: {},
	MembershipSynced:   {},
}

// Valid reports whether s is a known status.
func (s MembershipStatus) Valid() bool {
	_, ok := membershipTransitions[s]
	return ok
}

// CanTransition reports whether moving from s to next is allowed.
func (s MembershipStatus) CanTransition(next MembershipStatus) bool {
	for _, allowed := range membershipTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MembershipSource records who put the product in the Edit.
type MembershipSource string

const (
	MembershipFromMatcher MembershipSource = "matcher"
	MembershipFromManual  MembershipSource = "manual"
)

// Membership is one product's relationship to one Edit.
type Membership struct {
	id        string
	editID    string
	productID int64
	score     int
	reasons   []string
	status    MembershipStatus
	source    MembershipSource
	synced    bool
	syncedAt  *time.Time
	createdAt time.Time
	updatedAt time.Time
}

// NewMembership creates a membership. Scores are clamped into [0, 100].
func NewMembership(editID string, productID int64, score int, reasons []string, status MembershipStatus, source MembershipSource) *Membership {
	now := time.Now()
	if reasons == nil {
		reasons = []string{}
	}
	return &Membership{
		editID:    editID,
		productID: productID,
		score:     ClampScore(score),
		reasons:   reasons,
		status:    status,
		source:    source,
		createdAt: now,
		updatedAt: now,
	}
}

// ClampScore bounds a match score to [0, 100].
func ClampScore(score int) int {
	return min(max(score, 0), 100)
}

func (m *Membership) ID() string { return m.id }
func (m *Membership) EditID() string { return m.editID }
func (m *Membership) ProductID() int64 { return m.productID }
func (m *Membership) Score() int { return m.score }
func (m *Membership) Reasons() []string { return m.reasons }
func (m *Membership) Status() MembershipStatus { return m.status }
func (m *Membership) Source() MembershipSource { return m.source }
func (m *Membership) Synced() bool { return m.synced }
func (m *Membership) SyncedAt() *time.Time { return m.syncedAt }
func (m *Membership) CreatedAt() time.Time { return m.createdAt }
func (m *Membership) UpdatedAt() time.Time { return m.updatedAt }
func (m *Membership) SetID(id string) { m.id = id }
func (m *Membership) SetCreatedAt(t time.Time) { m.createdAt = t }
func (m *Membership) SetUpdatedAt(t time.Time) { m.updatedAt = t }

// Restore sets persisted sync state without going through the transition table. Only repositories should call it.
func (m *Membership) Restore(synced bool, syncedAt *time.Time) {
	m.synced = synced
	m.syncedAt = syncedAt
}

// SyncEligible reports whether the sync engine should push this membership.
func (m *Membership) SyncEligible() bool {
	return !m.synced && (m.status == MembershipApproved || m.status == MembershipPending)
}

// Validate checks required fields and enumerations.
func (m *Membership) Validate() error {
	if m.editID == "" {
		return fmt.Errorf("edit_id is required")
	}
	if m.productID <= 0 {
		return fmt.Errorf("product_id must be positive")
	}
	if m.score < 0 || m.score > 100 {
		return fmt.Errorf("score %d out of range", m.score)
	}
	if !m.status.Valid() {
		return fmt.Errorf("unknown status %q", m.status)
	}
	return nil
}

// Transition moves the membership to next if the transition table allows it.
func (m *Membership) Transition(next MembershipStatus) error {
	if !m.status.CanTransition(next) {
		return fmt.Errorf("%w: membership %d %s → %s", ErrInvalidTransition, m.productID, m.status, next)
	}
	m.status = next
	return nil
}

// MarkSynced records a confirmed external assignment. After this the membership is immutable.
func (m *Membership) MarkSynced(at time.Time) error {
	if err := m.Transition(MembershipSynced); err != nil {
		return err
	}
	m.synced = true
	m.syncedAt = &at
	return nil
}
