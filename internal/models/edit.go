package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTransition is returned when a status change is not in the transition table.
var ErrInvalidTransition = errors.New("invalid status transition")

// EditStatus is the lifecycle state of an [Edit].
type EditStatus string

const (
	EditSuggested EditStatus = "suggested"
	EditApproved  EditStatus = "approved"
	EditCreated   EditStatus = "created"
	EditActive    EditStatus = "active"
)

// editTransitions lists every allowed move. Anything absent is rejected.
var editTransitions = map[EditStatus][]EditStatus{
	EditSuggested: {EditApproved, EditCreated},
	EditApproved:  {EditCreated},
	EditCreated:   {EditActive},
	EditActive:    {},
}

// Valid reports whether s is a known status.
func (s EditStatus) Valid() bool {
	_, ok := editTransitions[s]
	return ok
}

// CanTransition reports whether moving from s to next is allowed.
func (s EditStatus) CanTransition(next EditStatus) bool {
	for _, allowed := range editTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// EditSource records how an Edit came to exist.
type EditSource string

const (
	SourceManual   EditSource = "manual"
	SourceOccasion EditSource = "occasion"
	SourceSeasonal EditSource = "seasonal"
	SourceCategory EditSource = "category"
)

// Valid reports whether s is a known source.
func (s EditSource) Valid() bool {
	switch s {
	case SourceManual, SourceOccasion, SourceSeasonal, SourceCategory:
		return true
	}
	return false
}

// Edit is a named, curated product collection.
type Edit struct {
	id                string
	sequence          int
	name              string
	slug              string
	description       string
	source            EditSource
	rules             Rules
	status            EditStatus
	autoRegenerate    bool
	termID            *int64
	lastRegeneratedAt *time.Time
	lastSyncedAt      *time.Time
	createdAt         time.Time
	updatedAt         time.Time
	deletedAt         *time.Time
}

// NewEdit creates an Edit in the suggested state. The ID is assigned by the repository on Create.
func NewEdit(sequence int, name, slug, description string, source EditSource, rules Rules) *Edit {
	now := time.Now()
	return &Edit{
		sequence:    sequence,
		name:        strings.TrimSpace(name),
		slug:        slug,
		description: description,
		source:      source,
		rules:       rules.Normalize(),
		status:      EditSuggested,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (e *Edit) ID() string { return e.id }
func (e *Edit) Sequence() int { return e.sequence }
func (e *Edit) Name() string { return e.name }
func (e *Edit) Slug() string { return e.slug }
func (e *Edit) Description() string { return e.description }
func (e *Edit) Source() EditSource { return e.source }
func (e *Edit) Rules() Rules { return e.rules }
func (e *Edit) Status() EditStatus { return e.status }
func (e *Edit) AutoRegenerate() bool { return e.autoRegenerate }
func (e *Edit) TermID() *int64 { return e.termID }
func (e *Edit) LastRegeneratedAt() *time.Time { return e.lastRegeneratedAt }
func (e *Edit) LastSyncedAt() *time.Time { return e.lastSyncedAt }
func (e *Edit) CreatedAt() time.Time { return e.createdAt }
func (e *Edit) UpdatedAt() time.Time { return e.updatedAt }
func (e *Edit) DeletedAt() *time.Time { return e.deletedAt }
func (e *Edit) HasTerm() bool { return e.termID != nil }
func (e *Edit) SetID(id string) { e.id = id }
func (e *Edit) SetSequence(seq int) { e.sequence = seq }
func (e *Edit) SetSlug(slug string) { e.slug = slug }
func (e *Edit) SetDescription(d string) { e.description = d }
func (e *Edit) SetRules(r Rules) { e.rules = r.Normalize() }
func (e *Edit) SetAutoRegenerate(v bool) { e.autoRegenerate = v }
func (e *Edit) SetCreatedAt(t time.Time) { e.createdAt = t }
func (e *Edit) SetUpdatedAt(t time.Time) { e.updatedAt = t }
func (e *Edit) SetDeletedAt(t *time.Time) { e.deletedAt = t }
func (e *Edit) SetLastRegeneratedAt(t *time.Time) { e.lastRegeneratedAt = t }
func (e *Edit) SetLastSyncedAt(t *time.Time) { e.lastSyncedAt = t }

// Restore sets persisted state without going through the transition table. Only repositories should call it.
func (e *Edit) Restore(status EditStatus, termID *int64) {
	e.status = status
	e.termID = termID
}

// Validate checks required fields and enumerations.
func (e *Edit) Validate() error {
	if e.name == "" {
		return fmt.Errorf("name is required")
	}
	if e.slug == "" {
		return fmt.Errorf("slug is required")
	}
	if !e.source.Valid() {
		return fmt.Errorf("unknown source %q", e.source)
	}
	if !e.status.Valid() {
		return fmt.Errorf("unknown status %q", e.status)
	}
	return nil
}

// Transition moves the Edit to next if the transition table allows it.
func (e *Edit) Transition(next EditStatus) error {
	if !e.status.CanTransition(next) {
		return fmt.Errorf("%w: edit %s → %s", ErrInvalidTransition, e.status, next)
	}
	e.status = next
	return nil
}

// PromoteToApproved moves a suggested Edit to approved and reports whether it changed.
// Edits already past suggested are left alone.
func (e *Edit) PromoteToApproved() bool {
	if e.status != EditSuggested {
		return false
	}
	e.status = EditApproved
	return true
}

// MarkCreated records the external term and moves the Edit to created.
func (e *Edit) MarkCreated(termID int64) error {
	if e.status != EditCreated && e.status != EditActive {
		if err := e.Transition(EditCreated); err != nil {
			return err
		}
	}
	e.termID = &termID
	return nil
}

// MarkActive moves a created Edit to active and stamps the sync time. Already active Edits only get the new stamp.
func (e *Edit) MarkActive(at time.Time) error {
	if e.status != EditActive {
		if err := e.Transition(EditActive); err != nil {
			return err
		}
	}
	e.lastSyncedAt = &at
	return nil
}

// EditStats summarizes an Edit's memberships.
type EditStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Synced   int `json:"synced"`
}

// Add counts n memberships in the given status.
func (s *EditStats) Add(status MembershipStatus, n int) {
	s.Total += n
	switch status {
	case MembershipPending:
		s.Pending += n
	case MembershipApproved:
		s.Approved += n
	case MembershipRejected:
		s.Rejected += n
	case MembershipSynced:
		s.Synced += n
	}
}
