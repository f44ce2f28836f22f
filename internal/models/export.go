package models

import "time"

// EditView is the serializable form of an [Edit].
type EditView struct {
	ID                string     `json:"id"`
	Sequence          int        `json:"sequence"`
	Name              string     `json:"name"`
	Slug              string     `json:"slug"`
	Description       string     `json:"description"`
	Source            EditSource `json:"source"`
	Rules             Rules      `json:"rules"`
	Status            EditStatus `json:"status"`
	AutoRegenerate    bool       `json:"auto_regenerate"`
	TermID            *int64     `json:"term_id"`
	LastRegeneratedAt *time.Time `json:"last_regenerated_at"`
	LastSyncedAt      *time.Time `json:"last_synced_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// MembershipView is the serializable form of a [Membership].
type MembershipView struct {
	ProductID int64            `json:"product_id"`
	Score     int              `json:"score"`
	Reasons   []string         `json:"reasons"`
	Status    MembershipStatus `json:"status"`
	Source    MembershipSource `json:"source"`
	Synced    bool             `json:"synced"`
	SyncedAt  *time.Time       `json:"synced_at"`
}

// EditExport bundles an edit with its memberships for output.
type EditExport struct {
	Edit        EditView         `json:"edit"`
	Memberships []MembershipView `json:"memberships"`
	Stats       EditStats        `json:"stats"`
}

func NewEditView(e *Edit) EditView {
	return EditView{
		ID:                e.ID(),
		Sequence:          e.Sequence(),
		Name:              e.Name(),
		Slug:              e.Slug(),
		Description:       e.Description(),
		Source:            e.Source(),
		Rules:             e.Rules(),
		Status:            e.Status(),
		AutoRegenerate:    e.AutoRegenerate(),
		TermID:            e.TermID(),
		LastRegeneratedAt: e.LastRegeneratedAt(),
		LastSyncedAt:      e.LastSyncedAt(),
		CreatedAt:         e.CreatedAt(),
		UpdatedAt:         e.UpdatedAt(),
	}
}

func NewMembershipView(m *Membership) MembershipView {
	return MembershipView{
		ProductID: m.ProductID(),
		Score:     m.Score(),
		Reasons:   m.Reasons(),
		Status:    m.Status(),
		Source:    m.Source(),
		Synced:    m.Synced(),
		SyncedAt:  m.SyncedAt(),
	}
}

// NewEditExport builds an export, keeping membership order.
func NewEditExport(e *Edit, memberships []*Membership, stats EditStats) *EditExport {
	views := make([]MembershipView, len(memberships))
	for i, m := range memberships {
		views[i] = NewMembershipView(m)
	}
	return &EditExport{Edit: NewEditView(e), Memberships: views, Stats: stats}
}

// EditViews converts a slice of edits.
func EditViews(edits []*Edit) []EditView {
	views := make([]EditView, len(edits))
	for i, e := range edits {
		views[i] = NewEditView(e)
	}
	return views
}
