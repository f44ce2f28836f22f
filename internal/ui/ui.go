package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/curator/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	EditListView ViewState = iota
	MembershipListView
	ConfirmView
	SyncView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.EditEngine
	status       string
	width        int
	height       int
	editList     list.Model
	memberList   list.Model
	detail       *tasks.EditDetail
	progressChan chan tasks.ProgressUpdate
	syncDone     chan syncComplete
	progress     tasks.ProgressUpdate
	result       *tasks.Summary
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model over the given engine.
func NewModel(ctx context.Context, engine *tasks.EditEngine) *Model {
	return &Model{
		ctx:        ctx,
		view:       EditListView,
		engine:     engine,
		editList:   list.New(nil, list.NewDefaultDelegate(), 0, 0),
		memberList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init initializes the TUI by loading edits.
func (m *Model) Init() tea.Cmd {
	return m.fetchEdits()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editList.SetSize(msg.Width-4, msg.Height-8)
		m.memberList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case EditListView:
			return m.handleEditListKeys(msg)
		case MembershipListView:
			return m.handleMembershipKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgEditsFetched:
		data := msg.data.(editsFetched)
		if data.err != nil {
			m.err = data.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(data.edits))
		for i, edit := range data.edits {
			items[i] = editItem{edit: edit}
		}
		m.editList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.editList.Title = "Edits"
		m.editList.SetSize(m.width-4, m.height-8)
		return m, nil

	case MsgDetailFetched:
		data := msg.data.(detailFetched)
		if data.err != nil {
			m.status = styles.err.Render(data.err.Error())
			m.view = EditListView
			return m, nil
		}
		m.setDetail(data.detail)
		m.view = MembershipListView
		return m, nil

	case MsgActionDone:
		data := msg.data.(actionDone)
		m.status = actionStatus(data)
		return m, m.fetchDetail(m.detail.Edit.ID())

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgSyncComplete:
		data := msg.data.(syncComplete)
		m.result = data.result
		m.err = data.err
		m.progressChan = nil
		m.syncDone = nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case EditListView:
		return m.renderEditList()
	case MembershipListView:
		return m.renderMemberships()
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleEditListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.editList, cmd = m.editList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.editList.SelectedItem().(editItem); ok {
			m.status = ""
			return m, m.fetchDetail(item.edit.ID())
		}
	}

	var cmd tea.Cmd
	m.editList, cmd = m.editList.Update(msg)
	return m, cmd
}

func (m *Model) handleMembershipKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	editID := m.detail.Edit.ID()

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = EditListView
		m.status = ""
		return m, m.fetchEdits()
	case key.Matches(msg, m.keys.approve):
		if pid, ok := m.selectedProduct(); ok {
			return m, m.runAction("approved", func() (*tasks.Summary, error) { return m.engine.Approve(editID, []int64{pid}) })
		}
	case key.Matches(msg, m.keys.reject):
		if pid, ok := m.selectedProduct(); ok {
			return m, m.runAction("rejected", func() (*tasks.Summary, error) { return m.engine.Reject(editID, []int64{pid}) })
		}
	case key.Matches(msg, m.keys.approveAll):
		return m, m.runAction("approved", func() (*tasks.Summary, error) { return m.engine.ApproveAllPending(editID) })
	case key.Matches(msg, m.keys.regenerate):
		return m, m.runAction("added", func() (*tasks.Summary, error) { return m.engine.Regenerate(m.ctx, editID, nil) })
	case key.Matches(msg, m.keys.sync):
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.memberList, cmd = m.memberList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = MembershipListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = SyncView
		m.progress = tasks.ProgressUpdate{}
		return m, m.startSync()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = EditListView
		m.detail = nil
		m.result = nil
		m.err = nil
		m.status = ""
		return m, m.fetchEdits()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case EditListView:
		m.editList, cmd = m.editList.Update(msg)
	case MembershipListView:
		m.memberList, cmd = m.memberList.Update(msg)
	}
	return m, cmd
}

func (m *Model) setDetail(detail *tasks.EditDetail) {
	selected := m.memberList.Index()
	m.detail = detail

	items := make([]list.Item, len(detail.Memberships))
	for i, mb := range detail.Memberships {
		items[i] = membershipItem{membership: mb}
	}
	m.memberList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.memberList.Title = fmt.Sprintf("%s [%s]", detail.Edit.Name(), detail.Edit.Status())
	m.memberList.SetSize(m.width-4, m.height-8)
	if selected < len(items) {
		m.memberList.Select(selected)
	}
}

func (m *Model) selectedProduct() (int64, bool) {
	item, ok := m.memberList.SelectedItem().(membershipItem)
	if !ok {
		return 0, false
	}
	return item.membership.ProductID(), true
}

func (m *Model) fetchEdits() tea.Cmd {
	return func() tea.Msg {
		edits, err := m.engine.List("")
		return editsFetchedMsg(edits, err)
	}
}

func (m *Model) fetchDetail(editID string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.engine.Detail(editID)
		return detailFetchedMsg(detail, err)
	}
}

func (m *Model) runAction(label string, op func() (*tasks.Summary, error)) tea.Cmd {
	return func() tea.Msg {
		summary, err := op()
		return actionDoneMsg(label, summary, err)
	}
}

func (m *Model) startSync() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan syncComplete, 1)
	m.progressChan = progress
	m.syncDone = done

	editID := m.detail.Edit.ID()
	go func() {
		result, err := m.engine.Sync(m.ctx, editID, progress)
		close(progress)
		done <- syncComplete{result: result, err: err}
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.syncDone
	return func() tea.Msg {
		if progress == nil {
			return syncCompleteMsg(m.result, m.err)
		}
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		r := <-done
		return syncCompleteMsg(r.result, r.err)
	}
}

func actionStatus(a actionDone) string {
	switch {
	case a.err != nil && a.summary == nil:
		return styles.err.Render(a.err.Error())
	case a.err != nil:
		return styles.warn.Render(fmt.Sprintf("%v (%d failed)", a.err, a.summary.Failed))
	case a.summary.Failed > 0:
		return styles.warn.Render(fmt.Sprintf("%d %s, %d failed", a.summary.Added, a.label, a.summary.Failed))
	default:
		return styles.ok.Render(fmt.Sprintf("%d %s", a.summary.Added, a.label))
	}
}

func (m *Model) renderEditList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	if m.status != "" {
		return fmt.Sprintf("%s\n%s\n\n%s", m.editList.View(), m.status, helpView)
	}
	return fmt.Sprintf("%s\n\n%s", m.editList.View(), helpView)
}

func (m *Model) renderMemberships() string {
	stats := m.detail.Stats
	summary := styles.help.Render(fmt.Sprintf("%d products • %d pending • %d approved • %d rejected • %d synced",
		stats.Total, stats.Pending, stats.Approved, stats.Rejected, stats.Synced))

	helpKeys := []key.Binding{m.keys.approve, m.keys.reject, m.keys.approveAll, m.keys.regenerate, m.keys.sync, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s\n\n%s", m.memberList.View(), summary, m.status, helpView)
}

func (m *Model) renderConfirm() string {
	edit := m.detail.Edit
	title := styles.title.Render(fmt.Sprintf("Sync '%s' to the storefront?", edit.Name()))

	var info string
	if edit.HasTerm() {
		info = fmt.Sprintf("\nTerm: %d\nApproved: %d\nPending: %d\n", *edit.TermID(), m.detail.Stats.Approved, m.detail.Stats.Pending)
	} else {
		info = styles.warn.Render("\nThis edit has no storefront term yet; create it first.\n")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing Edit")

	var phase string
	switch m.progress.Phase {
	case tasks.SyncMemberships:
		phase = fmt.Sprintf("Assigning products (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Preparing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Sync failed: %v\n\nPress r to go back, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to go back, q to quit")
	}

	title := styles.ok.Render("✓ Sync Complete!")
	info := fmt.Sprintf("\nSynced: %d/%d", m.result.Added, m.result.Total)

	var failed string
	if m.result.Failed > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Failed to assign %d products:", m.result.Failed)))
		for _, e := range m.result.Errors {
			failed += fmt.Sprintf("\n  • %s", e)
		}
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}

var _ tea.Model = (*Model)(nil)
