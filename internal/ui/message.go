package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/curator/internal/models"
	"github.com/desertthunder/curator/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgEditsFetched MsgKind = iota
	MsgDetailFetched
	MsgActionDone
	MsgProgressUpdate
	MsgSyncComplete
)

type editsFetched struct {
	edits []*models.Edit
	err   error
}

type detailFetched struct {
	detail *tasks.EditDetail
	err    error
}

type actionDone struct {
	label   string
	summary *tasks.Summary
	err     error
}

type syncComplete struct {
	result *tasks.Summary
	err    error
}

// editsFetchedMsg is the constructor for [MsgEditsFetched]
func editsFetchedMsg(edits []*models.Edit, err error) Msg {
	return Msg{kind: MsgEditsFetched, data: editsFetched{edits, err}}
}

// detailFetchedMsg is the constructor for [MsgDetailFetched]
func detailFetchedMsg(detail *tasks.EditDetail, err error) Msg {
	return Msg{kind: MsgDetailFetched, data: detailFetched{detail, err}}
}

// actionDoneMsg is the constructor for [MsgActionDone]
func actionDoneMsg(label string, summary *tasks.Summary, err error) Msg {
	return Msg{kind: MsgActionDone, data: actionDone{label, summary, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// syncCompleteMsg is the constructor for [MsgSyncComplete]
func syncCompleteMsg(result *tasks.Summary, err error) Msg {
	return Msg{kind: MsgSyncComplete, data: syncComplete{result, err}}
}
