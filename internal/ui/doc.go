// Package ui implements an interactive review terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view curation workflow:
//  1. [EditListView] : Browse edits with their status
//  2. [MembershipListView] : Review an edit's products; approve, reject, approve all, regenerate
//  3. [ConfirmView] : Confirm pushing the edit to the storefront
//  4. [SyncView] : Monitor real-time progress updates
//  5. [ResultView] : Display synced and failed counts
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the [Msg] union type.
// Progress updates flow through a channel from the EditEngine, providing non-blocking status reporting during sync.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, a/x/A, g, s, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
