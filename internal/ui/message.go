package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
//
// seq ties analysis messages to the request that produced them.
type Msg struct {
	kind MsgKind
	seq  int
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgAnalysisDone MsgKind = iota
	MsgProgressUpdate
	MsgRecentLoaded
)

type analysisDone struct {
	result *tasks.Result
	err    error
}

type recentLoaded struct {
	entries []repositories.SnapshotEntry
	err     error
}

// analysisDoneMsg is the constructor for [MsgAnalysisDone]
func analysisDoneMsg(seq int, result *tasks.Result, err error) Msg {
	return Msg{kind: MsgAnalysisDone, seq: seq, data: analysisDone{result, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(seq int, update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, seq: seq, data: update}
}

// recentLoadedMsg is the constructor for [MsgRecentLoaded]
func recentLoadedMsg(entries []repositories.SnapshotEntry, err error) Msg {
	return Msg{kind: MsgRecentLoaded, data: recentLoaded{entries, err}}
}
