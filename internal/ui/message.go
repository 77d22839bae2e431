package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/tasks"
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
	MsgSearchDone MsgKind = iota
	MsgPlaylistsLoaded
	MsgOpDone
	MsgNotice
	MsgProgress
)

// operation names an engine call started from the TUI.
type operation int

const (
	opCreate operation = iota
	opRename
	opDelete
	opDetach
)

type opOutcome struct {
	op  operation
	err error
}

// searchDoneMsg is the constructor for [MsgSearchDone]
func searchDoneMsg(query string, tracks []models.Track) Msg {
	return Msg{
		kind: MsgSearchDone,
		data: struct {
			query  string
			tracks []models.Track
		}{query, tracks},
	}
}

// playlistsLoadedMsg is the constructor for [MsgPlaylistsLoaded]
func playlistsLoadedMsg(err error) Msg {
	return Msg{kind: MsgPlaylistsLoaded, data: err}
}

// opDoneMsg is the constructor for [MsgOpDone]
func opDoneMsg(op operation, err error) Msg {
	return Msg{kind: MsgOpDone, data: opOutcome{op: op, err: err}}
}

// noticeMsg is the constructor for [MsgNotice]
func noticeMsg(n models.Notice) Msg {
	return Msg{kind: MsgNotice, data: n}
}

// progressMsg is the constructor for [MsgProgress]
func progressMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgress, data: update}
}
