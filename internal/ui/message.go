package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/soundgraph/internal/services"
	"github.com/desertthunder/soundgraph/internal/session"
	"github.com/desertthunder/soundgraph/internal/tasks"
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
	MsgAuthChecked MsgKind = iota
	MsgArtistsFetched
	MsgTracksFetched
	MsgProgressUpdate
	MsgImportDone
)

// authCheckedMsg is the constructor for [MsgAuthChecked]
func authCheckedMsg(snap session.Snapshot) Msg {
	return Msg{kind: MsgAuthChecked, data: snap}
}

// artistsFetchedMsg is the constructor for [MsgArtistsFetched]
func artistsFetchedMsg(artists *services.TopArtistsResponse, err error) Msg {
	return Msg{
		kind: MsgArtistsFetched,
		data: struct {
			artists *services.TopArtistsResponse
			err     error
		}{artists, err},
	}
}

// tracksFetchedMsg is the constructor for [MsgTracksFetched]
func tracksFetchedMsg(tracks *services.TopTracksResponse, err error) Msg {
	return Msg{
		kind: MsgTracksFetched,
		data: struct {
			tracks *services.TopTracksResponse
			err    error
		}{tracks, err},
	}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// importDoneMsg is the constructor for [MsgImportDone]
func importDoneMsg(result *tasks.PollResult) Msg {
	return Msg{kind: MsgImportDone, data: result}
}
