package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/listify/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Title }
func (i playlistItem) Title() string       { return i.playlist.Title }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", len(i.playlist.Tracks))
	if i.playlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Description)
	}
	return desc
}

// trackItem wraps [models.Track] to implement [list.Item].
// marked tracks are shown with a check box when the list is a cart picker.
type trackItem struct {
	track    models.Track
	marked   bool
	markable bool
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string {
	if !i.markable {
		return i.track.Title
	}
	box := "[ ]"
	if i.marked {
		box = "[x]"
	}
	return fmt.Sprintf("%s %s", box, i.track.Title)
}
func (i trackItem) Description() string {
	desc := i.track.ArtistName
	if !i.track.HasID() {
		desc = fmt.Sprintf("%s • not in catalog", desc)
	}
	return desc
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	return l
}

func trackItems(tracks []models.Track, markable bool, marked func(models.Track) bool) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		item := trackItem{track: t, markable: markable}
		if markable && marked != nil {
			item.marked = marked(t)
		}
		items[i] = item
	}
	return items
}

func playlistItems(playlists []models.Playlist) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, pl := range playlists {
		items[i] = playlistItem{playlist: pl}
	}
	return items
}
