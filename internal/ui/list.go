package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/soundgraph/internal/services"
)

var (
	_ list.Item = artistItem{}
	_ list.Item = trackItem{}
)

// artistItem wraps [services.Artist] to implement [list.Item].
type artistItem struct {
	rank   int
	artist services.Artist
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string {
	return fmt.Sprintf("%d. %s", i.rank, i.artist.Name)
}
func (i artistItem) Description() string {
	desc := fmt.Sprintf("popularity %d", i.artist.Popularity)
	if len(i.artist.Genres) > 0 {
		desc = fmt.Sprintf("%s • %s", strings.Join(i.artist.Genres, ", "), desc)
	}
	return desc
}

// trackItem wraps [services.Track] to implement [list.Item].
type trackItem struct {
	rank  int
	track services.Track
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string {
	return fmt.Sprintf("%d. %s", i.rank, i.track.Name)
}
func (i trackItem) Description() string {
	names := make([]string, 0, len(i.track.Artists))
	for _, a := range i.track.Artists {
		names = append(names, a.Name)
	}
	desc := strings.Join(names, ", ")
	if i.track.Album.Name != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album.Name)
	}
	return desc
}

func artistItems(artists []services.Artist) []list.Item {
	items := make([]list.Item, 0, len(artists))
	for n, a := range artists {
		items = append(items, artistItem{rank: n + 1, artist: a})
	}
	return items
}

func trackItems(tracks []services.Track) []list.Item {
	items := make([]list.Item, 0, len(tracks))
	for n, t := range tracks {
		items = append(items, trackItem{rank: n + 1, track: t})
	}
	return items
}
