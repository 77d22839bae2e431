package server

import (
	"fmt"

	"github.com/desertthunder/listify/internal/models"
)

// Demo account created by [SeedDemo].
const (
	DemoEmail    = "demo@listify.local"
	DemoPassword = "listify"
	DemoNickname = "demo"
)

type seedTrack struct {
	title, artist, genre string
	rank                 int
}

var demoTracks = []seedTrack{
	{"Hype Boy", "NewJeans", "K-Pop", 1},
	{"Super Shy", "NewJeans", "K-Pop", 3},
	{"Love Dive", "IVE", "K-Pop", 5},
	{"Blinding Lights", "The Weeknd", "Pop", 2},
	{"As It Was", "Harry Styles", "Pop", 4},
	{"Levitating", "Dua Lipa", "Pop", 0},
	{"HUMBLE.", "Kendrick Lamar", "Hip-Hop", 6},
	{"SICKO MODE", "Travis Scott", "Hip-Hop", 0},
	{"Snooze", "SZA", "R&B", 7},
	{"Redbone", "Childish Gambino", "R&B", 0},
	{"So What", "Miles Davis", "Jazz", 0},
	{"Take Five", "The Dave Brubeck Quartet", "Jazz", 0},
	{"Everlong", "Foo Fighters", "Rock", 8},
	{"Mr. Brightside", "The Killers", "Rock", 0},
	{"Clair de Lune", "Claude Debussy", "Classical", 0},
	{"Strobe", "deadmau5", "Electronic", 0},
	{"Midnight City", "M83", "Electronic", 9},
	{"Dreams Tonite", "Alvvays", "Indie", 0},
	{"Master of Puppets", "Metallica", "Metal", 10},
}

// DemoCatalog returns a small catalog covering every canonical genre.
func DemoCatalog() []CatalogEntry {
	out := make([]CatalogEntry, len(demoTracks))
	for i, s := range demoTracks {
		no := i + 1
		out[i] = CatalogEntry{
			Track: models.Track{
				MusicNo:       no,
				Title:         s.title,
				ArtistName:    s.artist,
				AlbumImageURL: fmt.Sprintf("https://images.listify.local/album/%d.jpg", no),
				SourceURL:     fmt.Sprintf("https://open.spotify.com/track/listify%04d", no),
			},
			Genre: s.genre,
			Rank:  s.rank,
		}
	}
	return out
}

// SeedDemo adds the demo account to b and returns its user number.
func SeedDemo(b *Backend) int {
	return b.AddUser(DemoEmail, DemoPassword, DemoNickname)
}
