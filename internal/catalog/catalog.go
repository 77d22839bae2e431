// Package catalog runs read-only queries against the music catalog.
//
// Queries never fail towards the caller: transport and envelope errors are
// logged and an empty result is returned.
package catalog

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/shared"
)

// Source is the catalog half of the backend client.
type Source interface {
	SearchMusic(ctx context.Context, query, category string) ([]models.Track, error)
	MusicByGenre(ctx context.Context, genre string) ([]models.Track, error)
	AllMusic(ctx context.Context) ([]models.Track, error)
	Top50(ctx context.Context) ([]models.Track, error)
}

// genreAliases maps lowercased free text to canonical genre labels.
var genreAliases = map[string]string{
	"kpop":       "K-Pop",
	"k-pop":      "K-Pop",
	"케이팝":        "K-Pop",
	"pop":        "Pop",
	"hiphop":     "Hip-Hop",
	"힙합":         "Hip-Hop",
	"rnb":        "R&B",
	"알앤비":        "R&B",
	"jazz":       "Jazz",
	"재즈":         "Jazz",
	"rock":       "Rock",
	"락":          "Rock",
	"록":          "Rock",
	"classical":  "Classical",
	"클래식":        "Classical",
	"electronic": "Electronic",
	"일렉트로닉":      "Electronic",
	"indie":      "Indie",
	"인디":         "Indie",
	"metal":      "Metal",
	"메탈":         "Metal",
}

// GenrePrefix marks a search-box query as a genre search.
const GenrePrefix = "#"

// ResolveGenre maps free text to a canonical genre label.
// Unknown input is returned unchanged.
func ResolveGenre(raw string) string {
	if genre, ok := genreAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return genre
	}
	return raw
}

// Catalog runs queries against a [Source].
type Catalog struct {
	source Source
	logger *log.Logger
}

// New creates a Catalog. A nil logger writes to stderr.
func New(source Source, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Catalog{source: source, logger: logger}
}

// SearchByText searches titles and artists. A blank query returns nothing without a call.
func (c *Catalog) SearchByText(ctx context.Context, query string) []models.Track {
	return c.SearchByCategory(ctx, query, "")
}

// SearchByCategory searches with an optional backend category filter.
func (c *Catalog) SearchByCategory(ctx context.Context, query, category string) []models.Track {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Track{}
	}

	tracks, err := c.source.SearchMusic(ctx, query, category)
	return c.result(tracks, err, "search", "query", query, "category", category)
}

// SearchByGenre lists tracks for a genre label. Callers resolve aliases with [ResolveGenre].
func (c *Catalog) SearchByGenre(ctx context.Context, label string) []models.Track {
	if strings.TrimSpace(label) == "" {
		return []models.Track{}
	}

	tracks, err := c.source.MusicByGenre(ctx, label)
	return c.result(tracks, err, "genre search", "genre", label)
}

// Search dispatches a search-box query: "#label" is a genre search, anything else a text search.
func (c *Catalog) Search(ctx context.Context, query string) []models.Track {
	trimmed := strings.TrimSpace(query)
	if label, ok := strings.CutPrefix(trimmed, GenrePrefix); ok {
		return c.SearchByGenre(ctx, ResolveGenre(strings.TrimSpace(label)))
	}
	return c.SearchByText(ctx, trimmed)
}

// All lists the full catalog.
func (c *Catalog) All(ctx context.Context) []models.Track {
	tracks, err := c.source.AllMusic(ctx)
	return c.result(tracks, err, "catalog listing")
}

// Top50 lists the ranked catalog.
func (c *Catalog) Top50(ctx context.Context) []models.Track {
	tracks, err := c.source.Top50(ctx)
	return c.result(tracks, err, "top 50")
}

func (c *Catalog) result(tracks []models.Track, err error, op string, kv ...any) []models.Track {
	if err != nil {
		c.logger.Error(op+" failed", append(kv, "error", err)...)
		return []models.Track{}
	}
	if tracks == nil {
		return []models.Track{}
	}
	return tracks
}
