package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listify/internal/catalog"
	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/shared"
)

// MusicSearch searches the catalog. A query starting with # is a genre search.
func (r *Runner) MusicSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrEmptyQuery)
	}

	var tracks []models.Track
	if category := cmd.String("category"); category != "" {
		tracks = r.catalog.SearchByCategory(ctx, query, category)
	} else {
		tracks = r.catalog.Search(ctx, query)
	}
	return r.outputTracks(cmd, fmt.Sprintf("Results for %q", query), tracks)
}

// MusicGenre lists a genre after resolving aliases.
func (r *Runner) MusicGenre(ctx context.Context, cmd *cli.Command) error {
	raw := strings.TrimSpace(strings.TrimPrefix(cmd.StringArg("genre"), catalog.GenrePrefix))
	if raw == "" {
		return fmt.Errorf("%w: genre", shared.ErrMissingArgument)
	}

	genre := catalog.ResolveGenre(raw)
	return r.outputTracks(cmd, "Genre: "+genre, r.catalog.SearchByGenre(ctx, genre))
}

// MusicAll lists the catalog.
func (r *Runner) MusicAll(ctx context.Context, cmd *cli.Command) error {
	return r.outputTracks(cmd, "Catalog", r.catalog.All(ctx))
}

// MusicTop50 lists the ranked catalog.
func (r *Runner) MusicTop50(ctx context.Context, cmd *cli.Command) error {
	return r.outputTracks(cmd, "Top 50", r.catalog.Top50(ctx))
}

func (r *Runner) outputTracks(cmd *cli.Command, title string, tracks []models.Track) error {
	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d)", title, len(tracks)))
	r.writeTracks(tracks)
	return nil
}
