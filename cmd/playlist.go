package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listify/internal/cart"
	"github.com/desertthunder/listify/internal/formatter"
	"github.com/desertthunder/listify/internal/shared"
	"github.com/desertthunder/listify/internal/tasks"
)

// PlaylistList lists the signed-in user's playlists.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	playlists, err := r.loadPlaylists(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(playlists)))
	for _, pl := range playlists {
		r.writePlain("%5d  %s (%d tracks)\n", pl.ID, pl.Title, len(pl.Tracks))
	}
	return nil
}

// PlaylistShow prints one playlist with its tracks.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.loadPlaylists(ctx); err != nil {
		return err
	}
	pl, err := r.resolvePlaylist(cmd.StringArg("playlist"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(pl, cmd.Bool("pretty"))
	}

	r.writePlainHeader(pl.Title)
	if pl.Description != "" {
		r.writePlain("%s\n", pl.Description)
	}
	r.writePlain("ID: %d  Tracks: %d\n\n", pl.ID, len(pl.Tracks))
	r.writeTracks(pl.Tracks)
	return nil
}

// PlaylistCreate resolves --music numbers against the catalog into a cart and saves it.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	title := strings.TrimSpace(cmd.StringArg("title"))
	if title == "" {
		return fmt.Errorf("%w: playlist title", shared.ErrMissingArgument)
	}

	c := cart.New()
	if refs := cmd.StringSlice("music"); len(refs) > 0 {
		all := r.catalog.All(ctx)
		for _, ref := range refs {
			track, err := resolveTrack(ref, all)
			if err != nil {
				return err
			}
			c.Add(track)
		}
	}

	result, err := r.engine.CreateFromCart(ctx, title, cmd.String("description"), c.Items(), c)
	if err != nil {
		return err
	}

	r.writePlain("✓ Created %q (id %d) with %d tracks\n", result.Playlist.Title, result.Playlist.ID, len(result.Attached))
	if result.Partial() {
		r.writePlain("Failed to add %d tracks:\n", len(result.Failed))
		for _, f := range result.Failed {
			r.writePlain("  • %s - %s: %v\n", f.Track.ArtistName, f.Track.Title, f.Err)
		}
	}
	return nil
}

// PlaylistEdit changes the title and/or description. Unset flags keep current values.
func (r *Runner) PlaylistEdit(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.loadPlaylists(ctx); err != nil {
		return err
	}
	pl, err := r.resolvePlaylist(cmd.StringArg("playlist"))
	if err != nil {
		return err
	}

	if !cmd.IsSet("title") && !cmd.IsSet("description") {
		return fmt.Errorf("%w: --title or --description", shared.ErrMissingArgument)
	}

	title, description := pl.Title, pl.Description
	if cmd.IsSet("title") {
		title = cmd.String("title")
	}
	if cmd.IsSet("description") {
		description = cmd.String("description")
	}

	if err := r.engine.Edit(ctx, pl.ID, title, description); err != nil {
		return err
	}
	return r.writePlain("✓ Updated playlist %d\n", pl.ID)
}

// PlaylistDelete deletes a playlist after confirmation.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.loadPlaylists(ctx); err != nil {
		return err
	}
	pl, err := r.resolvePlaylist(cmd.StringArg("playlist"))
	if err != nil {
		return err
	}

	var confirmer tasks.Confirmer = tasks.ConfirmFunc(r.confirm)
	if cmd.Bool("yes") {
		confirmer = tasks.ConfirmFunc(func(string) bool { return true })
	}

	if err := r.engine.Delete(ctx, pl.ID, confirmer); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %q\n", pl.Title)
}

// PlaylistAdd adds a catalog track, by number or fuzzy title, to a playlist.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.loadPlaylists(ctx); err != nil {
		return err
	}
	pl, err := r.resolvePlaylist(cmd.StringArg("playlist"))
	if err != nil {
		return err
	}

	track, err := resolveTrack(cmd.StringArg("music"), r.catalog.All(ctx))
	if err != nil {
		return err
	}

	if err := r.engine.AttachTrack(ctx, pl.ID, track); err != nil {
		return err
	}
	return r.writePlain("✓ Added %s - %s to %q\n", track.ArtistName, track.Title, pl.Title)
}

// PlaylistRemove removes a track, by number or fuzzy title, from a playlist.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.loadPlaylists(ctx); err != nil {
		return err
	}
	pl, err := r.resolvePlaylist(cmd.StringArg("playlist"))
	if err != nil {
		return err
	}

	track, err := resolveTrack(cmd.StringArg("music"), pl.Tracks)
	if err != nil {
		return err
	}

	if err := r.engine.DetachTrack(ctx, pl.ID, track.MusicNo); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s - %s from %q\n", track.ArtistName, track.Title, pl.Title)
}

// PlaylistExport writes playlists to disk with a manifest.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.loadPlaylists(ctx); err != nil {
		return err
	}

	format := strings.ToLower(cmd.String("format"))
	if !slices.Contains(formatter.Formats, format) {
		return fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidInput, format)
	}

	var ids []int
	for _, ref := range cmd.StringSlice("playlist") {
		pl, err := r.resolvePlaylist(ref)
		if err != nil {
			return err
		}
		ids = append(ids, pl.ID)
	}

	result, err := r.engine.BulkExport(ctx, tasks.BulkExportOpts{
		IDs:        ids,
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
		WithCover:  cmd.Bool("cover"),
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ Exported %d/%d playlists to %s\n", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  ✗ %s: %s\n", res.PlaylistName, res.ErrorMessage)
		}
	}
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	return nil
}
