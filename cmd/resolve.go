package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/shared"
)

// bestMatch returns the index of the closest fuzzy match for ref in targets, or -1.
// A tie between the two closest matches is reported as ambiguous.
func bestMatch(ref string, targets []string) (int, error) {
	for i, t := range targets {
		if strings.EqualFold(t, ref) {
			return i, nil
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(ref, targets)
	if len(ranks) == 0 {
		return -1, nil
	}
	sort.Sort(ranks)

	if len(ranks) > 1 && ranks[0].Distance == ranks[1].Distance {
		return -1, fmt.Errorf("%w: %q matches both %q and %q", shared.ErrInvalidInput, ref, ranks[0].Target, ranks[1].Target)
	}
	return ranks[0].OriginalIndex, nil
}

// loadPlaylists refreshes the engine for the signed-in user.
func (r *Runner) loadPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if err := r.requireSession(ctx); err != nil {
		return nil, err
	}
	return r.engine.Refresh(ctx)
}

// resolvePlaylist finds a loaded playlist by id or fuzzy title.
func (r *Runner) resolvePlaylist(ref string) (models.Playlist, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Playlist{}, fmt.Errorf("%w: playlist id or title", shared.ErrMissingArgument)
	}

	if id, err := strconv.Atoi(ref); err == nil {
		if pl, ok := r.engine.Playlist(id); ok {
			return pl, nil
		}
	}

	playlists := r.engine.Playlists()
	titles := make([]string, len(playlists))
	for i, pl := range playlists {
		titles[i] = pl.Title
	}

	i, err := bestMatch(ref, titles)
	if err != nil {
		return models.Playlist{}, err
	}
	if i < 0 {
		return models.Playlist{}, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, ref)
	}
	return playlists[i], nil
}

// resolveTrack finds a track in tracks by music number or fuzzy "artist - title".
func resolveTrack(ref string, tracks []models.Track) (models.Track, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Track{}, fmt.Errorf("%w: music number or title", shared.ErrMissingArgument)
	}

	if no, err := strconv.Atoi(ref); err == nil {
		for _, t := range tracks {
			if t.MusicNo == no {
				return t, nil
			}
		}
		return models.Track{}, fmt.Errorf("%w: music %d", shared.ErrTrackNotFound, no)
	}

	labels := make([]string, len(tracks))
	for i, t := range tracks {
		labels[i] = t.ArtistName + " - " + t.Title
	}

	i, err := bestMatch(ref, labels)
	if err != nil {
		return models.Track{}, err
	}
	if i < 0 {
		return models.Track{}, fmt.Errorf("%w: %q", shared.ErrTrackNotFound, ref)
	}
	return tracks[i], nil
}
