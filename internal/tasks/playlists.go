package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/services"
	"github.com/desertthunder/listify/internal/shared"
)

// AttachFailure records a track that could not be added to a new playlist.
type AttachFailure struct {
	Track models.Track
	Err   error
}

// CreateResult describes a create-from-cart run.
type CreateResult struct {
	Playlist  models.Playlist
	Attached  []models.Track
	Failed    []AttachFailure
	CloseCart bool // the cart view should be dismissed
}

// Partial reports whether some tracks were not attached.
func (r *CreateResult) Partial() bool { return len(r.Failed) > 0 }

// CreateFromCart creates a playlist and attaches snapshot in order, one call at a time.
//
// A failed create stops the run and leaves the cart untouched. Attach failures
// are recorded and the run continues; the partially filled playlist is kept.
// Once every track has been tried, the cart is cleared and the collection is refreshed.
func (e *PlaylistEngine) CreateFromCart(ctx context.Context, title, description string, snapshot []models.Track, cart Clearer) (*CreateResult, error) {
	logger := e.opLogger("create_from_cart")

	title = strings.TrimSpace(title)
	if title == "" {
		e.notify(models.NoticeWarning, "Playlist title is required")
		return nil, fmt.Errorf("%w: playlist title is required", shared.ErrInvalidInput)
	}

	e.sendProgress(createPlaylistUpdate(title))

	created, err := e.client.CreatePlaylist(ctx, title, description)
	if err != nil {
		logger.Error("failed to create playlist", "title", title, "error", err)
		e.notify(models.NoticeError, "Failed to create playlist: %s", services.Message(err))
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}
	if created.Title == "" {
		created.Title = title
	}
	if created.Description == "" {
		created.Description = description
	}

	e.sendProgress(createdPlaylistUpdate(created))
	logger.Info("created playlist", "playlist", created.ID, "tracks", len(snapshot))

	result := &CreateResult{Playlist: created}
	pending := newQueue(snapshot)
	total := pending.Len()

	for step := 1; ; step++ {
		track, ok := pending.Pop()
		if !ok {
			break
		}

		e.sendProgress(attachTrackUpdate(step, total, track))

		if err := e.attach(ctx, created.ID, track); err != nil {
			logger.Warn("failed to attach track", "playlist", created.ID, "track", track.Key(), "error", err)
			result.Failed = append(result.Failed, AttachFailure{Track: track, Err: err})
			continue
		}
		result.Attached = append(result.Attached, track)
	}

	if cart != nil {
		cart.Clear()
	}
	result.CloseCart = true

	if result.Partial() {
		e.notify(models.NoticeError, "Created %q but %d of %d tracks could not be added", created.Title, len(result.Failed), total)
	} else {
		e.notify(models.NoticeSuccess, "Created %q with %d tracks", created.Title, len(result.Attached))
	}

	if _, err := e.Refresh(ctx); err != nil {
		logger.Warn("refresh after create failed", "error", err)
	}

	return result, nil
}

func (e *PlaylistEngine) attach(ctx context.Context, playlistID int, track models.Track) error {
	if !track.HasID() {
		return fmt.Errorf("%w: %s has no catalog id", shared.ErrTrackNotFound, track.Title)
	}
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return e.client.AddMusic(ctx, playlistID, track.MusicNo)
}

// Edit replaces a playlist's title and description, then refreshes.
func (e *PlaylistEngine) Edit(ctx context.Context, id int, title, description string) error {
	logger := e.opLogger("edit")

	title = strings.TrimSpace(title)
	if title == "" {
		e.notify(models.NoticeWarning, "Playlist title is required")
		return fmt.Errorf("%w: playlist title is required", shared.ErrInvalidInput)
	}

	e.sendProgress(updatePlaylistUpdate(id, title))

	if err := e.client.UpdatePlaylist(ctx, id, title, description); err != nil {
		logger.Error("failed to update playlist", "playlist", id, "error", err)
		e.notify(models.NoticeError, "Failed to update playlist: %s", services.Message(err))
		return fmt.Errorf("failed to update playlist %d: %w", id, err)
	}

	e.notify(models.NoticeSuccess, "Updated %q", title)

	if _, err := e.Refresh(ctx); err != nil {
		logger.Warn("refresh after edit failed", "error", err)
	}
	return nil
}

// Rename changes the title and keeps the loaded description.
func (e *PlaylistEngine) Rename(ctx context.Context, id int, title string) error {
	description := ""
	if pl, ok := e.Playlist(id); ok {
		description = pl.Description
	}
	return e.Edit(ctx, id, title, description)
}

// Delete removes a playlist once confirmer agrees. Without agreement no call is made
// and [shared.ErrNotConfirmed] is returned.
func (e *PlaylistEngine) Delete(ctx context.Context, id int, confirmer Confirmer) error {
	logger := e.opLogger("delete")

	name := fmt.Sprintf("playlist %d", id)
	if pl, ok := e.Playlist(id); ok {
		name = fmt.Sprintf("%q", pl.Title)
	}

	if confirmer == nil || !confirmer.Confirm(fmt.Sprintf("Delete %s? This cannot be undone.", name)) {
		e.notify(models.NoticeInfo, "Delete cancelled")
		return shared.ErrNotConfirmed
	}

	e.sendProgress(deletePlaylistUpdate(id))

	if err := e.client.DeletePlaylist(ctx, id); err != nil {
		logger.Error("failed to delete playlist", "playlist", id, "error", err)
		e.notify(models.NoticeError, "Failed to delete %s: %s", name, services.Message(err))
		return fmt.Errorf("failed to delete playlist %d: %w", id, err)
	}

	e.mu.Lock()
	if e.selected == id {
		e.selected = 0
	}
	e.mu.Unlock()

	e.notify(models.NoticeSuccess, "Deleted %s", name)

	if _, err := e.Refresh(ctx); err != nil {
		logger.Warn("refresh after delete failed", "error", err)
	}
	return nil
}

// DetachTrack removes a track and reloads only that playlist's tracks.
func (e *PlaylistEngine) DetachTrack(ctx context.Context, id, musicNo int) error {
	logger := e.opLogger("detach")

	e.sendProgress(detachTrackUpdate(id, musicNo))

	if err := e.client.RemoveMusic(ctx, id, musicNo); err != nil {
		if services.NotFound(err) && e.patchTracks(ctx, id) == nil && !e.loaded(id) {
			logger.Info("playlist deleted elsewhere", "playlist", id)
			return nil
		}
		logger.Error("failed to remove track", "playlist", id, "music_no", musicNo, "error", err)
		e.notify(models.NoticeError, "Failed to remove track: %s", services.Message(err))
		return fmt.Errorf("failed to remove track %d from playlist %d: %w", musicNo, id, err)
	}

	if err := e.patchTracks(ctx, id); err != nil {
		logger.Warn("failed to reload playlist", "playlist", id, "error", err)
		e.notify(models.NoticeWarning, "Track removed but the playlist could not be reloaded")
		return fmt.Errorf("track removed but reload of playlist %d failed: %w", id, err)
	}

	e.notify(models.NoticeSuccess, "Removed track")
	return nil
}

// AttachTrack adds one catalog track to an existing playlist and reloads its tracks.
func (e *PlaylistEngine) AttachTrack(ctx context.Context, id int, track models.Track) error {
	logger := e.opLogger("attach")

	if !track.HasID() {
		e.notify(models.NoticeWarning, "%s is not in the catalog", track.Title)
		return fmt.Errorf("%w: %s has no catalog id", shared.ErrInvalidInput, track.Title)
	}

	e.sendProgress(attachTrackUpdate(1, 1, track))

	if err := e.client.AddMusic(ctx, id, track.MusicNo); err != nil {
		logger.Error("failed to add track", "playlist", id, "music_no", track.MusicNo, "error", err)
		e.notify(models.NoticeError, "Failed to add %s: %s", track.Title, services.Message(err))
		return fmt.Errorf("failed to add track %d to playlist %d: %w", track.MusicNo, id, err)
	}

	if err := e.patchTracks(ctx, id); err != nil {
		logger.Warn("failed to reload playlist", "playlist", id, "error", err)
		e.notify(models.NoticeWarning, "Track added but the playlist could not be reloaded")
		return fmt.Errorf("track added but reload of playlist %d failed: %w", id, err)
	}

	e.notify(models.NoticeSuccess, "Added %s", track.Title)
	return nil
}
