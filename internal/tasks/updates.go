package tasks

import (
	"fmt"

	"github.com/desertthunder/listify/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	CreatePlaylist Phase = iota
	AttachTracks
	FetchPlaylists
	FetchTracks
	DetachTrack
	DeletePlaylist
	UpdatePlaylist
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case CreatePlaylist:
		return "create_playlist"
	case AttachTracks:
		return "attach_tracks"
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchTracks:
		return "fetch_tracks"
	case DetachTrack:
		return "detach_track"
	case DeletePlaylist:
		return "delete_playlist"
	case UpdatePlaylist:
		return "update_playlist"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func fetchPlaylistsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: "Fetching playlists...",
	}
}

func fetchTracksUpdate(step, total int, pl models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Loading tracks for %s...", step, total, pl.Title),
	}
}

func createPlaylistUpdate(title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %s...", title),
	}
}

func createdPlaylistUpdate(pl models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %d)", pl.Title, pl.ID),
		Data:    pl,
	}
}

func attachTrackUpdate(step, total int, tr models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AttachTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, tr.ArtistName, tr.Title),
	}
}

func detachTrackUpdate(playlistID, musicNo int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DetachTrack,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Removing track %d from playlist %d...", musicNo, playlistID),
	}
}

func deletePlaylistUpdate(playlistID int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeletePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Deleting playlist %d...", playlistID),
	}
}

func updatePlaylistUpdate(playlistID int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UpdatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Updating playlist %d (%s)...", playlistID, title),
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
