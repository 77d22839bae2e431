package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/services"
	"github.com/desertthunder/listify/internal/shared"
)

// PlaylistClient is the playlist half of the backend client.
type PlaylistClient interface {
	UserPlaylists(ctx context.Context, userNo int) ([]models.Playlist, error)
	PlaylistMusic(ctx context.Context, playlistID int) ([]models.Track, error)
	CreatePlaylist(ctx context.Context, title, description string) (models.Playlist, error)
	UpdatePlaylist(ctx context.Context, playlistID int, title, description string) error
	DeletePlaylist(ctx context.Context, playlistID int) error
	AddMusic(ctx context.Context, playlistID, musicNo int) error
	RemoveMusic(ctx context.Context, playlistID, musicNo int) error
}

// UserSource identifies whose playlists are loaded.
type UserSource interface {
	UserNo() int
}

// Notifier receives user-facing outcomes.
type Notifier interface {
	Notify(models.Notice)
}

// Confirmer gates irreversible actions.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Clearer is emptied once a create-from-cart run finishes.
type Clearer interface {
	Clear()
}

// NotifyFunc adapts a function to [Notifier].
type NotifyFunc func(models.Notice)

func (f NotifyFunc) Notify(n models.Notice) { f(n) }

// ConfirmFunc adapts a function to [Confirmer].
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// EngineOpts configures optional engine collaborators.
type EngineOpts struct {
	Notifier        Notifier
	Logger          *log.Logger
	Progress        chan<- ProgressUpdate
	AttachRateLimit float64 // attach calls per second; 0 disables pacing
}

// PlaylistEngine owns the playlist collection and the selected playlist.
type PlaylistEngine struct {
	client   PlaylistClient
	users    UserSource
	notifier Notifier
	logger   *log.Logger
	progress chan<- ProgressUpdate
	limiter  *rate.Limiter

	mu         sync.Mutex
	playlists  []models.Playlist
	selected   int
	generation uint64
}

// NewPlaylistEngine creates an engine with an empty collection.
func NewPlaylistEngine(client PlaylistClient, users UserSource, opts EngineOpts) *PlaylistEngine {
	e := &PlaylistEngine{
		client:   client,
		users:    users,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		progress: opts.Progress,
	}
	if e.notifier == nil {
		e.notifier = NotifyFunc(func(models.Notice) {})
	}
	if e.logger == nil {
		e.logger = shared.NewLogger(nil)
	}
	if opts.AttachRateLimit > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(opts.AttachRateLimit), 1)
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PlaylistEngine) sendProgress(update ProgressUpdate) {
	if e.progress == nil {
		return
	}
	select {
	case e.progress <- update:
	default:
	}
}

func (e *PlaylistEngine) notify(level models.NoticeLevel, format string, args ...any) {
	e.notifier.Notify(models.Notice{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (e *PlaylistEngine) opLogger(op string) *log.Logger {
	return shared.WithLogger(e.logger, "op", op, "request_id", shared.GenerateID())
}

// Refresh replaces the collection with server truth.
//
// Track lists are fetched one playlist at a time. A failed track fetch leaves
// that playlist with no tracks. A refresh that completes after a newer one
// has started is discarded and the current collection is returned.
func (e *PlaylistEngine) Refresh(ctx context.Context) ([]models.Playlist, error) {
	logger := e.opLogger("refresh")

	userNo := e.users.UserNo()
	if userNo == 0 {
		e.notify(models.NoticeWarning, "Sign in to load your playlists")
		return nil, shared.ErrNotAuthenticated
	}

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	e.sendProgress(fetchPlaylistsUpdate())

	metas, err := e.client.UserPlaylists(ctx, userNo)
	if err != nil {
		logger.Error("failed to fetch playlists", "user_no", userNo, "error", err)
		e.notify(models.NoticeError, "Failed to load playlists: %s", services.Message(err))
		return nil, fmt.Errorf("failed to fetch playlists: %w", err)
	}

	pending := newQueue(metas)
	total := pending.Len()
	loaded := make([]models.Playlist, 0, total)

	for step := 1; ; step++ {
		pl, ok := pending.Pop()
		if !ok {
			break
		}

		e.sendProgress(fetchTracksUpdate(step, total, pl))

		tracks, err := e.client.PlaylistMusic(ctx, pl.ID)
		if err != nil {
			logger.Warn("failed to fetch playlist tracks", "playlist", pl.ID, "error", err)
			tracks = []models.Track{}
		}
		if tracks == nil {
			tracks = []models.Track{}
		}
		pl.Tracks = tracks
		loaded = append(loaded, pl)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		logger.Debug("discarding superseded refresh", "generation", gen, "current", e.generation)
		return clonePlaylists(e.playlists), nil
	}

	e.playlists = loaded
	if e.selected != 0 && e.indexOf(e.selected) < 0 {
		e.selected = 0
	}

	logger.Debug("refreshed playlists", "count", len(loaded))
	return clonePlaylists(loaded), nil
}

// Select marks id as the playlist being viewed. It reports false if id is not loaded.
func (e *PlaylistEngine) Select(id int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.indexOf(id) < 0 {
		return false
	}
	e.selected = id
	return true
}

// Selected returns the playlist being viewed.
func (e *PlaylistEngine) Selected() (models.Playlist, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if i := e.indexOf(e.selected); e.selected != 0 && i >= 0 {
		return clonePlaylist(e.playlists[i]), true
	}
	return models.Playlist{}, false
}

func (e *PlaylistEngine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = 0
}

// Playlists returns a copy of the collection in server order.
func (e *PlaylistEngine) Playlists() []models.Playlist {
	e.mu.Lock()
	defer e.mu.Unlock()
	return clonePlaylists(e.playlists)
}

// Playlist returns a copy of the loaded playlist with id.
func (e *PlaylistEngine) Playlist(id int) (models.Playlist, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if i := e.indexOf(id); i >= 0 {
		return clonePlaylist(e.playlists[i]), true
	}
	return models.Playlist{}, false
}

// indexOf must be called with mu held.
func (e *PlaylistEngine) indexOf(id int) int {
	for i, pl := range e.playlists {
		if pl.ID == id {
			return i
		}
	}
	return -1
}

// patchTracks re-fetches one playlist's tracks and replaces them by id.
// A playlist that is no longer loaded, or that the server no longer has, is
// skipped, and a selection pointing at it is dropped.
func (e *PlaylistEngine) patchTracks(ctx context.Context, id int) error {
	e.sendProgress(ProgressUpdate{Phase: FetchTracks, Step: 1, Total: 1, Message: fmt.Sprintf("Reloading playlist %d...", id)})

	tracks, err := e.client.PlaylistMusic(ctx, id)
	if services.NotFound(err) {
		e.forget(id)
		return nil
	}
	if err != nil {
		return err
	}
	if tracks == nil {
		tracks = []models.Track{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 {
		if e.selected == id {
			e.selected = 0
		}
		return nil
	}
	e.playlists[i].Tracks = tracks
	return nil
}

func (e *PlaylistEngine) loaded(id int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexOf(id) >= 0
}

// forget drops a playlist deleted elsewhere along with any selection of it.
func (e *PlaylistEngine) forget(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if i := e.indexOf(id); i >= 0 {
		e.playlists = append(e.playlists[:i], e.playlists[i+1:]...)
	}
	if e.selected == id {
		e.selected = 0
	}
}

func clonePlaylist(pl models.Playlist) models.Playlist {
	if pl.Tracks != nil {
		tracks := make([]models.Track, len(pl.Tracks))
		copy(tracks, pl.Tracks)
		pl.Tracks = tracks
	}
	return pl
}

func clonePlaylists(pls []models.Playlist) []models.Playlist {
	out := make([]models.Playlist, len(pls))
	for i, pl := range pls {
		out[i] = clonePlaylist(pl)
	}
	return out
}
