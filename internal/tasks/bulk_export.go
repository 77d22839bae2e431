package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/listify/internal/formatter"
	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/shared"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	IDs        []int   // Playlists to export; empty exports the loaded collection
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: listify_export_{epoch})
	NumWorkers int     // Concurrent file writers (default: 4)
	RateLimit  float64 // Track fetches per second (default: 5)
	WithCover  bool    // Download the first album image for markdown exports
}

// PlaylistExportJob is one playlist with freshly fetched tracks, ready to be written.
type PlaylistExportJob struct {
	Playlist models.Playlist
}

// PlaylistExportResult is the outcome of exporting one playlist.
type PlaylistExportResult struct {
	PlaylistID   int      `json:"playlist_no"`
	PlaylistName string   `json:"title"`
	Success      bool     `json:"success"`
	Files        []string `json:"files,omitempty"`
	Error        error    `json:"-"`
	ErrorMessage string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export and is written as the manifest.
type BulkExportResult struct {
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	Format            string                 `json:"format"`
	Results           []PlaylistExportResult `json:"results"`
	ManifestPath      string                 `json:"-"`
}

// BulkExport writes playlists to disk.
//
// Tracks are fetched one playlist at a time, paced by a rate limiter, and handed
// to a pool of workers that render files. Partial failures are recorded in the
// result and in export_manifest.json.
func (e *PlaylistEngine) BulkExport(ctx context.Context, opts BulkExportOpts) (*BulkExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("listify_export_%d", time.Now().Unix())
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	targets := e.exportTargets(opts.IDs)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	logger := e.opLogger("bulk_export")
	result := &BulkExportResult{
		TotalPlaylists:  len(targets),
		OutputDirectory: opts.OutputDir,
		Format:          opts.Format,
		Results:         make([]PlaylistExportResult, 0, len(targets)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan PlaylistExportJob, len(targets))
	results := make(chan PlaylistExportResult, len(targets))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, target := range targets {
			if target.ID == 0 {
				results <- failedExport(target, shared.ErrPlaylistNotFound)
				continue
			}

			if err := limiter.Wait(ctx); err != nil {
				results <- failedExport(target, err)
				continue
			}

			e.sendProgress(exportingPlaylistUpdate(i+1, len(targets), target.Title))

			tracks, err := e.client.PlaylistMusic(ctx, target.ID)
			if err != nil {
				results <- failedExport(target, fmt.Errorf("failed to fetch tracks: %w", err))
				continue
			}
			target.Tracks = tracks

			jobs <- PlaylistExportJob{Playlist: target}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Error != nil {
			res.ErrorMessage = res.Error.Error()
		}
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(exportCompletedUpdate(completed, len(targets), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			logger.Warn("export failed", "playlist", res.PlaylistID, "error", res.Error)
			e.sendProgress(exportFailedUpdate(completed, len(targets), res.PlaylistName, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	logger.Info("export finished", "ok", result.SuccessfulExports, "failed", result.FailedExports)
	return result, nil
}

// exportTargets resolves ids against the loaded collection. Unknown ids yield a
// zero-id placeholder so they are reported as failures.
func (e *PlaylistEngine) exportTargets(ids []int) []models.Playlist {
	loaded := e.Playlists()
	if len(ids) == 0 {
		return loaded
	}

	byID := make(map[int]models.Playlist, len(loaded))
	for _, pl := range loaded {
		byID[pl.ID] = pl
	}

	targets := make([]models.Playlist, 0, len(ids))
	for _, id := range ids {
		if pl, ok := byID[id]; ok {
			targets = append(targets, pl)
		} else {
			targets = append(targets, models.Playlist{Title: fmt.Sprintf("Unknown (%d)", id)})
		}
	}
	return targets
}

// exportWorker is a worker goroutine that writes playlists from the jobs channel.
func (e *PlaylistEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan PlaylistExportJob,
	results chan<- PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if err := ctx.Err(); err != nil {
			results <- failedExport(job.Playlist, err)
			continue
		}

		files, err := formatter.Write(&job.Playlist, opts.Format, opts.OutputDir, opts.WithCover)
		if err != nil {
			results <- failedExport(job.Playlist, err)
			continue
		}

		results <- PlaylistExportResult{
			PlaylistID:   job.Playlist.ID,
			PlaylistName: job.Playlist.Title,
			Success:      true,
			Files:        files,
		}
	}
}

func failedExport(pl models.Playlist, err error) PlaylistExportResult {
	return PlaylistExportResult{
		PlaylistID:   pl.ID,
		PlaylistName: pl.Title,
		Error:        err,
	}
}
