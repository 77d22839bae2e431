package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ushis/m3u"

	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/shared"
	th "github.com/desertthunder/listify/internal/testing"
)

func samplePlaylist() *models.Playlist {
	return &models.Playlist{
		ID:          7,
		UserID:      3,
		Title:       "Late Night Drive",
		Description: "city lights",
		UpdatedAt:   models.Timestamp{Time: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		Tracks: []models.Track{
			{MusicNo: 1, Title: "Hype Boy", ArtistName: "NewJeans", SourceURL: "https://open.spotify.com/track/1"},
			{MusicNo: 2, Title: "Ditto", ArtistName: "NewJeans", AlbumImageURL: "https://img/2.jpg", SourceURL: "https://open.spotify.com/track/2"},
			{Title: "Untitled, Demo", ArtistName: "Someone"},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(samplePlaylist())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "No,Title,Artist,Album Image,URL\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,Hype Boy,NewJeans,,https://open.spotify.com/track/1") {
			t.Errorf("CSV missing first track, got: %s", output)
		}
		if !strings.Contains(output, `,"Untitled, Demo",Someone,,`) {
			t.Errorf("CSV should quote commas and leave missing ids blank, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		t.Run("without cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(samplePlaylist(), "")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			output := string(data)
			for _, want := range []string{
				"# Late Night Drive",
				"**Description**: city lights",
				"**Tracks**: 3",
				"**Updated**: 2024-05-01",
				"## Tracks",
				"1. NewJeans - [Hype Boy](https://open.spotify.com/track/1)",
				"3. Someone - Untitled, Demo",
			} {
				if !strings.Contains(output, want) {
					t.Errorf("Markdown missing %q", want)
				}
			}
			if strings.Contains(output, "![Cover]") {
				t.Error("Markdown should not contain cover image")
			}
		})

		t.Run("with cover image", func(t *testing.T) {
			data, _ := ExportToMarkdown(samplePlaylist(), "cover.jpg")
			if !strings.Contains(string(data), "![Cover](cover.jpg)") {
				t.Error("Markdown missing cover image")
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(samplePlaylist())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		want := "Playlist: Late Night Drive\nDescription: city lights\nTracks: 3\n\n1. NewJeans - Hype Boy\n2. NewJeans - Ditto\n3. Someone - Untitled, Demo\n"
		if string(data) != want {
			t.Errorf("unexpected text export:\n%s", data)
		}
	})

	t.Run("ExportToM3U", func(t *testing.T) {
		data, err := ExportToM3U(samplePlaylist())
		if err != nil {
			t.Fatalf("ExportToM3U failed: %v", err)
		}

		parsed, err := m3u.Parse(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("output is not valid M3U: %v", err)
		}
		if len(parsed) != 2 {
			t.Fatalf("expected tracks without URL to be skipped, got %d entries", len(parsed))
		}
		if parsed[0].Path != "https://open.spotify.com/track/1" || parsed[0].Title != "NewJeans - Hype Boy" {
			t.Errorf("unexpected first entry: %+v", parsed[0])
		}
	})

	t.Run("ToMetadataJSON Omits Tracks", func(t *testing.T) {
		pl := samplePlaylist()
		data, err := ToMetadataJSON(*pl)
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}
		if strings.Contains(string(data), "music_items") {
			t.Errorf("metadata should not include tracks: %s", data)
		}
		if len(pl.Tracks) != 3 {
			t.Error("ToMetadataJSON must not modify the caller's playlist")
		}
	})

	t.Run("CoverImageURL", func(t *testing.T) {
		if got := CoverImageURL(samplePlaylist()); got != "https://img/2.jpg" {
			t.Errorf("expected first album image, got %q", got)
		}
		if got := CoverImageURL(&models.Playlist{}); got != "" {
			t.Errorf("expected empty url, got %q", got)
		}
	})

	t.Run("Slug", func(t *testing.T) {
		tests := []struct {
			pl   models.Playlist
			want string
		}{
			{models.Playlist{ID: 7, Title: "Late Night Drive"}, "7_late-night-drive"},
			{models.Playlist{ID: 8, Title: "a/b:c?"}, "8_abc"},
			{models.Playlist{ID: 9, Title: "  "}, "9"},
		}

		for _, tt := range tests {
			if got := Slug(&tt.pl); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.pl.Title, got, tt.want)
			}
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "drive")

		res, err := WriteCSVExport(samplePlaylist(), base)
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}
		th.AssertFileExists(t, res.TracksFile)
		th.AssertFileExists(t, res.MetadataFile)

		var meta map[string]any
		if err := json.Unmarshal([]byte(th.MustReadFile(t, res.MetadataFile)), &meta); err != nil {
			t.Fatalf("metadata is not JSON: %v", err)
		}
		if meta["title"] != "Late Night Drive" {
			t.Errorf("unexpected metadata: %v", meta)
		}
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("Downloads Cover", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("jpeg-bytes"))
			}))
			defer server.Close()

			dir := filepath.Join(t.TempDir(), "md")
			res, err := WriteMarkdownExport(samplePlaylist(), dir, server.URL+"/cover")
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if res.CoverImage == "" || len(res.Files) != 2 {
				t.Fatalf("expected cover and README, got %+v", res)
			}
			if th.MustReadFile(t, res.CoverImage) != "jpeg-bytes" {
				t.Error("unexpected cover contents")
			}
			if !strings.Contains(th.MustReadFile(t, filepath.Join(dir, "README.md")), "![Cover](cover.jpg)") {
				t.Error("README should reference the cover")
			}
		})

		t.Run("Cover Failure Still Writes README", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			dir := filepath.Join(t.TempDir(), "md")
			res, err := WriteMarkdownExport(samplePlaylist(), dir, server.URL)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if res.CoverImage != "" || len(res.Files) != 1 {
				t.Errorf("expected README only, got %+v", res)
			}
		})
	})

	t.Run("WriteTextExport Fails On Missing Directory", func(t *testing.T) {
		_, err := WriteTextExport(samplePlaylist(), filepath.Join(t.TempDir(), "missing", "out.txt"))
		if err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("Write", func(t *testing.T) {
		tests := []struct {
			format string
			files  []string
		}{
			{FormatJSON, []string{"7_late-night-drive.json"}},
			{FormatCSV, []string{"7_late-night-drive_tracks.csv", "7_late-night-drive_metadata.json"}},
			{FormatText, []string{"7_late-night-drive_tracks.txt"}},
			{FormatM3U, []string{"7_late-night-drive.m3u"}},
			{FormatMarkdown, []string{filepath.Join("7_late-night-drive", "README.md")}},
		}

		for _, tt := range tests {
			t.Run(tt.format, func(t *testing.T) {
				dir := filepath.Join(t.TempDir(), "out")

				files, err := Write(samplePlaylist(), tt.format, dir, false)
				if err != nil {
					t.Fatalf("Write failed: %v", err)
				}
				if len(files) != len(tt.files) {
					t.Fatalf("expected %d files, got %v", len(tt.files), files)
				}
				for i, want := range tt.files {
					if files[i] != filepath.Join(dir, want) {
						t.Errorf("expected %s, got %s", filepath.Join(dir, want), files[i])
					}
					th.AssertFileExists(t, files[i])
				}
			})
		}

		t.Run("JSON Round Trips Tracks", func(t *testing.T) {
			files, err := Write(samplePlaylist(), FormatJSON, t.TempDir(), false)
			if err != nil {
				t.Fatalf("Write failed: %v", err)
			}

			data, _ := os.ReadFile(files[0])
			var pl models.Playlist
			if err := json.Unmarshal(data, &pl); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if len(pl.Tracks) != 3 || !pl.UpdatedAt.Equal(samplePlaylist().UpdatedAt.Time) {
				t.Errorf("unexpected decoded playlist: %+v", pl)
			}
		})

		t.Run("Unsupported Format", func(t *testing.T) {
			_, err := Write(samplePlaylist(), "xml", t.TempDir(), false)
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("Empty URL", func(t *testing.T) {
		if _, err := DownloadImage(""); err == nil {
			t.Error("expected error for empty URL")
		}
	})

	t.Run("Non-200", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := DownloadImage(server.URL)
		if err == nil || !strings.Contains(err.Error(), "status 500") {
			t.Errorf("expected status error, got %v", err)
		}
	})
}
