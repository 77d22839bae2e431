// package formatter renders Listify playlists to CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ushis/m3u"

	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/shared"
)

// Format names accepted by [Write].
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatM3U      = "m3u"
)

// Formats lists the supported format names.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText, FormatM3U}

// ExportToCSV converts a playlist's tracks to CSV with columns: No, Title, Artist, Album Image, URL
func ExportToCSV(pl *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"No", "Title", "Artist", "Album Image", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range pl.Tracks {
		no := ""
		if track.HasID() {
			no = strconv.Itoa(track.MusicNo)
		}
		record := []string{no, track.Title, track.ArtistName, track.AlbumImageURL, track.SourceURL}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to Markdown with an optional cover image
func ExportToMarkdown(pl *models.Playlist, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", pl.Title)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if pl.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", pl.Description)
	}

	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(pl.Tracks))
	if !pl.UpdatedAt.IsZero() {
		fmt.Fprintf(&buf, "**Updated**: %s\n", pl.UpdatedAt.Format(time.DateOnly))
	}
	buf.WriteString("\n## Tracks\n\n")

	for i, track := range pl.Tracks {
		if track.SourceURL != "" {
			fmt.Fprintf(&buf, "%d. %s - [%s](%s)\n", i+1, track.ArtistName, track.Title, track.SourceURL)
		} else {
			fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.ArtistName, track.Title)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text
func ExportToText(pl *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", pl.Title)
	if pl.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", pl.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(pl.Tracks))

	for i, track := range pl.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.ArtistName, track.Title)
	}

	return buf.Bytes(), nil
}

// ExportToM3U converts a playlist to an extended M3U playlist of track URLs.
// Tracks without a URL are skipped; durations are unknown and written as -1.
func ExportToM3U(pl *models.Playlist) ([]byte, error) {
	plist := make(m3u.Playlist, 0, len(pl.Tracks))
	for _, track := range pl.Tracks {
		if track.SourceURL == "" {
			continue
		}
		plist = append(plist, m3u.Track{
			Title: fmt.Sprintf("%s - %s", track.ArtistName, track.Title),
			Path:  track.SourceURL,
			Time:  -1,
		})
	}

	var buf bytes.Buffer
	if _, err := plist.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write M3U: %w", err)
	}
	return buf.Bytes(), nil
}

// CoverImageURL returns the album image of the first track that has one.
func CoverImageURL(pl *models.Playlist) string {
	for _, track := range pl.Tracks {
		if track.AlbumImageURL != "" {
			return track.AlbumImageURL
		}
	}
	return ""
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without tracks)
func ToMetadataJSON(pl models.Playlist) ([]byte, error) {
	pl.Tracks = nil
	return shared.MarshalJSON(pl, true)
}

// Slug turns a playlist into a filesystem-safe base name: "{id}_{title}".
func Slug(pl *models.Playlist) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(pl.Title)) {
		switch {
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		case strings.ContainsRune(`/\:*?"<>|.`, r):
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return strconv.Itoa(pl.ID)
	}
	return fmt.Sprintf("%d_%s", pl.ID, b.String())
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV with an accompanying metadata JSON file.
//
// Creates {base}_tracks.csv and {base}_metadata.json; base defaults to the playlist slug.
func WriteCSVExport(pl *models.Playlist, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = Slug(pl)
	}

	csvData, err := ExportToCSV(pl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(*pl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a playlist to {dir}/README.md, with {dir}/cover.jpg when imageURL downloads.
//
// A failed cover download is logged and the README is written without it.
func WriteMarkdownExport(pl *models.Playlist, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = Slug(pl)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			log.Warn("failed to download cover image", "playlist", pl.ID, "error", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				log.Warn("failed to save cover image", "path", coverImagePath, "error", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(pl, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a playlist to plain text, defaulting to {slug}_tracks.txt.
func WriteTextExport(pl *models.Playlist, path string) (string, error) {
	if path == "" {
		path = Slug(pl) + "_tracks.txt"
	}

	textData, err := ExportToText(pl)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteM3UExport writes the playlist as {slug}.m3u unless path is given.
func WriteM3UExport(pl *models.Playlist, path string) (string, error) {
	if path == "" {
		path = Slug(pl) + ".m3u"
	}

	data, err := ExportToM3U(pl)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write M3U file: %w", err)
	}

	return path, nil
}

// WriteJSONExport writes the playlist with its tracks as indented JSON, defaulting to {slug}.json.
func WriteJSONExport(pl *models.Playlist, path string) (string, error) {
	if path == "" {
		path = Slug(pl) + ".json"
	}

	data, err := shared.MarshalJSON(pl, true)
	if err != nil {
		return "", fmt.Errorf("JSON marshal failed: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("JSON write failed: %w", err)
	}

	return path, nil
}

// Write exports pl into dir in the given format and returns the files created.
// withCover downloads the first album image for Markdown exports.
func Write(pl *models.Playlist, format, dir string, withCover bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	base := filepath.Join(dir, Slug(pl))

	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(pl, base)
		if err != nil {
			return nil, fmt.Errorf("CSV export failed: %w", err)
		}
		return []string{res.TracksFile, res.MetadataFile}, nil
	case FormatMarkdown:
		imageURL := ""
		if withCover {
			imageURL = CoverImageURL(pl)
		}
		res, err := WriteMarkdownExport(pl, base, imageURL)
		if err != nil {
			return nil, fmt.Errorf("markdown export failed: %w", err)
		}
		return res.Files, nil
	case FormatText:
		path, err := WriteTextExport(pl, base+"_tracks.txt")
		if err != nil {
			return nil, fmt.Errorf("text export failed: %w", err)
		}
		return []string{path}, nil
	case FormatM3U:
		path, err := WriteM3UExport(pl, base+".m3u")
		if err != nil {
			return nil, fmt.Errorf("m3u export failed: %w", err)
		}
		return []string{path}, nil
	case FormatJSON, "":
		path, err := WriteJSONExport(pl, base+".json")
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidInput, format)
	}
}
