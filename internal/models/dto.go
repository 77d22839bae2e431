package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Envelope is the uniform wrapper every backend response is normalized into.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

// Track is a single playable catalog item.
//
// MusicNo is zero for externally-sourced search hits; SourceURL is the natural key either way.
type Track struct {
	MusicNo       int    `json:"music_no,omitempty"`
	Title         string `json:"track_name"`
	ArtistName    string `json:"artist_name"`
	AlbumImageURL string `json:"album_image_url,omitempty"`
	SourceURL     string `json:"spotify_url"`
}

// HasID reports whether the track carries a catalog id.
func (t Track) HasID() bool { return t.MusicNo > 0 }

// Key returns the identifier used for set membership.
func (t Track) Key() string { return t.SourceURL }

// Playlist is a persisted, user-owned, named ordered collection of tracks.
//
// Tracks is a projection fetched by a separate call and is not authoritative.
type Playlist struct {
	ID          int       `json:"playlist_no"`
	UserID      int       `json:"user_no"`
	Title       string    `json:"title"`
	Description string    `json:"content"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
	Tracks      []Track   `json:"music_items,omitempty"`
}

// PlaylistMusic is the payload of GET /playlist/{id}/music.
type PlaylistMusic struct {
	PlaylistID int     `json:"playlist_no"`
	Tracks     []Track `json:"music_list"`
	Count      int     `json:"count"`
}

// User is the signed-in account.
type User struct {
	ID              int    `json:"user_no"`
	Role            int    `json:"role_no"`
	Email           string `json:"email,omitempty"`
	Nickname        string `json:"nickname,omitempty"`
	ProfileImageURL string `json:"profile_url,omitempty"`
}

// Credentials is the token payload returned by POST /auth/login.
type Credentials struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// timestampLayouts are tried in order; Flask's jsonify emits RFC 1123 dates.
var timestampLayouts = []string{
	time.RFC3339Nano,
	http.TimeFormat,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Timestamp is a [time.Time] that decodes the date formats the backend emits.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses s with each known layout.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}
