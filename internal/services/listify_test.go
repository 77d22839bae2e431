package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-test/deep"

	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/shared"
	tu "github.com/desertthunder/listify/internal/testing"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// newCapturingServer replies with reply for every request and records what was sent.
func newCapturingServer(t *testing.T, reply string) (*ListifyClient, *[]capturedRequest) {
	t.Helper()

	var got []capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := capturedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			json.Unmarshal(data, &req.Body)
		}
		got = append(got, req)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)

	api := NewAPIService(server.URL, server.Client())
	api.SetIdentity(tu.StaticIdentity{AccessToken: "tok", User: 3})
	return NewListifyClient(api), &got
}

func TestListifyClient(t *testing.T) {
	ctx := context.Background()

	t.Run("Catalog", func(t *testing.T) {
		reply := `{"success": true, "data": [{"music_no": 1, "track_name": "Hype Boy", "artist_name": "NewJeans", "spotify_url": "https://open.spotify.com/track/1"}]}`

		tests := []struct {
			name  string
			call  func(c *ListifyClient) ([]models.Track, error)
			path  string
			query string
		}{
			{"SearchMusic", func(c *ListifyClient) ([]models.Track, error) { return c.SearchMusic(ctx, "hype boy", "") }, "/music/search", "q=hype+boy"},
			{"SearchMusic With Category", func(c *ListifyClient) ([]models.Track, error) { return c.SearchMusic(ctx, "newjeans", "artist") }, "/music/search", "category=artist&q=newjeans"},
			{"MusicByGenre", func(c *ListifyClient) ([]models.Track, error) { return c.MusicByGenre(ctx, "K-Pop") }, "/music", "category=genre&value=K-Pop"},
			{"AllMusic", func(c *ListifyClient) ([]models.Track, error) { return c.AllMusic(ctx) }, "/music", ""},
			{"Top50", func(c *ListifyClient) ([]models.Track, error) { return c.Top50(ctx) }, "/music/top50", ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				client, got := newCapturingServer(t, reply)

				tracks, err := tt.call(client)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				want := []models.Track{{MusicNo: 1, Title: "Hype Boy", ArtistName: "NewJeans", SourceURL: "https://open.spotify.com/track/1"}}
				if diff := deep.Equal(tracks, want); diff != nil {
					t.Error(diff)
				}

				req := (*got)[0]
				if req.Method != http.MethodGet || req.Path != tt.path || req.Query != tt.query {
					t.Errorf("unexpected request: %+v", req)
				}
			})
		}
	})

	t.Run("Login", func(t *testing.T) {
		client, got := newCapturingServer(t, `{"success": true, "data": {"access_token": "abc", "token_type": "Bearer"}}`)

		creds, err := client.Login(ctx, "a@b.c", "pw")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creds.AccessToken != "abc" || creds.TokenType != "Bearer" {
			t.Errorf("unexpected credentials: %+v", creds)
		}
		if (*got)[0].Body["email"] != "a@b.c" || (*got)[0].Body["password"] != "pw" {
			t.Errorf("unexpected body: %v", (*got)[0].Body)
		}
	})

	t.Run("Login Failure", func(t *testing.T) {
		client, _ := newCapturingServer(t, `{"success": false, "message": "wrong password"}`)

		_, err := client.Login(ctx, "a@b.c", "nope")
		if !errors.Is(err, shared.ErrEnvelope) {
			t.Fatalf("expected envelope error, got %v", err)
		}
		if Message(err) != "wrong password" {
			t.Errorf("expected server message, got %q", Message(err))
		}
	})

	t.Run("Verify", func(t *testing.T) {
		client, _ := newCapturingServer(t, `{"success": true, "data": {"user_no": 3, "role_no": 1}}`)

		user, err := client.Verify(ctx, "abc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != 3 || user.Role != 1 {
			t.Errorf("unexpected user: %+v", user)
		}
	})

	t.Run("PlaylistMusic Unwraps Payload", func(t *testing.T) {
		client, got := newCapturingServer(t, `{"success": true, "data": {"playlist_no": 9, "count": 1, "music_list": [{"music_no": 4, "track_name": "Ditto", "artist_name": "NewJeans", "spotify_url": "u4"}]}}`)

		tracks, err := client.PlaylistMusic(ctx, 9)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tracks) != 1 || tracks[0].MusicNo != 4 {
			t.Errorf("unexpected tracks: %+v", tracks)
		}
		if (*got)[0].Path != "/playlist/9/music" {
			t.Errorf("unexpected path %s", (*got)[0].Path)
		}
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		client, got := newCapturingServer(t, `{"success": true, "data": {"playlist_no": 12, "user_no": 3, "title": "Drive", "content": "night"}}`)

		pl, err := client.CreatePlaylist(ctx, "Drive", "night")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pl.ID != 12 || pl.Title != "Drive" || pl.Description != "night" {
			t.Errorf("unexpected playlist: %+v", pl)
		}

		req := (*got)[0]
		if req.Method != http.MethodPost || req.Path != "/playlist" {
			t.Errorf("unexpected request: %+v", req)
		}
		if req.Body["title"] != "Drive" || req.Body["content"] != "night" {
			t.Errorf("unexpected body: %v", req.Body)
		}
	})

	t.Run("Mutations", func(t *testing.T) {
		tests := []struct {
			name   string
			call   func(c *ListifyClient) error
			method string
			path   string
		}{
			{"Register", func(c *ListifyClient) error { return c.Register(ctx, "a@b.c", "pw", "mina") }, http.MethodPost, "/auth/register"},
			{"UpdatePlaylist", func(c *ListifyClient) error { return c.UpdatePlaylist(ctx, 5, "t", "d") }, http.MethodPut, "/playlist/5"},
			{"DeletePlaylist", func(c *ListifyClient) error { return c.DeletePlaylist(ctx, 5) }, http.MethodDelete, "/playlist/5"},
			{"AddMusic", func(c *ListifyClient) error { return c.AddMusic(ctx, 5, 8) }, http.MethodPost, "/playlist/5/music/8"},
			{"RemoveMusic", func(c *ListifyClient) error { return c.RemoveMusic(ctx, 5, 8) }, http.MethodDelete, "/playlist/5/music/8"},
			{"UpdateProfile", func(c *ListifyClient) error { return c.UpdateProfile(ctx, 3, "neo") }, http.MethodPut, "/users/3/profile"},
			{"DeleteAccount", func(c *ListifyClient) error { return c.DeleteAccount(ctx, 3) }, http.MethodDelete, "/users/3"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				client, got := newCapturingServer(t, `{"success": true, "message": "done"}`)

				if err := tt.call(client); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				req := (*got)[0]
				if req.Method != tt.method || req.Path != tt.path {
					t.Errorf("expected %s %s, got %s %s", tt.method, tt.path, req.Method, req.Path)
				}
			})

			t.Run(tt.name+" Failure", func(t *testing.T) {
				client, _ := newCapturingServer(t, `{"success": false, "message": "denied"}`)

				if err := tt.call(client); !errors.Is(err, shared.ErrEnvelope) {
					t.Errorf("expected envelope error, got %v", err)
				}
			})
		}
	})

	t.Run("Profile", func(t *testing.T) {
		client, got := newCapturingServer(t, `{"success": true, "data": {"user_no": 3, "email": "a@b.c", "nickname": "mina", "profile_url": "p.png"}}`)

		user, err := client.Profile(ctx, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := models.User{ID: 3, Email: "a@b.c", Nickname: "mina", ProfileImageURL: "p.png"}
		if diff := deep.Equal(user, want); diff != nil {
			t.Error(diff)
		}
		if (*got)[0].Path != "/users/3/profile" {
			t.Errorf("unexpected path %s", (*got)[0].Path)
		}
	})

	t.Run("UserPlaylists", func(t *testing.T) {
		client, got := newCapturingServer(t, `{"success": true, "data": [{"playlist_no": 1, "user_no": 3, "title": "A", "content": "", "created_at": "Mon, 02 Jan 2006 15:04:05 GMT"}]}`)

		pls, err := client.UserPlaylists(ctx, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pls) != 1 || pls[0].ID != 1 || pls[0].CreatedAt.IsZero() {
			t.Errorf("unexpected playlists: %+v", pls)
		}
		if (*got)[0].Path != "/playlist/user/3" {
			t.Errorf("unexpected path %s", (*got)[0].Path)
		}
	})

	t.Run("Transport Failure", func(t *testing.T) {
		client := NewListifyClient(NewAPIService("http://example.com", &http.Client{
			Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused")),
		}))

		if _, err := client.AllMusic(ctx); !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected transport error, got %v", err)
		}
		if err := client.DeletePlaylist(ctx, 1); !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected transport error, got %v", err)
		}
	})
}
