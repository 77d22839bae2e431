package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/listify/internal/models"
)

// ListifyClient wraps the backend endpoints with typed methods.
type ListifyClient struct {
	api *APIService
}

// NewListifyClient creates a client that sends every request through api.
func NewListifyClient(api *APIService) *ListifyClient {
	return &ListifyClient{api: api}
}

// API returns the underlying raw service.
func (c *ListifyClient) API() *APIService { return c.api }

func get[T any](ctx context.Context, api *APIService, path string) (T, error) {
	resp, err := api.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](resp)
}

func send(ctx context.Context, api *APIService, method, path string, body any) error {
	resp, err := api.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	return Check(resp)
}

// SearchMusic calls GET /music/search. category is omitted when empty.
func (c *ListifyClient) SearchMusic(ctx context.Context, query, category string) ([]models.Track, error) {
	params := url.Values{}
	params.Set("q", query)
	if category != "" {
		params.Set("category", category)
	}
	return get[[]models.Track](ctx, c.api, "/music/search?"+params.Encode())
}

// MusicByGenre lists catalog tracks tagged with a canonical genre name.
func (c *ListifyClient) MusicByGenre(ctx context.Context, genre string) ([]models.Track, error) {
	params := url.Values{}
	params.Set("category", "genre")
	params.Set("value", genre)
	return get[[]models.Track](ctx, c.api, "/music?"+params.Encode())
}

// AllMusic lists the whole catalog.
func (c *ListifyClient) AllMusic(ctx context.Context) ([]models.Track, error) {
	return get[[]models.Track](ctx, c.api, "/music")
}

// Top50 lists the ranked catalog.
func (c *ListifyClient) Top50(ctx context.Context) ([]models.Track, error) {
	return get[[]models.Track](ctx, c.api, "/music/top50")
}

// Login exchanges credentials for an access token.
func (c *ListifyClient) Login(ctx context.Context, email, password string) (models.Credentials, error) {
	resp, err := c.api.Do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return models.Credentials{}, err
	}
	return Decode[models.Credentials](resp)
}

// Register creates an account. It does not sign in.
func (c *ListifyClient) Register(ctx context.Context, email, password, nickname string) error {
	return send(ctx, c.api, http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"nickname": nickname,
	})
}

// Verify checks token and returns the identity it belongs to (user_no and role_no only).
func (c *ListifyClient) Verify(ctx context.Context, token string) (models.User, error) {
	resp, err := c.api.DoWithToken(ctx, token, http.MethodGet, "/auth/verify", nil)
	if err != nil {
		return models.User{}, err
	}
	return Decode[models.User](resp)
}

// UserPlaylists lists playlist metadata owned by userNo. Tracks are not included.
func (c *ListifyClient) UserPlaylists(ctx context.Context, userNo int) ([]models.Playlist, error) {
	return get[[]models.Playlist](ctx, c.api, fmt.Sprintf("/playlist/user/%d", userNo))
}

// PlaylistMusic lists the tracks of one playlist.
func (c *ListifyClient) PlaylistMusic(ctx context.Context, playlistID int) ([]models.Track, error) {
	pm, err := get[models.PlaylistMusic](ctx, c.api, fmt.Sprintf("/playlist/%d/music", playlistID))
	if err != nil {
		return nil, err
	}
	return pm.Tracks, nil
}

// CreatePlaylist creates an empty playlist and returns it with its server-assigned id.
func (c *ListifyClient) CreatePlaylist(ctx context.Context, title, description string) (models.Playlist, error) {
	resp, err := c.api.Do(ctx, http.MethodPost, "/playlist", map[string]string{
		"title":   title,
		"content": description,
	})
	if err != nil {
		return models.Playlist{}, err
	}
	return Decode[models.Playlist](resp)
}

// UpdatePlaylist replaces the title and description of a playlist.
func (c *ListifyClient) UpdatePlaylist(ctx context.Context, playlistID int, title, description string) error {
	return send(ctx, c.api, http.MethodPut, fmt.Sprintf("/playlist/%d", playlistID), map[string]string{
		"title":   title,
		"content": description,
	})
}

// DeletePlaylist removes a playlist.
func (c *ListifyClient) DeletePlaylist(ctx context.Context, playlistID int) error {
	return send(ctx, c.api, http.MethodDelete, fmt.Sprintf("/playlist/%d", playlistID), nil)
}

// AddMusic attaches a catalog track to a playlist.
func (c *ListifyClient) AddMusic(ctx context.Context, playlistID, musicNo int) error {
	return send(ctx, c.api, http.MethodPost, fmt.Sprintf("/playlist/%d/music/%d", playlistID, musicNo), nil)
}

// RemoveMusic detaches a track from a playlist.
func (c *ListifyClient) RemoveMusic(ctx context.Context, playlistID, musicNo int) error {
	return send(ctx, c.api, http.MethodDelete, fmt.Sprintf("/playlist/%d/music/%d", playlistID, musicNo), nil)
}

// Profile fetches the profile of userNo.
func (c *ListifyClient) Profile(ctx context.Context, userNo int) (models.User, error) {
	return get[models.User](ctx, c.api, fmt.Sprintf("/users/%d/profile", userNo))
}

// UpdateProfile changes the nickname of userNo.
func (c *ListifyClient) UpdateProfile(ctx context.Context, userNo int, nickname string) error {
	return send(ctx, c.api, http.MethodPut, fmt.Sprintf("/users/%d/profile", userNo), map[string]string{
		"nickname": nickname,
	})
}

// DeleteAccount deletes the account of userNo.
func (c *ListifyClient) DeleteAccount(ctx context.Context, userNo int) error {
	return send(ctx, c.api, http.MethodDelete, fmt.Sprintf("/users/%d", userNo), nil)
}
