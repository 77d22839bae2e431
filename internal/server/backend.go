package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/desertthunder/listify/internal/models"
)

// CatalogEntry is a seeded catalog track with the fields only the backend sees.
type CatalogEntry struct {
	Track models.Track
	Genre string
	Rank  int // 0 means unranked
}

type account struct {
	user     models.User
	password string
}

type failure struct {
	method string
	prefix string
	remain int
}

// Backend is an in-memory implementation of the Listify HTTP API.
//
// It is safe for concurrent use.
type Backend struct {
	mu        sync.Mutex
	logger    *log.Logger
	accounts  map[string]*account // by email
	tokens    map[string]int
	catalog   []CatalogEntry
	playlists map[int]*models.Playlist
	tracks    map[int][]int // playlist id -> music numbers
	failures  []*failure
	nextUser  int
	nextList  int
	now       func() time.Time
}

// NewBackend creates an empty backend serving catalog.
func NewBackend(catalog []CatalogEntry, logger *log.Logger) *Backend {
	return &Backend{
		logger:    logger,
		accounts:  map[string]*account{},
		tokens:    map[string]int{},
		catalog:   slices.Clone(catalog),
		playlists: map[int]*models.Playlist{},
		tracks:    map[int][]int{},
		nextUser:  1,
		nextList:  1,
		now:       time.Now,
	}
}

// AddUser registers an account directly and returns its user number.
func (b *Backend) AddUser(email, password, nickname string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUser(email, password, nickname)
}

func (b *Backend) addUser(email, password, nickname string) int {
	id := b.nextUser
	b.nextUser++
	b.accounts[email] = &account{
		user:     models.User{ID: id, Role: 2, Email: email, Nickname: nickname},
		password: password,
	}
	return id
}

// IssueToken signs in userNo without a password and returns the token.
func (b *Backend) IssueToken(userNo int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	token := uuid.NewString()
	b.tokens[token] = userNo
	return token
}

// FailOn makes the next n requests matching method and path prefix fail with
// a 500 envelope. An empty method matches every method.
func (b *Backend) FailOn(method, pathPrefix string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, &failure{method: method, prefix: pathPrefix, remain: n})
}

// PlaylistTracks returns the music numbers attached to a playlist.
func (b *Backend) PlaylistTracks(id int) []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.tracks[id])
}

// Validate resolves a bearer token. It satisfies [TokenValidator].
func (b *Backend) Validate(token string) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.tokens[token]
	return n, ok
}

// Mount registers every endpoint on r.
func (b *Backend) Mount(r Router) {
	auth := Bearer(b.Validate)
	guarded := func(h http.HandlerFunc) http.Handler { return b.inject(auth(h)) }
	open := func(h http.HandlerFunc) http.Handler { return b.inject(h) }

	r.Handle(http.MethodGet, "/music/search", open(b.searchMusic))
	r.Handle(http.MethodGet, "/music/top50", open(b.top50))
	r.Handle(http.MethodGet, "/music", open(b.listMusic))

	r.Handle(http.MethodPost, "/auth/login", open(b.login))
	r.Handle(http.MethodPost, "/auth/register", open(b.register))
	r.Handle(http.MethodGet, "/auth/verify", open(b.verify))

	r.Handle(http.MethodGet, "/playlist/{a}/{b}", open(b.playlistQuery))
	r.Handle(http.MethodPost, "/playlist", guarded(b.createPlaylist))
	r.Handle(http.MethodPut, "/playlist/{id}", guarded(b.updatePlaylist))
	r.Handle(http.MethodDelete, "/playlist/{id}", guarded(b.deletePlaylist))
	r.Handle(http.MethodPost, "/playlist/{id}/music/{music}", guarded(b.addMusic))
	r.Handle(http.MethodDelete, "/playlist/{id}/music/{music}", guarded(b.removeMusic))

	r.Handle(http.MethodGet, "/users/{id}/profile", guarded(b.profile))
	r.Handle(http.MethodPut, "/users/{id}/profile", guarded(b.updateProfile))
	r.Handle(http.MethodDelete, "/users/{id}", guarded(b.deleteAccount))
}

// Handler returns a router with the standard middleware and every endpoint mounted.
func (b *Backend) Handler() http.Handler {
	r := NewBasicRouter()
	r.Use(RequestID(), Logging(b.logger), Recover(b.logger))
	b.Mount(r)
	return r
}

func (b *Backend) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.shouldFail(r) {
			writeFailure(w, http.StatusInternalServerError, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) shouldFail(r *http.Request) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, f := range b.failures {
		if f.remain <= 0 {
			continue
		}
		if f.method != "" && f.method != r.Method {
			continue
		}
		if !strings.HasPrefix(r.URL.Path, f.prefix) {
			continue
		}
		f.remain--
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, env models.Envelope[any]) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, models.Envelope[any]{Success: true, Message: message, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.Envelope[any]{Success: false, Message: message})
}

func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, r.PathValue(name))
	}
	return n, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// callerNo checks that X-User-No names the token holder.
func callerNo(w http.ResponseWriter, r *http.Request) (int, bool) {
	tokenUser, _ := UserNoFrom(r.Context())
	header := r.Header.Get("X-User-No")
	if header == "" {
		writeFailure(w, http.StatusUnauthorized, "missing X-User-No")
		return 0, false
	}
	n, err := strconv.Atoi(header)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid user number")
		return 0, false
	}
	if n != tokenUser {
		writeFailure(w, http.StatusForbidden, "user number does not match token")
		return 0, false
	}
	return n, true
}

func (b *Backend) tracksWhere(keep func(CatalogEntry) bool) []models.Track {
	out := []models.Track{}
	for _, e := range b.catalog {
		if keep(e) {
			out = append(out, e.Track)
		}
	}
	return out
}

func (b *Backend) searchMusic(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	if q == "" {
		writeFailure(w, http.StatusBadRequest, "q is required")
		return
	}
	category := r.URL.Query().Get("category")

	b.mu.Lock()
	defer b.mu.Unlock()
	writeData(w, http.StatusOK, "", b.tracksWhere(func(e CatalogEntry) bool {
		title := strings.Contains(strings.ToLower(e.Track.Title), q)
		artist := strings.Contains(strings.ToLower(e.Track.ArtistName), q)
		switch category {
		case "title":
			return title
		case "artist":
			return artist
		case "genre":
			return strings.EqualFold(e.Genre, q)
		default:
			return title || artist
		}
	}))
}

func (b *Backend) listMusic(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	b.mu.Lock()
	defer b.mu.Unlock()

	if query.Get("category") == "genre" {
		genre := query.Get("value")
		writeData(w, http.StatusOK, "", b.tracksWhere(func(e CatalogEntry) bool {
			return strings.EqualFold(e.Genre, genre)
		}))
		return
	}
	writeData(w, http.StatusOK, "", b.tracksWhere(func(CatalogEntry) bool { return true }))
}

func (b *Backend) top50(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	ranked := make([]CatalogEntry, 0, len(b.catalog))
	for _, e := range b.catalog {
		if e.Rank > 0 {
			ranked = append(ranked, e)
		}
	}
	b.mu.Unlock()

	slices.SortStableFunc(ranked, func(x, y CatalogEntry) int { return x.Rank - y.Rank })
	if len(ranked) > 50 {
		ranked = ranked[:50]
	}

	out := make([]models.Track, len(ranked))
	for i, e := range ranked {
		out[i] = e.Track
	}
	writeData(w, http.StatusOK, "", out)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil || body.Email == "" || body.Password == "" {
		writeFailure(w, http.StatusBadRequest, "email and password are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[body.Email]
	if !ok || acct.password != body.Password {
		writeFailure(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token := uuid.NewString()
	b.tokens[token] = acct.user.ID
	writeData(w, http.StatusOK, "login successful", models.Credentials{AccessToken: token, TokenType: "Bearer"})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Nickname string `json:"nickname"`
	}
	if err := decodeBody(r, &body); err != nil || body.Email == "" || body.Password == "" || body.Nickname == "" {
		writeFailure(w, http.StatusBadRequest, "email, password and nickname are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[body.Email]; exists {
		writeFailure(w, http.StatusBadRequest, "email already registered")
		return
	}
	b.addUser(body.Email, body.Password, body.Nickname)
	writeData(w, http.StatusOK, "registration successful", nil)
}

func (b *Backend) verify(w http.ResponseWriter, r *http.Request) {
	Bearer(b.Validate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, _ := UserNoFrom(r.Context())
		b.mu.Lock()
		defer b.mu.Unlock()
		acct := b.accountByID(n)
		if acct == nil {
			writeFailure(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		writeData(w, http.StatusOK, "token is valid", models.User{ID: acct.user.ID, Role: acct.user.Role})
	})).ServeHTTP(w, r)
}

func (b *Backend) accountByID(id int) *account {
	for _, a := range b.accounts {
		if a.user.ID == id {
			return a
		}
	}
	return nil
}

// playlistQuery serves GET /playlist/user/{n} and GET /playlist/{id}/music.
func (b *Backend) playlistQuery(w http.ResponseWriter, r *http.Request) {
	a, c := r.PathValue("a"), r.PathValue("b")
	switch {
	case a == "user":
		b.userPlaylists(w, c)
	case c == "music":
		b.playlistMusic(w, a)
	default:
		writeFailure(w, http.StatusNotFound, "not found")
	}
}

func (b *Backend) userPlaylists(w http.ResponseWriter, raw string) {
	userNo, err := strconv.Atoi(raw)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid user number")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Playlist{}
	for _, p := range b.playlists {
		if p.UserID == userNo {
			out = append(out, *p)
		}
	}
	slices.SortFunc(out, func(x, y models.Playlist) int { return x.ID - y.ID })
	writeData(w, http.StatusOK, "", out)
}

func (b *Backend) playlistMusic(w http.ResponseWriter, raw string) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid playlist number")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.playlists[id]; !ok {
		writeFailure(w, http.StatusNotFound, "playlist not found")
		return
	}

	list := []models.Track{}
	for _, no := range b.tracks[id] {
		if t, ok := b.trackByNo(no); ok {
			list = append(list, t)
		}
	}
	writeData(w, http.StatusOK, "", models.PlaylistMusic{PlaylistID: id, Tracks: list, Count: len(list)})
}

func (b *Backend) trackByNo(no int) (models.Track, bool) {
	for _, e := range b.catalog {
		if e.Track.MusicNo == no {
			return e.Track, true
		}
	}
	return models.Track{}, false
}

func (b *Backend) createPlaylist(w http.ResponseWriter, r *http.Request) {
	userNo, ok := callerNo(w, r)
	if !ok {
		return
	}

	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil || strings.TrimSpace(body.Title) == "" {
		writeFailure(w, http.StatusBadRequest, "title is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	now := models.Timestamp{Time: b.now()}
	p := &models.Playlist{
		ID:          b.nextList,
		UserID:      userNo,
		Title:       body.Title,
		Description: body.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.nextList++
	b.playlists[p.ID] = p
	writeData(w, http.StatusCreated, "playlist created", *p)
}

// ownedPlaylist resolves the {id} path value to a playlist owned by the caller.
// b.mu must be held.
func (b *Backend) ownedPlaylist(w http.ResponseWriter, r *http.Request, userNo int) (*models.Playlist, bool) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	p, ok := b.playlists[id]
	if !ok {
		writeFailure(w, http.StatusNotFound, "playlist not found")
		return nil, false
	}
	if p.UserID != userNo {
		writeFailure(w, http.StatusForbidden, "only the owner may modify this playlist")
		return nil, false
	}
	return p, true
}

func (b *Backend) updatePlaylist(w http.ResponseWriter, r *http.Request) {
	userNo, ok := callerNo(w, r)
	if !ok {
		return
	}

	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil || strings.TrimSpace(body.Title) == "" {
		writeFailure(w, http.StatusBadRequest, "title is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.ownedPlaylist(w, r, userNo)
	if !ok {
		return
	}
	p.Title = body.Title
	p.Description = body.Content
	p.UpdatedAt = models.Timestamp{Time: b.now()}
	writeData(w, http.StatusOK, "playlist updated", nil)
}

func (b *Backend) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	userNo, ok := callerNo(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.ownedPlaylist(w, r, userNo)
	if !ok {
		return
	}
	delete(b.playlists, p.ID)
	delete(b.tracks, p.ID)
	writeData(w, http.StatusOK, "playlist deleted", nil)
}

func (b *Backend) addMusic(w http.ResponseWriter, r *http.Request) {
	userNo, ok := callerNo(w, r)
	if !ok {
		return
	}
	musicNo, err := pathInt(r, "music")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.ownedPlaylist(w, r, userNo)
	if !ok {
		return
	}
	if _, ok := b.trackByNo(musicNo); !ok {
		writeFailure(w, http.StatusNotFound, "music not found")
		return
	}
	if slices.Contains(b.tracks[p.ID], musicNo) {
		writeFailure(w, http.StatusBadRequest, "music already in playlist")
		return
	}
	b.tracks[p.ID] = append(b.tracks[p.ID], musicNo)
	writeData(w, http.StatusCreated, "music added", map[string]int{"playlist_no": p.ID, "music_no": musicNo})
}

func (b *Backend) removeMusic(w http.ResponseWriter, r *http.Request) {
	userNo, ok := callerNo(w, r)
	if !ok {
		return
	}
	musicNo, err := pathInt(r, "music")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.ownedPlaylist(w, r, userNo)
	if !ok {
		return
	}
	i := slices.Index(b.tracks[p.ID], musicNo)
	if i < 0 {
		writeFailure(w, http.StatusBadRequest, "music not in playlist")
		return
	}
	b.tracks[p.ID] = slices.Delete(b.tracks[p.ID], i, i+1)
	writeData(w, http.StatusOK, "music removed", nil)
}

// selfAccount resolves {id} to the token holder's account. b.mu must be held.
func (b *Backend) selfAccount(w http.ResponseWriter, r *http.Request) (*account, bool) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if tokenUser, _ := UserNoFrom(r.Context()); tokenUser != id {
		writeFailure(w, http.StatusForbidden, "cannot access another user's profile")
		return nil, false
	}
	acct := b.accountByID(id)
	if acct == nil {
		writeFailure(w, http.StatusNotFound, "user not found")
		return nil, false
	}
	return acct, true
}

func (b *Backend) profile(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.selfAccount(w, r)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, "", acct.user)
}

func (b *Backend) updateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Nickname string `json:"nickname"`
	}
	if err := decodeBody(r, &body); err != nil || strings.TrimSpace(body.Nickname) == "" {
		writeFailure(w, http.StatusBadRequest, "nickname is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.selfAccount(w, r)
	if !ok {
		return
	}
	acct.user.Nickname = body.Nickname
	writeData(w, http.StatusOK, "profile updated", nil)
}

func (b *Backend) deleteAccount(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.selfAccount(w, r)
	if !ok {
		return
	}

	delete(b.accounts, acct.user.Email)
	for token, n := range b.tokens {
		if n == acct.user.ID {
			delete(b.tokens, token)
		}
	}
	for id, p := range b.playlists {
		if p.UserID == acct.user.ID {
			delete(b.playlists, id)
			delete(b.tracks, id)
		}
	}
	writeData(w, http.StatusOK, "account deleted", nil)
}
