// Package session holds the signed-in user's token and cached identity.
//
// [Store] is the single writer of session state. It persists through a [KV]
// so a restart can restore the session, and it implements [oauth2.TokenSource]
// so the API client can attach the bearer token.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/services"
	"github.com/desertthunder/listify/internal/shared"
)

// Keys written to the KV.
const (
	KeyToken      = "token"
	KeyUserNo     = "user_no"
	KeyRole       = "role_no"
	KeyEmail      = "email"
	KeyNickname   = "nickname"
	KeyProfileURL = "profile_url"
)

var allKeys = []string{KeyToken, KeyUserNo, KeyRole, KeyEmail, KeyNickname, KeyProfileURL}

// KV is durable key/value storage for session fields.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// Client is the subset of the backend used by the store.
type Client interface {
	Login(ctx context.Context, email, password string) (models.Credentials, error)
	Register(ctx context.Context, email, password, nickname string) error
	Verify(ctx context.Context, token string) (models.User, error)
	Profile(ctx context.Context, userNo int) (models.User, error)
	UpdateProfile(ctx context.Context, userNo int, nickname string) error
	DeleteAccount(ctx context.Context, userNo int) error
}

// Store holds the token and identity of the signed-in user.
type Store struct {
	mu     sync.RWMutex
	client Client
	kv     KV
	logger *log.Logger

	token string
	user  *models.User
}

// NewStore creates an empty store. Call [Store.Restore] to load a persisted session.
func NewStore(client Client, kv KV, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{client: client, kv: kv, logger: logger}
}

// Token implements [oauth2.TokenSource].
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: s.token, TokenType: "Bearer"}, nil
}

// UserNo returns the signed-in user's number, or 0.
func (s *Store) UserNo() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return 0
	}
	return s.user.ID
}

// User returns a copy of the cached identity.
func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Authenticated reports whether a verified user is present.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Restore loads a persisted token and verifies it. A missing token is not an error.
// A token the backend rejects is removed from the KV; one that could not be checked is kept.
func (s *Store) Restore(ctx context.Context) error {
	token, ok, err := s.kv.Get(KeyToken)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if !ok || token == "" {
		return nil
	}

	if err := s.Verify(ctx, token); err != nil {
		if errors.Is(err, shared.ErrTransport) {
			s.logger.Warn("could not verify stored session", "error", err)
			return err
		}
		s.logger.Warn("stored session is no longer valid", "error", err)
		if derr := s.kv.Delete(allKeys...); derr != nil {
			s.logger.Error("failed to clear rejected session", "error", derr)
		}
		return err
	}

	s.mu.Lock()
	s.loadCachedProfile()
	s.mu.Unlock()
	return nil
}

// Verify checks token with the backend. Any failure leaves the store signed out.
func (s *Store) Verify(ctx context.Context, token string) error {
	user, err := s.client.Verify(ctx, token)
	if err == nil && user.ID <= 0 {
		err = fmt.Errorf("%w: verify returned no user", shared.ErrAuthFailed)
	}
	if err != nil {
		s.mu.Lock()
		s.token, s.user = "", nil
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	return nil
}

// Login signs in, verifies the issued token and persists the identity.
//
// The profile fetch is best-effort; a failure there still leaves the user signed in.
func (s *Store) Login(ctx context.Context, email, password string) (models.User, error) {
	creds, err := s.client.Login(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}
	if creds.AccessToken == "" {
		return models.User{}, fmt.Errorf("%w: login returned no token", shared.ErrAuthFailed)
	}

	if err := s.Verify(ctx, creds.AccessToken); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	user := *s.user
	s.mu.Unlock()

	if profile, err := s.client.Profile(ctx, user.ID); err != nil {
		s.logger.Warn("failed to fetch profile", "user_no", user.ID, "error", err)
	} else {
		user = mergeProfile(user, profile)
	}
	if user.Email == "" {
		user.Email = email
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	if err := s.persist(creds.AccessToken, user); err != nil {
		s.logger.Error("failed to persist session", "error", err)
	}

	s.logger.Info("signed in", "user_no", user.ID)
	return user, nil
}

// Register creates an account without signing in.
func (s *Store) Register(ctx context.Context, email, password, nickname string) error {
	if email == "" || password == "" || nickname == "" {
		return fmt.Errorf("%w: email, password and nickname are required", shared.ErrInvalidInput)
	}
	return s.client.Register(ctx, email, password, nickname)
}

// Logout clears the session locally. The backend is not contacted.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.token, s.user = "", nil
	s.mu.Unlock()

	if err := s.kv.Delete(allKeys...); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// UpdateProfile changes the nickname and echoes it into the cache.
func (s *Store) UpdateProfile(ctx context.Context, nickname string) error {
	userNo := s.UserNo()
	if userNo == 0 {
		return shared.ErrNotAuthenticated
	}
	if nickname == "" {
		return fmt.Errorf("%w: nickname is required", shared.ErrInvalidInput)
	}

	if err := s.client.UpdateProfile(ctx, userNo, nickname); err != nil {
		return err
	}

	s.mu.Lock()
	if s.user != nil {
		s.user.Nickname = nickname
	}
	s.mu.Unlock()

	return s.kv.Set(KeyNickname, nickname)
}

// RefreshProfile fetches the profile and echoes it into the cache.
func (s *Store) RefreshProfile(ctx context.Context) (models.User, error) {
	userNo := s.UserNo()
	if userNo == 0 {
		return models.User{}, shared.ErrNotAuthenticated
	}

	profile, err := s.client.Profile(ctx, userNo)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return models.User{}, shared.ErrNotAuthenticated
	}
	merged := mergeProfile(*s.user, profile)
	s.user = &merged
	s.mu.Unlock()

	if err := s.cacheProfile(merged); err != nil {
		return merged, err
	}
	return merged, nil
}

// DeleteAccount deletes the account and signs out on success.
func (s *Store) DeleteAccount(ctx context.Context) error {
	userNo := s.UserNo()
	if userNo == 0 {
		return shared.ErrNotAuthenticated
	}

	if err := s.client.DeleteAccount(ctx, userNo); err != nil {
		return err
	}

	s.logger.Info("account deleted", "user_no", userNo)
	return s.Logout()
}

func (s *Store) persist(token string, user models.User) error {
	if err := s.kv.Set(KeyToken, token); err != nil {
		return err
	}
	if err := s.kv.Set(KeyUserNo, strconv.Itoa(user.ID)); err != nil {
		return err
	}
	if err := s.kv.Set(KeyRole, strconv.Itoa(user.Role)); err != nil {
		return err
	}
	return s.cacheProfile(user)
}

func (s *Store) cacheProfile(user models.User) error {
	var errs []error
	for key, value := range map[string]string{
		KeyEmail:      user.Email,
		KeyNickname:   user.Nickname,
		KeyProfileURL: user.ProfileImageURL,
	} {
		if value == "" {
			continue
		}
		if err := s.kv.Set(key, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// loadCachedProfile fills display fields the verify endpoint does not return.
// Callers must hold mu.
func (s *Store) loadCachedProfile() {
	if s.user == nil {
		return
	}
	if v, ok, _ := s.kv.Get(KeyEmail); ok {
		s.user.Email = v
	}
	if v, ok, _ := s.kv.Get(KeyNickname); ok {
		s.user.Nickname = v
	}
	if v, ok, _ := s.kv.Get(KeyProfileURL); ok {
		s.user.ProfileImageURL = v
	}
}

func mergeProfile(user, profile models.User) models.User {
	if profile.Email != "" {
		user.Email = profile.Email
	}
	if profile.Nickname != "" {
		user.Nickname = profile.Nickname
	}
	if profile.ProfileImageURL != "" {
		user.ProfileImageURL = profile.ProfileImageURL
	}
	return user
}

var (
	_ oauth2.TokenSource = (*Store)(nil)
	_ services.Identity  = (*Store)(nil)
	_ Client             = (*services.ListifyClient)(nil)
)
