package repositories

import (
	"errors"
	"fmt"

	"github.com/desertthunder/listify/internal/models"
)

// sessionPrefix namespaces session keys inside the settings table.
const sessionPrefix = "session."

// SessionCacheAdapter implements session.KV using SettingRepository.
//
// Keys are stored under a "session." prefix so Clear never touches unrelated settings.
type SessionCacheAdapter struct {
	repo *SettingRepository
}

// NewSessionCacheAdapter creates a new SessionCacheAdapter with the given repository
func NewSessionCacheAdapter(repo *SettingRepository) *SessionCacheAdapter {
	return &SessionCacheAdapter{repo: repo}
}

// Get returns the stored value and whether the key was present.
func (a *SessionCacheAdapter) Get(key string) (string, bool, error) {
	s, err := a.repo.Get(sessionPrefix + key)
	if errors.Is(err, ErrSettingNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s.Value(), true, nil
}

// Set writes the value for key, replacing any previous value.
func (a *SessionCacheAdapter) Set(key, value string) error {
	if err := a.repo.Upsert(models.NewSetting(sessionPrefix+key, value)); err != nil {
		return fmt.Errorf("failed to cache session value %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys. Missing keys are ignored.
func (a *SessionCacheAdapter) Delete(keys ...string) error {
	for _, key := range keys {
		err := a.repo.Delete(sessionPrefix + key)
		if err != nil && !errors.Is(err, ErrSettingNotFound) {
			return fmt.Errorf("failed to delete session value %s: %w", key, err)
		}
	}
	return nil
}

// Keys lists the session keys currently stored, without the namespace prefix.
func (a *SessionCacheAdapter) Keys() ([]string, error) {
	settings, err := a.repo.List(map[string]any{"prefix": sessionPrefix})
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(settings))
	for i, s := range settings {
		keys[i] = s.Key()[len(sessionPrefix):]
	}
	return keys, nil
}
