package models

import (
	"fmt"
	"strings"
	"time"
)

// Setting is a persisted key/value pair in local durable storage.
type Setting struct {
	key       string
	value     string
	createdAt time.Time
	updatedAt time.Time
}

// NewSetting creates a Setting with both timestamps set to now.
func NewSetting(key, value string) *Setting {
	now := time.Now()
	return &Setting{key: key, value: value, createdAt: now, updatedAt: now}
}

// RestoreSetting rebuilds a Setting from stored columns.
func RestoreSetting(key, value string, createdAt, updatedAt time.Time) *Setting {
	return &Setting{key: key, value: value, createdAt: createdAt, updatedAt: updatedAt}
}

func (s *Setting) ID() string           { return s.key }
func (s *Setting) Key() string          { return s.key }
func (s *Setting) Value() string        { return s.value }
func (s *Setting) CreatedAt() time.Time { return s.createdAt }
func (s *Setting) UpdatedAt() time.Time { return s.updatedAt }

func (s *Setting) SetValue(v string)        { s.value = v }
func (s *Setting) SetUpdatedAt(t time.Time) { s.updatedAt = t }

// Validate requires a non-blank key.
func (s *Setting) Validate() error {
	if strings.TrimSpace(s.key) == "" {
		return fmt.Errorf("setting key is required")
	}
	return nil
}
