package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/listify/internal/models"
)

// ErrSettingNotFound is returned when no row exists for a key.
var ErrSettingNotFound = errors.New("setting not found")

// SettingRepository implements models.Repository[*models.Setting] for local key/value storage.
type SettingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new SettingRepository with the given database connection
func NewSettingRepository(db *sql.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Create inserts a new setting; the key must not exist yet
func (r *SettingRepository) Create(setting *models.Setting) error {
	if err := setting.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO settings (key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, setting.Key(), setting.Value(), setting.CreatedAt(), setting.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert setting: %w", err)
	}

	return nil
}

// Get retrieves a setting by key
func (r *SettingRepository) Get(key string) (*models.Setting, error) {
	query := `
		SELECT key, value, created_at, updated_at
		FROM settings
		WHERE key = ?
	`

	var (
		k         string
		value     string
		createdAt time.Time
		updatedAt time.Time
	)

	err := r.db.QueryRow(query, key).Scan(&k, &value, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSettingNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query setting: %w", err)
	}

	return models.RestoreSetting(k, value, createdAt, updatedAt), nil
}

// Update modifies the value of an existing setting
func (r *SettingRepository) Update(setting *models.Setting) error {
	if err := setting.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	setting.SetUpdatedAt(now)

	result, err := r.db.Exec(`UPDATE settings SET value = ?, updated_at = ? WHERE key = ?`, setting.Value(), now, setting.Key())
	if err != nil {
		return fmt.Errorf("failed to update setting: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrSettingNotFound, setting.Key())
	}

	return nil
}

// Upsert inserts the setting or replaces the value of an existing key
func (r *SettingRepository) Upsert(setting *models.Setting) error {
	if err := setting.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO settings (key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	now := time.Now()
	setting.SetUpdatedAt(now)

	if _, err := r.db.Exec(query, setting.Key(), setting.Value(), setting.CreatedAt(), now); err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}
	return nil
}

// Delete removes a setting by key
//
// Settings are hard-deleted: a logged-out token must not linger on disk.
func (r *SettingRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrSettingNotFound, key)
	}

	return nil
}

// List retrieves settings ordered by key. The "prefix" criterion filters by key prefix.
func (r *SettingRepository) List(criteria map[string]any) ([]*models.Setting, error) {
	query := `
		SELECT key, value, created_at, updated_at
		FROM settings
	`

	args := []any{}

	if prefix, ok := criteria["prefix"].(string); ok && prefix != "" {
		query += " WHERE key LIKE ? ESCAPE '\\'"
		args = append(args, escapeLike(prefix)+"%")
	}

	query += " ORDER BY key ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	var settings []*models.Setting
	for rows.Next() {
		var (
			k         string
			value     string
			createdAt time.Time
			updatedAt time.Time
		)
		if err := rows.Scan(&k, &value, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, models.RestoreSetting(k, value, createdAt, updatedAt))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return settings, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
