package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestSettingRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSettingRepository(db)
		if err := repo.Create(models.NewSetting("theme", "dark")); err != nil {
			t.Fatalf("failed to create setting: %v", err)
		}

		if err := repo.Create(models.NewSetting("theme", "light")); err == nil {
			t.Error("expected duplicate key to fail")
		}
	})

	t.Run("Create ValidationError", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSettingRepository(db)
		if err := repo.Create(models.NewSetting("", "x")); err == nil {
			t.Fatal("expected validation error for empty key")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSettingRepository(db)
		if err := repo.Create(models.NewSetting("theme", "dark")); err != nil {
			t.Fatalf("failed to create setting: %v", err)
		}

		got, err := repo.Get("theme")
		if err != nil {
			t.Fatalf("failed to get setting: %v", err)
		}
		if got.Value() != "dark" {
			t.Errorf("expected value dark, got %s", got.Value())
		}
	})

	t.Run("Get NotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewSettingRepository(db).Get("missing")
		if !errors.Is(err, ErrSettingNotFound) {
			t.Fatalf("expected ErrSettingNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSettingRepository(db)
		s := models.NewSetting("theme", "dark")
		if err := repo.Create(s); err != nil {
			t.Fatalf("failed to create setting: %v", err)
		}

		s.SetValue("light")
		if err := repo.Update(s); err != nil {
			t.Fatalf("failed to update setting: %v", err)
		}

		got, _ := repo.Get("theme")
		if got.Value() != "light" {
			t.Errorf("expected updated value light, got %s", got.Value())
		}

		if err := repo.Update(models.NewSetting("ghost", "x")); !errors.Is(err, ErrSettingNotFound) {
			t.Errorf("expected ErrSettingNotFound updating missing key, got %v", err)
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSettingRepository(db)
		if err := repo.Upsert(models.NewSetting("token", "a")); err != nil {
			t.Fatalf("first upsert: %v", err)
		}
		if err := repo.Upsert(models.NewSetting("token", "b")); err != nil {
			t.Fatalf("second upsert: %v", err)
		}

		got, err := repo.Get("token")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got.Value() != "b" {
			t.Errorf("expected b, got %s", got.Value())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSettingRepository(db)
		if err := repo.Create(models.NewSetting("theme", "dark")); err != nil {
			t.Fatalf("failed to create setting: %v", err)
		}
		if err := repo.Delete("theme"); err != nil {
			t.Fatalf("failed to delete setting: %v", err)
		}
		if _, err := repo.Get("theme"); err == nil {
			t.Error("expected error when getting deleted setting")
		}
		if err := repo.Delete("theme"); !errors.Is(err, ErrSettingNotFound) {
			t.Errorf("expected ErrSettingNotFound on second delete, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSettingRepository(db)
		for _, key := range []string{"session.token", "session.user_no", "ui.theme", "session_x"} {
			if err := repo.Create(models.NewSetting(key, "v")); err != nil {
				t.Fatalf("failed to create %s: %v", key, err)
			}
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list settings: %v", err)
		}
		if len(all) != 4 {
			t.Errorf("expected 4 settings, got %d", len(all))
		}

		filtered, err := repo.List(map[string]any{"prefix": "session."})
		if err != nil {
			t.Fatalf("failed to list filtered settings: %v", err)
		}
		if len(filtered) != 2 {
			t.Errorf("expected 2 session settings, got %d", len(filtered))
		}
		if filtered[0].Key() != "session.token" {
			t.Errorf("expected results ordered by key, got %s first", filtered[0].Key())
		}
	})
}

func TestSessionCacheAdapter(t *testing.T) {
	t.Run("Set And Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		kv := NewSessionCacheAdapter(NewSettingRepository(db))
		if err := kv.Set("token", "abc"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := kv.Set("token", "def"); err != nil {
			t.Fatalf("Set() overwrite error = %v", err)
		}

		v, ok, err := kv.Get("token")
		if err != nil || !ok {
			t.Fatalf("Get() = %q, %v, %v", v, ok, err)
		}
		if v != "def" {
			t.Errorf("expected def, got %s", v)
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		kv := NewSessionCacheAdapter(NewSettingRepository(db))
		v, ok, err := kv.Get("nickname")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok || v != "" {
			t.Errorf("expected absent key, got %q %v", v, ok)
		}
	})

	t.Run("Delete Ignores Missing And Scopes To Session", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSettingRepository(db)
		kv := NewSessionCacheAdapter(repo)
		if err := repo.Create(models.NewSetting("token", "not-a-session-key")); err != nil {
			t.Fatalf("failed to create setting: %v", err)
		}
		if err := kv.Set("token", "abc"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		if err := kv.Delete("token", "nickname"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		if _, ok, _ := kv.Get("token"); ok {
			t.Error("expected session token to be removed")
		}
		if _, err := repo.Get("token"); err != nil {
			t.Errorf("unrelated setting should survive: %v", err)
		}
	})

	t.Run("Keys", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		kv := NewSessionCacheAdapter(NewSettingRepository(db))
		kv.Set("user_no", "4")
		kv.Set("nickname", "mina")

		keys, err := kv.Keys()
		if err != nil {
			t.Fatalf("Keys() error = %v", err)
		}
		if len(keys) != 2 || keys[0] != "nickname" || keys[1] != "user_no" {
			t.Errorf("unexpected keys: %v", keys)
		}
	})
}
