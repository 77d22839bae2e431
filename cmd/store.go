package main

import (
	"database/sql"
	"sync"

	"github.com/desertthunder/listify/internal/repositories"
	"github.com/desertthunder/listify/internal/shared"
)

// sqliteKV is the session KV backed by the settings table. The database is opened on first use.
type sqliteKV struct {
	cfg  shared.DatabaseConfig
	once sync.Once
	db   *sql.DB
	kv   *repositories.SessionCacheAdapter
	err  error
}

func newSQLiteKV(cfg shared.DatabaseConfig) *sqliteKV {
	return &sqliteKV{cfg: cfg}
}

func (s *sqliteKV) open() error {
	s.once.Do(func() {
		s.db, s.err = shared.OpenDatabase(s.cfg)
		if s.err == nil {
			s.kv = repositories.NewSessionCacheAdapter(repositories.NewSettingRepository(s.db))
		}
	})
	return s.err
}

func (s *sqliteKV) Get(key string) (string, bool, error) {
	if err := s.open(); err != nil {
		return "", false, err
	}
	return s.kv.Get(key)
}

func (s *sqliteKV) Set(key, value string) error {
	if err := s.open(); err != nil {
		return err
	}
	return s.kv.Set(key, value)
}

func (s *sqliteKV) Delete(keys ...string) error {
	if err := s.open(); err != nil {
		return err
	}
	return s.kv.Delete(keys...)
}

func (s *sqliteKV) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
