// Package localstore реализует локальное хранилище ключ/значение на SQLite,
// аналог localStorage клиента. Значения изолированы по scope (сессии).
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sqlx.DB
}

// Open открывает (или создаёт) файл SQLite и гарантирует схему.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	// SQLite плохо переносит параллельную запись из нескольких соединений
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping local store: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS local_storage(
  scope TEXT NOT NULL,
  key TEXT NOT NULL,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  PRIMARY KEY (scope, key)
);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to ensure local store schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Scope возвращает представление хранилища для одной сессии.
func (s *Store) Scope(scope string) *Scoped {
	return &Scoped{db: s.db, scope: scope}
}

// Scoped хранит ключи одной сессии.
type Scoped struct {
	db    *sqlx.DB
	scope string
}

// Get возвращает значение и признак его наличия.
func (s *Scoped) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM local_storage WHERE scope = ? AND key = ?`, s.scope, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
	  INSERT INTO local_storage(scope, key, value, updated_at)
	  VALUES(?, ?, ?, ?)
	  ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, s.scope, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM local_storage WHERE scope = ? AND key = ?`, s.scope, key)
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Prune удаляет значения, которые не менялись с момента before, и возвращает их число.
// updated_at хранится в RFC3339 UTC, поэтому строки сравниваются как время.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM local_storage WHERE updated_at < ?`,
		before.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to prune local store: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to prune local store: %w", err)
	}
	return n, nil
}
