package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteBackend keeps the flat key space in a single kv table.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read key %s: %w", key, err)
	}
	return value, true, nil
}

func (b *SQLiteBackend) Set(ctx context.Context, key, value string) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("write key %s: %w", key, err)
	}
	return nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete key %s: %w", key, err)
	}
	return nil
}

func (b *SQLiteBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	// Backup keys contain underscores, which LIKE treats as wildcards.
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	rows, err := b.db.QueryContext(ctx,
		`SELECT key FROM kv WHERE key LIKE ? ESCAPE '\' ORDER BY key`, escaped+"%")
	if err != nil {
		return nil, fmt.Errorf("list keys with prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}

func (b *SQLiteBackend) Clear(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM kv`); err != nil {
		return fmt.Errorf("clear kv table: %w", err)
	}
	return nil
}
