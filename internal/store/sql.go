package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ============================================================
// SQL-backed KV (sqlite, postgres)
// ============================================================

//go:embed migrations/001_init_kv.sql
var initKVSQL string

// Dialect captures the few statement differences between drivers.
type Dialect struct {
	Name      string
	numbered  bool
	forUpdate string
}

var (
	SQLite   = Dialect{Name: "sqlite"}
	Postgres = Dialect{Name: "postgres", numbered: true, forUpdate: " FOR UPDATE"}
)

func (d Dialect) arg(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

type SQLKV struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLKV(db *sql.DB, dialect Dialect) *SQLKV {
	return &SQLKV{db: db, dialect: dialect}
}

// Init creates the kv table when missing.
func (s *SQLKV) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, initKVSQL); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

func (s *SQLKV) selectQuery(lock bool) string {
	q := "SELECT entry_value FROM kv_entries WHERE entry_key = " + s.dialect.arg(1)
	if lock {
		q += s.dialect.forUpdate
	}
	return q
}

func (s *SQLKV) upsertQuery() string {
	return fmt.Sprintf(`INSERT INTO kv_entries (entry_key, entry_value, updated_at)
        VALUES (%s, %s, CURRENT_TIMESTAMP)
        ON CONFLICT (entry_key) DO UPDATE SET entry_value = excluded.entry_value, updated_at = CURRENT_TIMESTAMP`,
		s.dialect.arg(1), s.dialect.arg(2))
}

func (s *SQLKV) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.selectQuery(false), key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return value, nil
}

func (s *SQLKV) Set(ctx context.Context, key string, value string) error {
	_, err := s.db.ExecContext(ctx, s.upsertQuery(), key, value)
	return err
}

// Update runs fn inside a transaction holding the row.
func (s *SQLKV) Update(ctx context.Context, key string, fn UpdateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	exists := true
	if err := tx.QueryRowContext(ctx, s.selectQuery(true), key).Scan(&current); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		exists = false
	}

	next, err := fn(current, exists)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.upsertQuery(), key, next); err != nil {
		return err
	}
	return tx.Commit()
}

// OpenSQLite opens the sqlite file at dbPath, creating its directory.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// OpenPostgres opens a lib/pq connection pool.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return db, nil
}
