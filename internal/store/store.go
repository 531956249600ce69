// Package store is the local key/value cache that stands in for browser
// storage. It is never the authority for account state.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("cache entry not found")

// Scope separates persistent entries from per-session ones.
type Scope string

const (
	ScopeLocal   Scope = "local"
	ScopeSession Scope = "session"
)

// Well-known keys.
const (
	KeyQuestionnaireAnswers  = "questionnaireAnswers"
	KeyCareerRoadmapResults  = "careerRoadmapResults"
	KeySystemDesignTest      = "systemDesignTest"
	KeySystemDesignResponses = "systemDesignResponses"
)

const DefaultSessionTTL = 24 * time.Hour

func ParseScope(value string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(value))) {
	case "", ScopeLocal:
		return ScopeLocal, nil
	case ScopeSession:
		return ScopeSession, nil
	}
	return "", fmt.Errorf("unknown cache scope: %s", value)
}

// Entry is one cached value.
type Entry struct {
	Scope     Scope     `json:"scope"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Store struct {
	db         *sql.DB
	sessionTTL time.Duration
	now        func() time.Time
}

// Open opens or creates the cache file at path and drops expired session
// entries.
func Open(ctx context.Context, path string, sessionTTL time.Duration) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	db.SetMaxOpenConns(1)

	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	s := &Store{db: db, sessionTTL: sessionTTL, now: time.Now}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := s.purgeExpired(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS entries (
		scope      TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (scope, key)
	)`)
	if err != nil {
		return fmt.Errorf("init cache schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Put(ctx context.Context, scope Scope, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("cache key is required")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO entries (scope, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		string(scope), key, string(value), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", scope, key, err)
	}
	return nil
}

func (s *Store) PutJSON(ctx context.Context, scope Scope, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", scope, key, err)
	}
	return s.Put(ctx, scope, key, data)
}

// Get returns the entry for key. Expired session entries are not returned.
func (s *Store) Get(ctx context.Context, scope Scope, key string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT scope, key, value, updated_at FROM entries WHERE scope = ? AND key = ?`,
		string(scope), key)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && s.expired(e)) {
		return Entry{}, fmt.Errorf("%w: %s/%s", ErrNotFound, scope, key)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get %s/%s: %w", scope, key, err)
	}
	return e, nil
}

func (s *Store) GetJSON(ctx context.Context, scope Scope, key string, out any) error {
	e, err := s.Get(ctx, scope, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(e.Value), out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", scope, key, err)
	}
	return nil
}

// List returns the live entries of scope, or of every scope when scope is
// empty, ordered by scope and key.
func (s *Store) List(ctx context.Context, scope Scope) ([]Entry, error) {
	query := `SELECT scope, key, value, updated_at FROM entries`
	var args []any
	if scope != "" {
		query += ` WHERE scope = ?`
		args = append(args, string(scope))
	}
	query += ` ORDER BY scope, key`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cache: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list cache: %w", err)
		}
		if s.expired(e) {
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) Delete(ctx context.Context, scope Scope, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE scope = ? AND key = ?`, string(scope), key)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", scope, key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, scope, key)
	}
	return nil
}

// Clear removes every entry of scope, or everything when scope is empty.
func (s *Store) Clear(ctx context.Context, scope Scope) (int64, error) {
	query := `DELETE FROM entries`
	var args []any
	if scope != "" {
		query += ` WHERE scope = ?`
		args = append(args, string(scope))
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) purgeExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.sessionTTL).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE scope = ? AND updated_at < ?`,
		string(ScopeSession), cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge session entries: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) expired(e Entry) bool {
	return e.Scope == ScopeSession && s.now().Sub(e.UpdatedAt) > s.sessionTTL
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		scope     string
		e         Entry
		updatedAt int64
	)
	if err := row.Scan(&scope, &e.Key, &e.Value, &updatedAt); err != nil {
		return Entry{}, err
	}
	e.Scope = Scope(scope)
	e.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return e, nil
}
