// Package store keeps numbered subtitle versions per video and language
// in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("version not found")

type Version struct {
	ID          string            `json:"id"`
	VideoID     string            `json:"videoId"`
	Language    string            `json:"language"`
	Number      int               `json:"versionNumber"`
	Subtitles   string            `json:"subtitles,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
	Complete    bool              `json:"complete"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type SaveRequest struct {
	VideoID     string
	Language    string
	Subtitles   string
	Title       string
	Description string
	Metadata    map[string]string
	Complete    bool
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the database file and its parent directory if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows one writer; serialize through a single connection
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS versions (
		id TEXT PRIMARY KEY,
		video_id TEXT NOT NULL,
		language TEXT NOT NULL,
		number INTEGER NOT NULL,
		subtitles TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '{}',
		complete INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		UNIQUE(video_id, language, number)
	);
	CREATE INDEX IF NOT EXISTS idx_versions_video_language ON versions(video_id, language);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveVersion stores req as the next version for its video and language
// and returns the new version number, starting at 1.
func (s *Store) SaveVersion(ctx context.Context, req SaveRequest) (int, error) {
	if req.VideoID == "" || req.Language == "" {
		return 0, fmt.Errorf("video id and language are required")
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return 0, fmt.Errorf("failed to encode metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var number int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(number), 0) + 1 FROM versions WHERE video_id = ? AND language = ?",
		req.VideoID, req.Language,
	).Scan(&number)
	if err != nil {
		return 0, fmt.Errorf("failed to compute version number: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO versions (id, video_id, language, number, subtitles, title, description, metadata, complete, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), req.VideoID, req.Language, number, req.Subtitles,
		req.Title, req.Description, string(metaJSON), req.Complete, s.now().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit version: %w", err)
	}
	return number, nil
}

// FetchVersion returns version n, or the latest one when n <= 0.
func (s *Store) FetchVersion(ctx context.Context, videoID, lang string, n int) (*Version, error) {
	query := `SELECT id, video_id, language, number, subtitles, title, description, metadata, complete, created_at
		FROM versions WHERE video_id = ? AND language = ?`
	args := []any{videoID, lang}
	if n > 0 {
		query += " AND number = ?"
		args = append(args, n)
	} else {
		query += " ORDER BY number DESC LIMIT 1"
	}

	v, err := scanVersion(s.db.QueryRowContext(ctx, query, args...), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch version: %w", err)
	}
	return v, nil
}

// ListVersions returns every version's metadata, oldest first, without
// the subtitle documents.
func (s *Store) ListVersions(ctx context.Context, videoID, lang string) ([]Version, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, video_id, language, number, title, description, metadata, complete, created_at
		FROM versions WHERE video_id = ? AND language = ? ORDER BY number`,
		videoID, lang,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	versions := []Version{}
	for rows.Next() {
		v, err := scanVersion(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to read version: %w", err)
		}
		versions = append(versions, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	return versions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVersion(row scanner, withSubtitles bool) (*Version, error) {
	var (
		v        Version
		metaJSON string
		created  int64
	)
	dest := []any{&v.ID, &v.VideoID, &v.Language, &v.Number}
	if withSubtitles {
		dest = append(dest, &v.Subtitles)
	}
	dest = append(dest, &v.Title, &v.Description, &metaJSON, &v.Complete, &created)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(metaJSON), &v.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	v.CreatedAt = time.UnixMilli(created)
	return &v, nil
}
