// Package audiostore persists per-block audio state in SQLite. Each row pairs
// a page's audio block with the hash of the text it was generated from, so
// regeneration can skip blocks whose narration is still current.
package audiostore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; existing databases with a different version are rejected.
const schemaVersion = 1

var (
	// ErrNotFound is returned when no record exists for a page and index.
	ErrNotFound = errors.New("audio block not found")
	// ErrSchemaMismatch indicates the database was created by a different
	// schema version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)

// BlockRecord is one generated audio block for a page.
type BlockRecord struct {
	PageID      string
	BlockIndex  int
	BlockType   string
	TextContent string
	ContentHash string
	AudioURL    string
	Duration    float64
	StartTime   float64
	EndTime     float64
	UpdatedAt   time.Time
}

// Store manages audio block persistence backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open initializes or connects to the audio database at path. Use ":memory:"
// for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &Store{db: db}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Upsert inserts or replaces the record for its page and block index.
func (s *Store) Upsert(ctx context.Context, rec *BlockRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audio_blocks
			(page_id, block_index, block_type, text_content, content_hash,
			 audio_url, duration, start_time, end_time, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (page_id, block_index) DO UPDATE SET
			block_type = excluded.block_type,
			text_content = excluded.text_content,
			content_hash = excluded.content_hash,
			audio_url = excluded.audio_url,
			duration = excluded.duration,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			updated_at = excluded.updated_at`,
		rec.PageID, rec.BlockIndex, rec.BlockType, rec.TextContent, rec.ContentHash,
		rec.AudioURL, rec.Duration, rec.StartTime, rec.EndTime,
		rec.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert audio block: %w", err)
	}
	return nil
}

// Get returns the record for one block of a page, or ErrNotFound.
func (s *Store) Get(ctx context.Context, pageID string, blockIndex int) (*BlockRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT page_id, block_index, block_type, text_content, content_hash,
		       audio_url, duration, start_time, end_time, updated_at
		FROM audio_blocks
		WHERE page_id = ? AND block_index = ?`,
		pageID, blockIndex,
	)
	rec, err := scanBlock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get audio block: %w", err)
	}
	return rec, nil
}

// ForPage returns all records for a page ordered by block index.
func (s *Store) ForPage(ctx context.Context, pageID string) ([]*BlockRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT page_id, block_index, block_type, text_content, content_hash,
		       audio_url, duration, start_time, end_time, updated_at
		FROM audio_blocks
		WHERE page_id = ?
		ORDER BY block_index`,
		pageID,
	)
	if err != nil {
		return nil, fmt.Errorf("list audio blocks: %w", err)
	}
	defer rows.Close()

	var recs []*BlockRecord
	for rows.Next() {
		rec, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audio block: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audio blocks: %w", err)
	}
	return recs, nil
}

// IsCurrent reports whether a stored block exists with the given hash and a
// non-empty audio URL. Regeneration skips blocks that are current.
func (s *Store) IsCurrent(ctx context.Context, pageID string, blockIndex int, contentHash string) (bool, error) {
	rec, err := s.Get(ctx, pageID, blockIndex)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return rec.ContentHash == contentHash && rec.AudioURL != "", nil
}

// DeletePage removes all records for a page. Used when a page is deleted or
// its narration is force-regenerated.
func (s *Store) DeletePage(ctx context.Context, pageID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM audio_blocks WHERE page_id = ?", pageID); err != nil {
		return fmt.Errorf("delete audio blocks: %w", err)
	}
	return nil
}

// TrimPage removes records at or beyond keep, for pages whose block count
// shrank since the last generation.
func (s *Store) TrimPage(ctx context.Context, pageID string, keep int) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM audio_blocks WHERE page_id = ? AND block_index >= ?",
		pageID, keep,
	); err != nil {
		return fmt.Errorf("trim audio blocks: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlock(row rowScanner) (*BlockRecord, error) {
	var rec BlockRecord
	var updated string
	if err := row.Scan(
		&rec.PageID, &rec.BlockIndex, &rec.BlockType, &rec.TextContent, &rec.ContentHash,
		&rec.AudioURL, &rec.Duration, &rec.StartTime, &rec.EndTime, &updated,
	); err != nil {
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		rec.UpdatedAt = t
	}
	return &rec, nil
}
