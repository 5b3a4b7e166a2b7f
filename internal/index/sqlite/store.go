// Package sqlite implements the relational source/chunk/embedding index
// on top of modernc.org/sqlite, a pure Go driver requiring no CGO so the
// binary stays easy to cross-compile.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory: source_files, chunks (cascading delete on its
// source_files row), and embeddings (cascading delete on its chunks row).
//
// # Thread Safety
//
// All operations are safe for concurrent use; SQLite's WAL mode plus a
// busy timeout serialize writers without the caller needing its own lock.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/veltra-labs/docvault/internal/core/domain"
	"github.com/veltra-labs/docvault/internal/core/ports/driven"
	"github.com/veltra-labs/docvault/internal/index/sqlite/migrations"
)

var _ driven.Index = (*Store)(nil)

// Store is the SQLite-backed Index.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the index database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// UpsertSourceFile inserts or replaces record's mutable fields.
func (s *Store) UpsertSourceFile(ctx context.Context, record domain.SourceFile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO source_files (path, hash, file_size, chunk_count, archive_path, status, processed_at, is_synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			hash = excluded.hash,
			file_size = excluded.file_size,
			chunk_count = excluded.chunk_count,
			archive_path = excluded.archive_path,
			status = excluded.status,
			processed_at = excluded.processed_at,
			is_synced = excluded.is_synced
	`, record.Path, record.Hash, record.FileSize, record.ChunkCount,
		nullString(record.ArchivePath), string(record.Status), nullTime(record.ProcessedAt), record.IsSynced)
	if err != nil {
		return fmt.Errorf("upserting source file: %w", err)
	}
	return nil
}

// GetSourceFile returns the record for path, or domain.ErrNotFound.
func (s *Store) GetSourceFile(ctx context.Context, path string) (*domain.SourceFile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT path, hash, file_size, chunk_count, archive_path, status, processed_at, is_synced
		FROM source_files WHERE path = ?
	`, path)

	record, err := scanSourceFile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning source file: %w", err)
	}
	return record, nil
}

// InsertChunks upserts every chunk transactionally, keyed on ID.
func (s *Store) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, source_path, source_hash, chunk_index, text, content_hash, page_number, source_location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			content_hash = excluded.content_hash,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		sourceHash := ""
		if c.SourceFileHash != nil {
			sourceHash = *c.SourceFileHash
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.SourceID, sourceHash, c.ChunkIndex, c.Text,
			c.ContentHash, nullInt32(c.PageNumber), nullString(c.SourceLocation), c.CreatedAt, now); err != nil {
			return fmt.Errorf("upserting chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunk insert: %w", err)
	}
	return nil
}

// SaveEmbedding upserts a single chunk's embedding vector.
func (s *Store) SaveEmbedding(ctx context.Context, chunkID string, vec []float32) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embeddings (chunk_id, embedding) VALUES (?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET embedding = excluded.embedding
	`, chunkID, float32SliceToBytes(vec))
	if err != nil {
		return fmt.Errorf("saving embedding: %w", err)
	}
	return nil
}

// SaveEmbeddingsBatch upserts many embedding vectors transactionally.
func (s *Store) SaveEmbeddingsBatch(ctx context.Context, pairs []driven.ChunkEmbeddingPair) error {
	if len(pairs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO embeddings (chunk_id, embedding) VALUES (?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing embedding upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pairs {
		if _, err := stmt.ExecContext(ctx, p.ChunkID, float32SliceToBytes(p.Embedding)); err != nil {
			return fmt.Errorf("upserting embedding for %s: %w", p.ChunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing embedding batch: %w", err)
	}
	return nil
}

// DeleteChunksBySourcePath removes embeddings then chunks for path.
func (s *Store) DeleteChunksBySourcePath(ctx context.Context, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM embeddings WHERE chunk_id IN (SELECT id FROM chunks WHERE source_path = ?)
	`, path); err != nil {
		return fmt.Errorf("deleting embeddings: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE source_path = ?`, path); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunk deletion: %w", err)
	}
	return nil
}

// GetChunksWithoutEmbedding returns up to limit chunks lacking an
// embedding row, ordered by source path and then chunk_index.
func (s *Store) GetChunksWithoutEmbedding(ctx context.Context, limit int) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.source_path, c.source_hash, c.chunk_index, c.text, c.content_hash,
		       c.page_number, c.source_location, c.created_at
		FROM chunks c
		LEFT JOIN embeddings e ON e.chunk_id = c.id
		WHERE e.chunk_id IS NULL
		ORDER BY c.source_path, c.chunk_index
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying chunks without embedding: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// GetUnsyncedSourceFiles returns up to limit Completed sources with
// is_synced=false.
func (s *Store) GetUnsyncedSourceFiles(ctx context.Context, limit int) ([]domain.SourceFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, hash, file_size, chunk_count, archive_path, status, processed_at, is_synced
		FROM source_files
		WHERE status = ? AND is_synced = 0
		LIMIT ?
	`, string(domain.StatusCompleted), limit)
	if err != nil {
		return nil, fmt.Errorf("querying unsynced source files: %w", err)
	}
	defer rows.Close()

	var files []domain.SourceFile
	for rows.Next() {
		f, err := scanSourceFileRows(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning source file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// MarkSourceFileAsSynced sets is_synced=true for path.
func (s *Store) MarkSourceFileAsSynced(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE source_files SET is_synced = 1 WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("marking source file synced: %w", err)
	}
	return nil
}

// CountUnembeddedChunks counts chunks of path that still lack an
// embedding row.
func (s *Store) CountUnembeddedChunks(ctx context.Context, path string) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM chunks c
		LEFT JOIN embeddings e ON e.chunk_id = c.id
		WHERE c.source_path = ? AND e.chunk_id IS NULL
	`, path)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting unembedded chunks: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSourceFile(row rowScanner) (*domain.SourceFile, error) {
	var f domain.SourceFile
	var archivePath sql.NullString
	var processedAt sql.NullTime
	var status string

	if err := row.Scan(&f.Path, &f.Hash, &f.FileSize, &f.ChunkCount, &archivePath, &status, &processedAt, &f.IsSynced); err != nil {
		return nil, err
	}

	f.Status = domain.SourceStatus(status)
	if archivePath.Valid {
		f.ArchivePath = &archivePath.String
	}
	if processedAt.Valid {
		f.ProcessedAt = &processedAt.Time
	}
	return &f, nil
}

func scanSourceFileRows(rows *sql.Rows) (domain.SourceFile, error) {
	f, err := scanSourceFile(rows)
	if err != nil {
		return domain.SourceFile{}, err
	}
	return *f, nil
}

func scanChunk(rows *sql.Rows) (domain.Chunk, error) {
	var c domain.Chunk
	var sourceHash sql.NullString
	var pageNumber sql.NullInt64
	var sourceLocation sql.NullString

	if err := rows.Scan(&c.ID, &c.SourceID, &sourceHash, &c.ChunkIndex, &c.Text, &c.ContentHash,
		&pageNumber, &sourceLocation, &c.CreatedAt); err != nil {
		return domain.Chunk{}, err
	}

	if pageNumber.Valid {
		v := int32(pageNumber.Int64)
		c.PageNumber = &v
	}
	if sourceLocation.Valid {
		c.SourceLocation = &sourceLocation.String
	}
	return c, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt32(v *int32) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// float32SliceToBytes converts a []float32 to its raw little-endian byte
// payload, the wire format stored in the embeddings column.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice is the inverse of float32SliceToBytes.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
