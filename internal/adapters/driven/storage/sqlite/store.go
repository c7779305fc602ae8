// Package sqlite implements the vector store on a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/veldt-labs/corpora-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/veldt-labs/corpora-cli/internal/core/domain"
	"github.com/veldt-labs/corpora-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed vector store. Embeddings are stored as
// little-endian float32 blobs next to the chunk text and metadata.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the vector store at the specified data directory.
// If dataDir is empty, defaults to ~/.corpora/data/vectors.db.
func Open(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".corpora", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
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

// OpenCollection creates the collection if absent. A pre-existing
// collection must match the requested metric and dimensions; writing
// into a collection created under a different distance metric would
// silently corrupt its similarity semantics, so it is refused.
func (s *Store) OpenCollection(ctx context.Context, name string, metric domain.DistanceMetric, dimensions int) error {
	if name == "" {
		return fmt.Errorf("%w: collection name is empty", domain.ErrStoreWrite)
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT metric, dimensions FROM collections WHERE name = ?", name)

	var existingMetric string
	var existingDims int
	err := row.Scan(&existingMetric, &existingDims)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO collections (name, metric, dimensions, created_at)
			VALUES (?, ?, ?, ?)
		`, name, string(metric), dimensions, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("%w: creating collection %s: %v", domain.ErrStoreWrite, name, err)
		}
		return nil

	case err != nil:
		return fmt.Errorf("%w: reading collection %s: %v", domain.ErrStoreWrite, name, err)
	}

	if existingMetric != string(metric) {
		return fmt.Errorf("%w: collection %s was created with metric %q, requested %q",
			domain.ErrStoreWrite, name, existingMetric, metric)
	}

	if existingDims != 0 && dimensions != 0 && existingDims != dimensions {
		return fmt.Errorf("%w: collection %s holds %d-dimensional vectors, requested %d",
			domain.ErrStoreWrite, name, existingDims, dimensions)
	}

	// A collection created before any records were written may have
	// unknown dimensions; pin them on first use.
	if existingDims == 0 && dimensions != 0 {
		if _, err := s.db.ExecContext(ctx,
			"UPDATE collections SET dimensions = ? WHERE name = ?", dimensions, name); err != nil {
			return fmt.Errorf("%w: updating collection %s: %v", domain.ErrStoreWrite, name, err)
		}
	}

	return nil
}

// Upsert writes a batch of records in a single transaction.
// Existing ids are replaced, new ids inserted.
func (s *Store) Upsert(ctx context.Context, collection string, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	dims, err := s.collectionDimensions(ctx, collection)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", domain.ErrStoreWrite, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, id, embedding, content, metadata, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			embedding = excluded.embedding,
			content = excluded.content,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing statement: %v", domain.ErrStoreWrite, err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, record := range records {
		if record.ID == "" {
			return fmt.Errorf("%w: record with empty id", domain.ErrStoreWrite)
		}
		if dims != 0 && len(record.Embedding) != dims {
			return fmt.Errorf("%w: record %s has %d-dimensional vector, collection %s expects %d",
				domain.ErrStoreWrite, record.ID, len(record.Embedding), collection, dims)
		}

		metadataJSON, err := json.Marshal(record.Metadata)
		if err != nil {
			return fmt.Errorf("%w: marshalling metadata for %s: %v", domain.ErrStoreWrite, record.ID, err)
		}

		embeddingBlob := float32SliceToBytes(record.Embedding)

		if _, err := stmt.ExecContext(ctx, collection, record.ID, embeddingBlob,
			record.Text, string(metadataJSON), now); err != nil {
			return fmt.Errorf("%w: upserting record %s: %v", domain.ErrStoreWrite, record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", domain.ErrStoreWrite, err)
	}
	return nil
}

// Get retrieves a record by exact id.
func (s *Store) Get(ctx context.Context, collection, id string) (*domain.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, embedding, content, metadata
		FROM records WHERE collection = ? AND id = ?
	`, collection, id)

	var record domain.Record
	var embeddingBlob []byte
	var metadataJSON string

	if err := row.Scan(&record.ID, &embeddingBlob, &record.Text, &metadataJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	record.Embedding = bytesToFloat32Slice(embeddingBlob)

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &record.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return &record, nil
}

// Count returns the number of records in the collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE collection = ?", collection)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

// List returns metadata for all collections.
func (s *Store) List(ctx context.Context) ([]domain.CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, c.metric, c.dimensions, COUNT(r.id)
		FROM collections c
		LEFT JOIN records r ON r.collection = c.name
		GROUP BY c.name
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var infos []domain.CollectionInfo //nolint:prealloc // size unknown from query
	for rows.Next() {
		var info domain.CollectionInfo
		var metric string
		if err := rows.Scan(&info.Name, &metric, &info.Dimensions, &info.Records); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		info.Metric = domain.DistanceMetric(metric)
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}

	return infos, nil
}

// collectionDimensions reads the pinned vector size for a collection.
// A missing collection is a write into nowhere and fails.
func (s *Store) collectionDimensions(ctx context.Context, collection string) (int, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT dimensions FROM collections WHERE name = ?", collection)

	var dims int
	if err := row.Scan(&dims); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: collection %s does not exist", domain.ErrStoreWrite, collection)
		}
		return 0, fmt.Errorf("%w: reading collection %s: %v", domain.ErrStoreWrite, collection, err)
	}
	return dims, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
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

// bytesToFloat32Slice converts a byte slice back to []float32.
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
