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

	"github.com/pelletier/go-toml/v2"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/medgenius/docindex/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
)

const (
	// DatabaseFile is the name of the entries database inside an index directory.
	DatabaseFile = "index.db"

	// ManifestFile is the name of the manifest inside an index directory.
	ManifestFile = "index.toml"

	// FormatVersion is written to every manifest.
	FormatVersion = 1
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// Manifest describes a saved index.
type Manifest struct {
	FormatVersion int       `toml:"format_version"`
	Dimensions    int       `toml:"dimensions"`
	Entries       int       `toml:"entries"`
	CreatedAt     time.Time `toml:"created_at"`
}

// IndexStore saves and loads vector indexes as SQLite files.
type IndexStore struct {
	factory driven.VectorIndexFactory
	now     func() time.Time
}

// NewIndexStore creates a store that restores indexes through factory.
func NewIndexStore(factory driven.VectorIndexFactory) *IndexStore {
	return &IndexStore{
		factory: factory,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Save writes idx into dir, replacing any index already there.
// Returns the database and manifest paths.
func (s *IndexStore) Save(ctx context.Context, idx driven.VectorIndex, dir string) ([]string, error) {
	if idx == nil {
		return nil, fmt.Errorf("save index: %w", domain.ErrInvalidInput)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dir, DatabaseFile)
	if err := removeFiles(databaseFiles(dbPath)...); err != nil {
		return nil, fmt.Errorf("removing stale index: %w", err)
	}

	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := migrate(db, migrations.FS); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	entries := idx.Entries()
	if err := insertEntries(ctx, db, entries); err != nil {
		return nil, err
	}
	if err := db.Close(); err != nil {
		return nil, fmt.Errorf("closing database: %w", err)
	}

	manifest := Manifest{
		FormatVersion: FormatVersion,
		Dimensions:    idx.Dimensions(),
		Entries:       len(entries),
		CreatedAt:     s.now(),
	}
	manifestPath := filepath.Join(dir, ManifestFile)
	if err := writeManifest(manifestPath, manifest); err != nil {
		return nil, err
	}

	return []string{dbPath, manifestPath}, nil
}

// Remove deletes the files Save writes into dir and then dir itself when
// nothing else is left in it. A dir without a manifest is not an index and
// is left untouched.
func (s *IndexStore) Remove(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	manifestPath := filepath.Join(dir, ManifestFile)
	if _, err := os.Stat(manifestPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat manifest: %w", err)
	}

	files := append(databaseFiles(filepath.Join(dir, DatabaseFile)), manifestPath)
	if err := removeFiles(files...); err != nil {
		return fmt.Errorf("removing index: %w", err)
	}

	// Fails while other files remain.
	_ = os.Remove(dir)
	return nil
}

func databaseFiles(dbPath string) []string {
	return []string{dbPath, dbPath + "-journal", dbPath + "-wal", dbPath + "-shm"}
}

func removeFiles(paths ...string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Load restores an index previously written to dir.
func (s *IndexStore) Load(ctx context.Context, dir string) (driven.VectorIndex, error) {
	manifest, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	if manifest.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("index format %d: %w", manifest.FormatVersion, domain.ErrUnsupportedType)
	}

	dbPath := filepath.Join(dir, DatabaseFile)
	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dbPath, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat database: %w", err)
	}

	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	entries, err := queryEntries(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(entries) != manifest.Entries {
		return nil, fmt.Errorf("manifest lists %d entries, database has %d: %w",
			manifest.Entries, len(entries), domain.ErrInvalidInput)
	}

	idx := s.factory.New()
	if len(entries) > 0 {
		if err := idx.Add(entries...); err != nil {
			return nil, fmt.Errorf("restoring entries: %w", err)
		}
	}
	return idx, nil
}

// ReadManifest reads the manifest of the index saved in dir.
func ReadManifest(dir string) (Manifest, error) {
	var m Manifest

	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, fmt.Errorf("manifest in %s: %w", dir, domain.ErrNotFound)
		}
		return m, fmt.Errorf("reading manifest: %w", err)
	}

	if err := toml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}

func writeManifest(path string, m Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func insertEntries(ctx context.Context, db *sql.DB, entries []domain.IndexEntry) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (id, position, document, page, kind, item, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, i, e.Source.Document, e.Source.Page,
			string(e.Source.Kind), e.Source.Item, e.Text, float32SliceToBytes(e.Vector)); err != nil {
			return fmt.Errorf("inserting entry %q: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing entries: %w", err)
	}
	return nil
}

func queryEntries(ctx context.Context, db *sql.DB) ([]domain.IndexEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, document, page, kind, item, content, embedding
		FROM entries ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.IndexEntry
	for rows.Next() {
		var e domain.IndexEntry
		var kind string
		var blob []byte
		if err := rows.Scan(&e.ID, &e.Source.Document, &e.Source.Page, &kind,
			&e.Source.Item, &e.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.Source.Kind = domain.ContentKind(kind)
		if !e.Source.Kind.IsValid() {
			return nil, fmt.Errorf("entry %s has kind %q: %w", e.ID, kind, domain.ErrInvalidInput)
		}
		e.Vector = bytesToFloat32Slice(blob)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}

// migrate runs all pending migrations.
func migrate(db *sql.DB, fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

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
		// "001_entries.up.sql" -> 1
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
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return []byte{}
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
