package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
)

// SetupSchema initializes the corpus tables in the provided database. It is
// idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaCorpora = `
CREATE TABLE IF NOT EXISTS corpora (
    corpus_id INTEGER PRIMARY KEY,
    corpus_name TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL
);
`
		schemaEntries = `
CREATE TABLE IF NOT EXISTS corpus_entries (
    entry_id INTEGER PRIMARY KEY,
    corpus_id INTEGER NOT NULL,
    entry_text TEXT NOT NULL,
    batch_id TEXT NOT NULL
);
`
		indexEntries = `CREATE INDEX IF NOT EXISTS idx_corpus_entries_corpus ON corpus_entries (corpus_id, entry_id);`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaCorpora); err != nil {
		return fmt.Errorf("could not create corpora schema: %w", err)
	}

	if _, err = tx.Exec(schemaEntries); err != nil {
		return fmt.Errorf("could not create entries schema: %w", err)
	}

	if _, err = tx.Exec(indexEntries); err != nil {
		return fmt.Errorf("could not create entries index: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Info holds the metadata of a stored corpus.
type Info struct {
	Id        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ImportResult describes one batch of entries added to a corpus.
type ImportResult struct {
	BatchID string `json:"batch_id"`
	Added   int    `json:"added"`
}

// Store keeps named corpora in a SQLite database. It holds prepared
// statements for the frequent lookups.
type Store struct {
	db                *sql.DB
	stmtGetCorpusInfo *sql.Stmt
	stmtGetCorpora    *sql.Stmt
	stmtAddCorpus     *sql.Stmt
	stmtGetEntries    *sql.Stmt
	stmtCountEntries  *sql.Stmt
	stmtCountBatches  *sql.Stmt
	logger            *slog.Logger
}

// NewStore prepares the Store's statements against db. SetupSchema must have
// been called on db first.
func NewStore(db *sql.DB) (*Store, error) {
	stmtGetCorpusInfo, err := db.Prepare(`SELECT corpus_id, created_at FROM corpora WHERE corpus_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetCorpora, err := db.Prepare(`SELECT corpus_id, corpus_name, created_at FROM corpora ORDER BY corpus_id;`)
	if err != nil {
		return nil, err
	}

	stmtAddCorpus, err := db.Prepare(`INSERT INTO corpora (corpus_name, created_at) VALUES (?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtGetEntries, err := db.Prepare(`SELECT entry_text FROM corpus_entries WHERE corpus_id = ? ORDER BY entry_id;`)
	if err != nil {
		return nil, err
	}

	stmtCountEntries, err := db.Prepare(`SELECT COUNT(*) FROM corpus_entries WHERE corpus_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtCountBatches, err := db.Prepare(`SELECT COUNT(DISTINCT batch_id) FROM corpus_entries WHERE corpus_id = ?;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:                db,
		stmtGetCorpusInfo: stmtGetCorpusInfo,
		stmtGetCorpora:    stmtGetCorpora,
		stmtAddCorpus:     stmtAddCorpus,
		stmtGetEntries:    stmtGetEntries,
		stmtCountEntries:  stmtCountEntries,
		stmtCountBatches:  stmtCountBatches,
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the Store.
func (s *Store) Close() {
	_ = s.stmtGetCorpusInfo.Close()
	_ = s.stmtGetCorpora.Close()
	_ = s.stmtAddCorpus.Close()
	_ = s.stmtGetEntries.Close()
	_ = s.stmtCountEntries.Close()
	_ = s.stmtCountBatches.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// InsertCorpus creates a new, empty corpus and returns its metadata.
func (s *Store) InsertCorpus(ctx context.Context, name string) (Info, error) {
	now := time.Now().UTC()
	res, err := s.stmtAddCorpus.ExecContext(ctx, name, now)
	if err != nil {
		return Info{}, fmt.Errorf("could not insert corpus '%s': %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Info{}, err
	}
	return Info{Id: int(id), Name: name, CreatedAt: now}, nil
}

// GetCorpusInfo retrieves the metadata of a single corpus by name. It returns
// sql.ErrNoRows if no such corpus exists.
func (s *Store) GetCorpusInfo(ctx context.Context, name string) (Info, error) {
	info := Info{Name: name}
	err := s.stmtGetCorpusInfo.QueryRowContext(ctx, name).Scan(&info.Id, &info.CreatedAt)
	if err != nil {
		return Info{}, err
	}
	return info, nil
}

// GetCorpusInfos retrieves the metadata of every stored corpus, oldest first.
func (s *Store) GetCorpusInfos(ctx context.Context) ([]Info, error) {
	rows, err := s.stmtGetCorpora.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var infos []Info
	for rows.Next() {
		var info Info
		if err = rows.Scan(&info.Id, &info.Name, &info.CreatedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return infos, nil
}

// AddEntries appends entries to a corpus in a single transaction. All entries
// of one call share a freshly generated batch ID. Order and duplicates are
// preserved, since both affect the trained counts.
func (s *Store) AddEntries(ctx context.Context, info Info, entries []string) (ImportResult, error) {
	batchID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmtInsertEntry, err := tx.PrepareContext(ctx, `INSERT INTO corpus_entries (corpus_id, entry_text, batch_id) VALUES (?, ?, ?);`)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to prepare entry insert statement: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmtInsertEntry)

	for _, entry := range entries {
		if _, err = stmtInsertEntry.ExecContext(ctx, info.Id, entry, batchID); err != nil {
			return ImportResult{}, fmt.Errorf("failed to insert entry '%s': %w", entry, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return ImportResult{}, err
	}

	s.logger.InfoContext(ctx, "Corpus entries added",
		slog.String("corpus_name", info.Name),
		slog.Int("corpus_id", info.Id),
		slog.String("batch_id", batchID),
		slog.Int("entries_added", len(entries)),
	)

	return ImportResult{BatchID: batchID, Added: len(entries)}, nil
}

// ErrReservedSymbol is returned by Import when an entry contains a symbol the
// caller reserved with WithReservedSymbol.
var ErrReservedSymbol = errors.New("corpus: entry contains a reserved symbol")

// importOptions Is used by Import to configure entry checks.
type importOptions struct {
	reserved []rune
}

// ImportOption configures a call to Import.
type ImportOption func(*importOptions)

// WithReservedSymbol rejects the whole batch if any entry contains r, such as
// the model's boundary symbol.
func WithReservedSymbol(r rune) ImportOption {
	return func(o *importOptions) { o.reserved = append(o.reserved, r) }
}

// Import reads a newline-separated name list from r with ReadLines and adds
// it to the corpus as one batch. Nothing is stored if any entry fails the
// configured checks.
func (s *Store) Import(ctx context.Context, info Info, r io.Reader, opts ...ImportOption) (ImportResult, error) {
	options := &importOptions{}
	for _, opt := range opts {
		opt(options)
	}

	entries, err := ReadLines(r)
	if err != nil {
		return ImportResult{}, err
	}
	for i, entry := range entries {
		for _, c := range entry {
			if slices.Contains(options.reserved, c) {
				return ImportResult{}, fmt.Errorf("%w: entry %d (%q) contains %q", ErrReservedSymbol, i+1, entry, c)
			}
		}
	}
	return s.AddEntries(ctx, info, entries)
}

// Entries returns every entry of a corpus in insertion order.
func (s *Store) Entries(ctx context.Context, info Info) ([]string, error) {
	rows, err := s.stmtGetEntries.QueryContext(ctx, info.Id)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var entries []string
	for rows.Next() {
		var entry string
		if err = rows.Scan(&entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// RemoveCorpus deletes a corpus and all of its entries. The operation is
// performed within a transaction.
func (s *Store) RemoveCorpus(ctx context.Context, info Info) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.ExecContext(ctx, "DELETE FROM corpus_entries WHERE corpus_id = ?", info.Id); err != nil {
		return fmt.Errorf("failed to remove entries for corpus %d: %w", info.Id, err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM corpora WHERE corpus_id = ?", info.Id); err != nil {
		return fmt.Errorf("failed to remove corpus %d: %w", info.Id, err)
	}

	s.logger.InfoContext(ctx, "Corpus removed successfully",
		slog.String("corpus_name", info.Name),
		slog.Int("corpus_id", info.Id),
	)

	return tx.Commit()
}
