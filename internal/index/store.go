package index

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, so the store
// works both inside and outside a sweep transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides the index operations over a pool or transaction.
type Store struct {
	db DBTX
}

// NewStore creates a Store on the given pool or transaction.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// InsertIfAbsent inserts a new index entry. A second entry with the same
// filename is a silent no-op; the return reports whether a row was actually
// inserted, so re-scans of an unchanged tree count zero processed entries.
func (s *Store) InsertIfAbsent(ctx context.Context, e *Entry) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO recordings (
			filename, agent_id, extension, caller_id, called_id,
			start_time, duration, content_type, local_path, uploaded
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
		ON CONFLICT (filename) DO NOTHING`,
		e.Filename, e.AgentID, e.Extension, e.CallerID, e.CalledID,
		e.StartTime, e.Duration, e.ContentType, e.LocalPath,
	)
	if err != nil {
		return false, fmt.Errorf("failed to index %s: %w", e.Filename, err)
	}
	return tag.RowsAffected() > 0, nil
}

// SelectUnmigrated returns up to limit entries not yet uploaded, oldest
// recording first. Rows without a start time sort first (NULLS FIRST) so
// they are never starved; id breaks ties to keep the order deterministic.
func (s *Store) SelectUnmigrated(ctx context.Context, limit int) ([]Candidate, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, filename, local_path, agent_id, extension, caller_id,
			called_id, start_time, duration, content_type
		FROM recordings
		WHERE uploaded = FALSE
		ORDER BY start_time ASC NULLS FIRST, id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select unmigrated recordings: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ID, &c.Filename, &c.LocalPath, &c.AgentID,
			&c.Extension, &c.CallerID, &c.CalledID, &c.StartTime,
			&c.Duration, &c.ContentType); err != nil {
			return nil, fmt.Errorf("failed to scan candidate row: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// MarkUploaded flips an entry to uploaded and records its storage key in one
// UPDATE, so the uploaded/s3_path pairing can never be observed half-set.
// The uploaded guard makes the transition one-way.
func (s *Store) MarkUploaded(ctx context.Context, id int64, s3Path string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE recordings
		SET uploaded = TRUE, s3_path = $1
		WHERE id = $2 AND uploaded = FALSE`, s3Path, id)
	if err != nil {
		return fmt.Errorf("failed to mark recording %d uploaded: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recording %d not found or already uploaded", id)
	}
	return nil
}

// Counts returns total and uploaded row counts, for the status command.
func (s *Store) Counts(ctx context.Context) (total, uploaded int64, err error) {
	err = s.db.QueryRow(ctx, `
		SELECT count(*), count(*) FILTER (WHERE uploaded)
		FROM recordings`).Scan(&total, &uploaded)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count recordings: %w", err)
	}
	return total, uploaded, nil
}

// TxRunner runs sweep work inside a single transaction.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner creates a TxRunner on the pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunInTx executes fn inside a transaction, committing on success and
// rolling back on error. A sweep commits exactly once, at the end, so a
// failed sweep never leaves partial state visible.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
