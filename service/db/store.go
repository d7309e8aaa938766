package db

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/brojonat/suiscope/service/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when no archived transaction matches a digest.
var ErrNotFound = errors.New("raw transaction not found")

const rawTransactionsTable = "raw_transactions"

// Store archives raw transaction payloads exactly as the RPC node returned
// them. Translated output is never persisted here.
type Store struct {
	pool    *pgxpool.Pool
	metrics *metrics.Metrics
}

// NewStore creates a new Store with the given database connection pool.
// Metrics may be nil.
func NewStore(pool *pgxpool.Pool, m *metrics.Metrics) *Store {
	return &Store{
		pool:    pool,
		metrics: m,
	}
}

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

// RawTransaction is an archived sui_getTransactionBlock result.
type RawTransaction struct {
	Digest     string
	Checkpoint *int64
	Sender     string
	Payload    json.RawMessage
	FetchedAt  time.Time
}

// UpsertRawTransactionParams contains the parameters for archiving a payload.
type UpsertRawTransactionParams struct {
	Digest     string
	Checkpoint *uint64
	Sender     string
	Payload    json.RawMessage
}

// Migrate applies the embedded schema files in lexicographic order. Every
// statement is idempotent so reruns are safe.
func (s *Store) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("postgres: list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := migrationsFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("postgres: read migration %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("postgres: apply migration %s: %w", name, err)
		}
	}
	return nil
}

// GetRawTransaction retrieves an archived payload by digest.
func (s *Store) GetRawTransaction(ctx context.Context, digest string) (tx *RawTransaction, err error) {
	defer s.observe("select", time.Now(), &err)

	const query = `SELECT digest, checkpoint, sender, payload, fetched_at FROM raw_transactions WHERE digest = $1`

	var row RawTransaction
	var payload []byte
	err = s.pool.QueryRow(ctx, query, digest).Scan(
		&row.Digest, &row.Checkpoint, &row.Sender, &payload, &row.FetchedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get raw transaction %s: %w", digest, err)
	}
	row.Payload = json.RawMessage(payload)
	return &row, nil
}

// UpsertRawTransaction inserts a payload or refreshes the stored copy.
func (s *Store) UpsertRawTransaction(ctx context.Context, params UpsertRawTransactionParams) (tx *RawTransaction, err error) {
	defer s.observe("upsert", time.Now(), &err)

	if params.Digest == "" {
		return nil, fmt.Errorf("postgres: upsert raw transaction: digest is required")
	}
	if !json.Valid(params.Payload) {
		return nil, fmt.Errorf("postgres: upsert raw transaction %s: payload is not valid JSON", params.Digest)
	}

	var checkpoint *int64
	if params.Checkpoint != nil {
		v := int64(*params.Checkpoint)
		checkpoint = &v
	}

	const query = `
		INSERT INTO raw_transactions (digest, checkpoint, sender, payload, fetched_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (digest) DO UPDATE SET
			checkpoint = COALESCE(EXCLUDED.checkpoint, raw_transactions.checkpoint),
			sender = EXCLUDED.sender,
			payload = EXCLUDED.payload,
			fetched_at = EXCLUDED.fetched_at
		RETURNING digest, checkpoint, sender, payload, fetched_at`

	var row RawTransaction
	var payload []byte
	err = s.pool.QueryRow(ctx, query, params.Digest, checkpoint, params.Sender, []byte(params.Payload)).Scan(
		&row.Digest, &row.Checkpoint, &row.Sender, &payload, &row.FetchedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: upsert raw transaction %s: %w", params.Digest, err)
	}
	row.Payload = json.RawMessage(payload)
	return &row, nil
}

// ListRawTransactionsBySender returns the most recently fetched digests for
// a sender, newest first.
func (s *Store) ListRawTransactionsBySender(ctx context.Context, sender string, limit int32) (digests []string, err error) {
	defer s.observe("select", time.Now(), &err)

	if limit <= 0 {
		limit = 50
	}

	const query = `SELECT digest FROM raw_transactions WHERE sender = $1 ORDER BY fetched_at DESC LIMIT $2`

	rows, err := s.pool.Query(ctx, query, sender, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list raw transactions for %s: %w", sender, err)
	}
	digests, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: scan raw transactions for %s: %w", sender, err)
	}
	return digests, nil
}

// CountRawTransactions returns the number of archived payloads.
func (s *Store) CountRawTransactions(ctx context.Context) (n int64, err error) {
	defer s.observe("count", time.Now(), &err)

	if err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM raw_transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count raw transactions: %w", err)
	}
	return n, nil
}

// DeleteRawTransaction removes an archived payload. Deleting a missing
// digest returns ErrNotFound.
func (s *Store) DeleteRawTransaction(ctx context.Context, digest string) (err error) {
	defer s.observe("delete", time.Now(), &err)

	tag, err := s.pool.Exec(ctx, `DELETE FROM raw_transactions WHERE digest = $1`, digest)
	if err != nil {
		return fmt.Errorf("postgres: delete raw transaction %s: %w", digest, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) observe(operation string, start time.Time, errp *error) {
	if s.metrics == nil {
		return
	}
	var err error
	if errp != nil && !errors.Is(*errp, ErrNotFound) {
		err = *errp
	}
	s.metrics.RecordDBQuery(operation, rawTransactionsTable, time.Since(start).Seconds(), err)
}
