package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const partitionTable = "public.partitions"

const createPartitionTable = `CREATE TABLE IF NOT EXISTS public.partitions (
	name       text PRIMARY KEY,
	payload    jsonb NOT NULL DEFAULT '[]'::jsonb,
	updated_at timestamptz NOT NULL DEFAULT now()
)`

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxStore keeps each partition as one jsonb row in public.partitions.
type PgxStore struct {
	pool *pgxpool.Pool

	readAttempts int
	retryBackoff time.Duration
}

// NewPgxStore creates a PgxStore on pool. Call EnsureSchema before first use.
func NewPgxStore(pool *pgxpool.Pool) *PgxStore {
	return &PgxStore{pool: pool, readAttempts: 3, retryBackoff: 100 * time.Millisecond}
}

// ConnectPgx opens a pool on dsn, pings it and prepares the schema.
// The caller owns the returned pool and must Close it.
func ConnectPgx(ctx context.Context, dsn string) (*PgxStore, *pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	// Atomic holds row locks for the whole transaction; keep idle connections short-lived.
	cfg.MaxConnIdleTime = 5 * time.Minute
	if cfg.ConnConfig.RuntimeParams["application_name"] == "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = "venue-booking"
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := NewPgxStore(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return s, pool, nil
}

// EnsureSchema creates the partitions table if it does not exist.
func (s *PgxStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createPartitionTable); err != nil {
		return fmt.Errorf("create partitions table failed: %w", err)
	}
	return nil
}

// Load reads a partition, retrying on transient connection failures.
func (s *PgxStore) Load(ctx context.Context, name string, dst any) error {
	var raw []byte
	err := s.retry(ctx, func() error {
		var err error
		raw, err = selectPayload(ctx, s.pool, name, false)
		return err
	})
	if err != nil {
		return err
	}
	return unmarshalPartition(name, raw, dst)
}

// Save writes a partition. Writes are never retried.
func (s *PgxStore) Save(ctx context.Context, name string, v any) error {
	return upsertPayload(ctx, s.pool, name, v)
}

// Atomic runs fn inside one transaction. Every partition fn loads is row-locked
// until commit, so concurrent read-validate-write sequences serialize.
func (s *PgxStore) Atomic(ctx context.Context, fn func(p Partitions) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgxTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction failed: %w", err)
	}
	return nil
}

func (s *PgxStore) retry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 1; attempt <= s.readAttempts; attempt++ {
		if err = op(); err == nil || !isTransient(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * s.retryBackoff):
		}
	}
	return err
}

type pgxTx struct {
	tx pgx.Tx
}

func (p *pgxTx) Load(ctx context.Context, name string, dst any) error {
	// Make sure the row exists so FOR UPDATE has something to lock.
	query, args, err := psql.Insert(partitionTable).
		Columns("name", "payload").
		Values(name, "[]").
		Suffix("ON CONFLICT (name) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert partition query failed: %w", err)
	}
	if _, err := p.tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert partition %s failed: %w", name, err)
	}

	raw, err := selectPayload(ctx, p.tx, name, true)
	if err != nil {
		return err
	}
	return unmarshalPartition(name, raw, dst)
}

func (p *pgxTx) Save(ctx context.Context, name string, v any) error {
	return upsertPayload(ctx, p.tx, name, v)
}

func selectPayload(ctx context.Context, q querier, name string, lock bool) ([]byte, error) {
	builder := psql.Select("payload").
		From(partitionTable).
		Where(squirrel.Eq{"name": name})
	if lock {
		builder = builder.Suffix("FOR UPDATE")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select partition query failed: %w", err)
	}

	var raw []byte
	if err := q.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select partition %s failed: %w", name, err)
	}
	return raw, nil
}

func upsertPayload(ctx context.Context, q querier, name string, v any) error {
	raw, err := marshalPartition(name, v)
	if err != nil {
		return err
	}

	query, args, err := psql.Insert(partitionTable).
		Columns("name", "payload", "updated_at").
		Values(name, string(raw), squirrel.Expr("now()")).
		Suffix("ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert partition query failed: %w", err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert partition %s failed: %w", name, err)
	}
	return nil
}

// isTransient reports whether a failed read may succeed when repeated.
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code) ||
			pgerrcode.IsTransactionRollback(pgErr.Code) ||
			pgErr.Code == pgerrcode.AdminShutdown ||
			pgErr.Code == pgerrcode.CannotConnectNow
	}
	return pgconn.SafeToRetry(err)
}
