package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/expertteam/expert/internal/application/audit"
	"github.com/expertteam/expert/internal/application/auth"
	"github.com/expertteam/expert/internal/application/comment"
	"github.com/expertteam/expert/internal/application/manager"
	"github.com/expertteam/expert/internal/application/todo"
	"github.com/expertteam/expert/internal/application/user"
)

const instrumentationName = "github.com/expertteam/expert/internal/infrastructure/persistence/postgres"

// dbtx is the query surface shared by *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// Store provides the PostgreSQL implementation of all repository interfaces.
//
// This store implements:
// - application/auth.Repository (signup, signin, last_seen_at)
// - application/user.Repository (profile, password, role, profile image)
// - application/todo.Repository (create, get, list, search)
// - application/manager.Store (assignments, atomic)
// - application/comment.Repository
// - application/audit.Repository (manager logs, always outside caller transactions)
type Store struct {
	pool *pgxpool.Pool
	db   dbtx
	tx   pgx.Tx // non-nil when the store is bound to a transaction

	searchDuration metric.Float64Histogram
}

// Compile-time verification that Store implements all repository interfaces.
var (
	_ auth.Repository    = (*Store)(nil)
	_ user.Repository    = (*Store)(nil)
	_ todo.Repository    = (*Store)(nil)
	_ manager.Store      = (*Store)(nil)
	_ comment.Repository = (*Store)(nil)
	_ audit.Repository   = (*Store)(nil)
)

// NewStore creates a new PostgreSQL store with the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	meter := otel.Meter(instrumentationName)
	searchDuration, err := meter.Float64Histogram("todo.search.duration",
		metric.WithDescription("Duration of todo search content and count queries"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		slog.Warn("failed to create search duration histogram", "error", err)
	}

	return &Store{
		pool:           pool,
		db:             pool,
		searchDuration: searchDuration,
	}
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// finalizeTx handles transaction cleanup for normal error/success cases.
// Rolls back on error, commits on success.
// Panics are handled separately in the defer blocks before finalizeTx is called.
func finalizeTx(ctx context.Context, tx pgx.Tx, err *error) {
	if *err != nil {
		slog.DebugContext(ctx, "transaction failed, rolling back",
			"error", *err)
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			slog.ErrorContext(ctx, "rollback failed",
				"original_error", *err,
				"rollback_error", rbErr)
			*err = fmt.Errorf("transaction failed: %w (rollback error: %v)", *err, rbErr)
		}
	} else {
		*err = tx.Commit(ctx)
		if *err != nil {
			slog.ErrorContext(ctx, "transaction commit failed",
				"error", *err)
		}
	}
}

// executeInTransaction executes a callback within a transaction with logging and panic recovery.
func (s *Store) executeInTransaction(ctx context.Context, operationName string, fn func(txStore *Store) error) (err error) {
	start := time.Now().UTC()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to begin transaction",
			"operation", operationName,
			"error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			slog.ErrorContext(ctx, "transaction panic, rolling back",
				"operation", operationName,
				"panic", p)
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.ErrorContext(ctx, "rollback after panic failed",
					"operation", operationName,
					"panic", p,
					"rollback_error", rbErr)
			}
			panic(p)
		}

		finalizeTx(ctx, tx, &err)
		if err == nil {
			slog.DebugContext(ctx, "transaction completed",
				"operation", operationName,
				"duration_ms", time.Since(start).Milliseconds())
		}
	}()

	txStore := &Store{
		pool:           s.pool,
		db:             tx,
		tx:             tx,
		searchDuration: s.searchDuration,
	}

	err = fn(txStore)
	return
}

// readOnly runs fn against a REPEATABLE READ, READ ONLY transaction so that
// several queries observe one snapshot. A store already bound to a
// transaction reuses it.
func (s *Store) readOnly(ctx context.Context, fn func(q dbtx) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}

	// Commit read-only transaction (releases snapshot)
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AtomicManagers executes fn within a database transaction.
// The callback receives a manager.Repository bound to the transaction;
// it commits if fn returns nil and rolls back otherwise.
func (s *Store) AtomicManagers(ctx context.Context, fn func(repo manager.Repository) error) error {
	return s.executeInTransaction(ctx, "atomic_managers", func(txStore *Store) error {
		return fn(txStore)
	})
}
