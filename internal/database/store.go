// Package database is the only package that talks to PostgreSQL.
//
// A Store executes parameterized queries and hands back plain rows or counts.
// It never interprets failures: raw driver errors are returned wrapped with
// the failing operation, and callers translate them (see core.WrapDB).
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// Query is a SQL statement with positional ($1, $2, ...) bind values.
// Values are always sent separately from the SQL text.
type Query struct {
	SQL  string
	Args []any
}

// Q builds a Query.
func Q(sql string, args ...any) Query {
	return Query{SQL: sql, Args: args}
}

// ErrNoReturning is returned by Insert when the statement has no RETURNING
// clause to report the generated key.
var ErrNoReturning = errors.New("insert query must end with RETURNING id")

// Store executes queries against one shared connection pool.
// It adds no locking of its own; the pool is safe for concurrent use.
type Store struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

// New wraps a pgx pool in a Store using the pgx database/sql driver.
func New(pool *pgxpool.Pool) *Store {
	return NewWithDB(sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"))
}

// NewWithDB wraps an existing sqlx handle. Tests use it with sqlmock.
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db, ext: db}
}

// Close releases the database/sql handle. The underlying pool is closed by
// its owner.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SelectMany runs a read query and returns every row in result order.
// The result is empty, not nil, when nothing matches.
func (s *Store) SelectMany(ctx context.Context, q Query) ([]Row, error) {
	rows, err := s.ext.QueryxContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("select many: %w", err)
	}
	defer rows.Close()

	result := make([]Row, 0)
	for rows.Next() {
		m := make(map[string]any)
		if err := rows.MapScan(m); err != nil {
			return nil, fmt.Errorf("select many: scan: %w", err)
		}
		result = append(result, normalize(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select many: %w", err)
	}

	return result, nil
}

// SelectOne runs a read query expected to match at most one row.
// ok is false (with a nil error) when nothing matches.
func (s *Store) SelectOne(ctx context.Context, q Query) (row Row, ok bool, err error) {
	m := make(map[string]any)
	if err := s.ext.QueryRowxContext(ctx, q.SQL, q.Args...).MapScan(m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("select one: %w", err)
	}
	return normalize(m), true, nil
}

// Insert runs a statement that creates one row and returns its generated
// primary key. The statement must end with "RETURNING id".
func (s *Store) Insert(ctx context.Context, q Query) (int64, error) {
	if !strings.Contains(strings.ToUpper(q.SQL), "RETURNING") {
		return 0, ErrNoReturning
	}

	var id int64
	if err := s.ext.QueryRowxContext(ctx, q.SQL, q.Args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("insert: database returned non-positive id %d", id)
	}
	return id, nil
}

// Execute runs an update or delete and returns the number of affected rows.
func (s *Store) Execute(ctx context.Context, q Query) (int64, error) {
	res, err := s.ext.ExecContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return 0, fmt.Errorf("execute: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("execute: rows affected: %w", err)
	}
	return n, nil
}

// HealthCheck performs a trivial round trip. Any failure yields false; the
// error itself is only logged at debug level.
func (s *Store) HealthCheck(ctx context.Context) bool {
	var one int
	if err := s.ext.QueryRowxContext(ctx, "SELECT 1").Scan(&one); err != nil {
		slog.Debug("database health check failed", "error", err)
		return false
	}
	return one == 1
}

// WithTx runs fn against a Store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) (err error) {
	if s.db == nil {
		return errors.New("nested transactions are not supported")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Warn("rollback failed", "error", rbErr)
			}
		}
	}()

	if err = fn(&Store{ext: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
