package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config describes how to reach PostgreSQL and how large the pool may grow.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	// PoolSize bounds concurrent connections; callers beyond it queue.
	PoolSize int32
	// AcquireTimeout bounds the wait for a pooled connection. Zero waits forever.
	AcquireTimeout time.Duration
	ConnectTimeout time.Duration
}

// ConnString renders the config as a postgres:// URL.
func (c Config) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// PoolConfig parses the connection string and applies pool sizing.
func PoolConfig(c Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(c.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if c.PoolSize > 0 {
		pc.MaxConns = c.PoolSize
	}
	pc.MinConns = 0
	if c.ConnectTimeout > 0 {
		pc.ConnConfig.ConnectTimeout = c.ConnectTimeout
	}
	return pc, nil
}

// Store is the only component that talks SQL. It owns a bounded pgx pool and
// exposes one parametrized execution primitive plus schema setup.
type Store struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

// Result carries the rows of a statement (column name to value) and the
// number of rows it affected.
type Result struct {
	Rows         []map[string]any
	RowsAffected int64
}

// NewStore builds the pool. No connection is opened until first use, so this
// succeeds even while the database is still starting.
func NewStore(ctx context.Context, c Config) (*Store, error) {
	pc, err := PoolConfig(c)
	if err != nil {
		return nil, err
	}
	return newStore(ctx, pc, c.AcquireTimeout)
}

func newStore(ctx context.Context, pc *pgxpool.Config, acquireTimeout time.Duration) (*Store, error) {
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return &Store{pool: pool, acquireTimeout: acquireTimeout}, nil
}

// Pool exposes the underlying pool for stats collection.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Close() { s.pool.Close() }

const createItemsTable = `CREATE TABLE IF NOT EXISTS items (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	created_at TIMESTAMP DEFAULT NOW()
)`

// InitializeSchema creates the items table when absent. It is safe to call on
// every start, including from several replicas at once.
func (s *Store) InitializeSchema(ctx context.Context) error {
	conn, _, err := s.acquire(ctx)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, createItemsTable); err != nil {
		if alreadyExists(err) {
			return nil
		}
		if pgconn.SafeToRetry(err) || isConnectivity(err) {
			return &ConnectionError{Err: err}
		}
		return &SchemaError{Err: err}
	}
	return nil
}

// Execute runs one statement with positional ($1, $2, ...) parameters. Values
// are always sent as bind parameters. Errors come back as *QueryError and are
// never retried here.
func (s *Store) Execute(ctx context.Context, stmt string, args ...any) (*Result, error) {
	conn, timedOut, err := s.acquire(ctx)
	if err != nil {
		return nil, &QueryError{Statement: stmt, Timeout: timedOut, Err: &ConnectionError{Err: err}}
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, stmt, args...)
	if err != nil {
		return nil, &QueryError{Statement: stmt, Err: err}
	}
	out, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, &QueryError{Statement: stmt, Err: err}
	}
	return &Result{Rows: out, RowsAffected: rows.CommandTag().RowsAffected()}, nil
}

// Ping checks that a connection can be acquired and used.
func (s *Store) Ping(ctx context.Context) error {
	conn, _, err := s.acquire(ctx)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	defer conn.Release()
	return conn.Ping(ctx)
}

// acquire waits at most acquireTimeout for a connection. The bool reports
// whether the wait ended on that timeout while every connection was checked
// out. A timeout spent dialing an unresponsive server is a connection failure.
func (s *Store) acquire(ctx context.Context) (*pgxpool.Conn, bool, error) {
	actx := ctx
	if s.acquireTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, s.acquireTimeout)
		defer cancel()
	}
	conn, err := s.pool.Acquire(actx)
	if err != nil {
		timedOut := errors.Is(actx.Err(), context.DeadlineExceeded) && ctx.Err() == nil && saturated(s.pool)
		return nil, timedOut, err
	}
	return conn, false, nil
}

func saturated(src StatSource) bool {
	st := src.Stat()
	return st.AcquiredConns() >= st.MaxConns()
}

// duplicate_table and unique_violation (concurrent CREATE racing on pg_type).
func alreadyExists(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P07" || pgErr.Code == "23505"
	}
	return false
}

func isConnectivity(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || pgconn.Timeout(err)
}
