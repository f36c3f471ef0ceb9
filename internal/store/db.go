// Package store is the result store (C4): a single sqlite-backed table of
// backtest results, keyed by strategy-config fingerprint, with the
// paginate/top-unique/stats read paths the discovery agent and API need.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// DB wraps the single sqlite connection pool the result store writes
// through. spec §5 calls out the store's connection pool as the one shared
// mutable resource besides the discovery agent's top-N/progress state, and
// requires a single writer with non-blocking consistent readers — sqlite's
// own file-level locking already serializes writers, so writeMu narrows the
// critical section further to avoid SQLITE_BUSY retries under the
// discovery agent's one-candidate-at-a-time insert cadence.
type DB struct {
	conn    *sql.DB
	writeMu sync.Mutex
}

// Open opens (creating if absent) the sqlite file at path and configures
// its pool per spec §6's "bounded (e.g. 5)" connection guidance.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	log.Info().Str("path", path).Msg("result store opened")
	return &DB{conn: conn}, nil
}

// Close closes the underlying connection pool.
func (d *DB) Close() error {
	return d.conn.Close()
}

// withWriteLock serializes a write operation against every other writer on
// this process — the "narrow critical section, no nested locks" spec §5
// asks for. Readers never take writeMu, so status()/query_results() stay
// non-blocking while a backtest result is being inserted.
func (d *DB) withWriteLock(fn func() error) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	return fn()
}
