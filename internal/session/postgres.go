package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	postgresConnectTimeout = 10 * time.Second
	postgresQueryTimeout   = 5 * time.Second

	// All snapshots share one row; the shell only ever restores the latest.
	currentSlot = "current"
)

// PostgresStore keeps the snapshot as a JSONB document in PostgreSQL.
type PostgresStore struct {
	db        *sql.DB
	sessionID string
	logger    *slog.Logger
}

// OpenPostgres connects to dsn, verifies the connection and creates the
// sessions table if needed.
func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres session backend requires session.dsn")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, postgresConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{
		db:        db,
		sessionID: uuid.NewString(),
		logger:    logger,
	}
	if err := s.initializeSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) initializeSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, postgresQueryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS berke0s_sessions (
			slot       TEXT PRIMARY KEY,
			session_id UUID NOT NULL,
			snapshot   JSONB NOT NULL,
			saved_at   TIMESTAMPTZ NOT NULL
		)`)
	return err
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, entries []Entry) error {
	savedAt := time.Now().UTC()
	data, err := Encode(Snapshot{SessionID: s.sessionID, SavedAt: savedAt, Windows: entries})
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, postgresQueryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "save", Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO berke0s_sessions (slot, session_id, snapshot, saved_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slot) DO UPDATE
		SET session_id = EXCLUDED.session_id,
		    snapshot   = EXCLUDED.snapshot,
		    saved_at   = EXCLUDED.saved_at`,
		currentSlot, s.sessionID, string(data), savedAt)
	if err != nil {
		s.logger.Error("session: failed to store snapshot", "error", err)
		return &PersistenceError{Op: "save", Err: fmt.Errorf("failed to upsert snapshot: %w", err)}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "save", Err: fmt.Errorf("failed to commit snapshot: %w", err)}
	}

	s.logger.Debug("session: saved to postgres", "windows", len(entries))
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) []Entry {
	ctx, cancel := context.WithTimeout(ctx, postgresQueryTimeout)
	defer cancel()

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM berke0s_sessions WHERE slot = $1`, currentSlot).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("session: failed to query snapshot", "error", err)
		}
		return []Entry{}
	}

	snap, err := Decode([]byte(raw))
	if err != nil {
		s.logger.Warn("session: ignoring corrupt snapshot", "error", err)
		return []Entry{}
	}
	return snap.Windows
}
