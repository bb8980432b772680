package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"etfdesk/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ LedgerArchive = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS archives (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	trade_count INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS archives_session ON archives (session_id, created_at);
CREATE TABLE IF NOT EXISTS archive_trades (
	archive_id TEXT NOT NULL REFERENCES archives (id),
	seq        INTEGER NOT NULL,
	trade_id   TEXT NOT NULL,
	date       TEXT NOT NULL,
	symbol     TEXT NOT NULL,
	direction  TEXT NOT NULL,
	entry      REAL NOT NULL,
	exit       REAL NOT NULL,
	contracts  INTEGER NOT NULL,
	return_pct REAL NOT NULL,
	note       TEXT NOT NULL,
	PRIMARY KEY (archive_id, seq)
);`

// SQLiteStore implements LedgerArchive backed by a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and applies
// the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// One writer keeps SQLite free of SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveArchive inserts the archive header and all trades in one transaction.
func (s *SQLiteStore) SaveArchive(ctx context.Context, sessionID string, trades []domain.Trade) (Archive, error) {
	a := Archive{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		CreatedAt:  s.now().UTC().Truncate(time.Millisecond),
		TradeCount: len(trades),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Archive{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO archives (id, session_id, created_at, trade_count) VALUES (?, ?, ?, ?)`,
		a.ID, a.SessionID, a.CreatedAt.UnixMilli(), a.TradeCount,
	); err != nil {
		return Archive{}, fmt.Errorf("inserting archive: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO archive_trades
		(archive_id, seq, trade_id, date, symbol, direction, entry, exit, contracts, return_pct, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Archive{}, err
	}
	defer stmt.Close()

	for i, t := range trades {
		if _, err := stmt.ExecContext(ctx,
			a.ID, i, t.ID, t.DateString(), t.Symbol, string(t.Direction),
			t.Entry, t.Exit, t.Contracts, t.ReturnPct, t.Note,
		); err != nil {
			return Archive{}, fmt.Errorf("inserting trade %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Archive{}, err
	}
	return a, nil
}

// GetArchive returns the archive with id and its trades.
func (s *SQLiteStore) GetArchive(ctx context.Context, id string) (Archive, []domain.Trade, error) {
	var (
		a       Archive
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, created_at, trade_count FROM archives WHERE id = ?`, id,
	).Scan(&a.ID, &a.SessionID, &created, &a.TradeCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Archive{}, nil, fmt.Errorf("archive %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return Archive{}, nil, err
	}
	a.CreatedAt = time.UnixMilli(created).UTC()

	rows, err := s.db.QueryContext(ctx, `SELECT trade_id, date, symbol, direction, entry, exit, contracts, return_pct, note
		FROM archive_trades WHERE archive_id = ? ORDER BY seq`, id)
	if err != nil {
		return Archive{}, nil, err
	}
	defer rows.Close()

	trades := make([]domain.Trade, 0, a.TradeCount)
	for rows.Next() {
		var (
			t    domain.Trade
			date string
			dir  string
		)
		if err := rows.Scan(&t.ID, &date, &t.Symbol, &dir, &t.Entry, &t.Exit, &t.Contracts, &t.ReturnPct, &t.Note); err != nil {
			return Archive{}, nil, err
		}
		if t.Date, err = time.Parse(domain.DateLayout, date); err != nil {
			return Archive{}, nil, fmt.Errorf("trade %s date: %w", t.ID, err)
		}
		t.Direction = domain.Direction(dir)
		trades = append(trades, t)
	}
	return a, trades, rows.Err()
}

// ListArchives returns archives for sessionID, newest first.
func (s *SQLiteStore) ListArchives(ctx context.Context, sessionID string) ([]Archive, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, session_id, created_at, trade_count
		FROM archives WHERE session_id = ? ORDER BY created_at DESC, rowid DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Archive
	for rows.Next() {
		var (
			a       Archive
			created int64
		)
		if err := rows.Scan(&a.ID, &a.SessionID, &created, &a.TradeCount); err != nil {
			return nil, err
		}
		a.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}
