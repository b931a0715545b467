package recorder

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/buydip/internal/entity"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cycles (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	date      TEXT NOT NULL,
	pair      TEXT NOT NULL,
	bought    INTEGER NOT NULL,
	tier      TEXT NOT NULL,
	amount    TEXT NOT NULL,
	quote     TEXT NOT NULL,
	order_id  TEXT NOT NULL,
	reason    TEXT NOT NULL,
	error     TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cycles_date ON cycles(date);
`

// SQLite records cycle outcomes into a local sqlite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and applies the schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to apply schema")
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) RecordCycle(outcome entity.Outcome) error {
	errText := ""
	if outcome.Err != nil {
		errText = outcome.Err.Error()
	}

	_, err := s.db.Exec(
		`INSERT INTO cycles (date, pair, bought, tier, amount, quote, order_id, reason, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		outcome.Date.UTC().Format("2006-01-02"),
		outcome.Pair.String(),
		boolToInt(outcome.Bought),
		outcome.Tier.String(),
		outcome.Amount.String(),
		outcome.Quote.String(),
		outcome.OrderID,
		outcome.Reason,
		errText,
		time.Now().UTC().Format(time.RFC3339),
	)
	return errors.Wrap(err, "failed to record cycle")
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
