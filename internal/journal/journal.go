// Package journal persists every trade execution to a local SQLite
// database, so fills and rejections survive terminal restarts.
package journal

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"gomt5/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS executions (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	recorded_at     INTEGER NOT NULL,
	account         TEXT    NOT NULL,
	symbol          TEXT    NOT NULL,
	action          INTEGER NOT NULL,
	order_type      INTEGER NOT NULL,
	volume          REAL    NOT NULL,
	price           REAL    NOT NULL,
	sl              REAL    NOT NULL,
	tp              REAL    NOT NULL,
	magic           INTEGER NOT NULL,
	comment         TEXT    NOT NULL,
	retcode         INTEGER NOT NULL,
	retcode_comment TEXT    NOT NULL,
	order_ticket    INTEGER NOT NULL,
	deal_ticket     INTEGER NOT NULL,
	fill_volume     REAL    NOT NULL,
	fill_price      REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_executions_account ON executions(account, recorded_at);
CREATE INDEX IF NOT EXISTS idx_executions_symbol  ON executions(symbol, recorded_at);
CREATE INDEX IF NOT EXISTS idx_executions_magic   ON executions(magic, recorded_at);
`

// Entry is one recorded execution, successful or rejected.
type Entry struct {
	ID             int64              `json:"id"`
	RecordedAt     time.Time          `json:"recorded_at"`
	Account        string             `json:"account"`
	Symbol         string             `json:"symbol"`
	Action         domain.TradeAction `json:"action"`
	OrderType      domain.OrderType   `json:"order_type"`
	Volume         float64            `json:"volume"`
	Price          float64            `json:"price"`
	SL             float64            `json:"sl"`
	TP             float64            `json:"tp"`
	Magic          int64              `json:"magic"`
	Comment        string             `json:"comment"`
	Retcode        uint32             `json:"retcode"`
	RetcodeComment string             `json:"retcode_comment"`
	OrderTicket    int64              `json:"order_ticket"`
	DealTicket     int64              `json:"deal_ticket"`
	FillVolume     float64            `json:"fill_volume"`
	FillPrice      float64            `json:"fill_price"`
}

// Journal is a SQLite-backed execution log.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at dbPath and ensures the
// schema exists.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record writes one execution. The request describes what was asked, the
// result what the trade server answered; rejected requests are recorded too.
func (j *Journal) Record(ctx context.Context, account string, req *domain.TradeRequest, res *domain.TradeResult) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO executions (
			recorded_at, account, symbol, action, order_type,
			volume, price, sl, tp, magic, comment,
			retcode, retcode_comment, order_ticket, deal_ticket,
			fill_volume, fill_price
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Unix(), account, req.Symbol, req.Action, req.Type,
		req.Volume, req.Price, req.SL, req.TP, req.Magic, req.Comment,
		res.Retcode, res.Comment, res.Order, res.Deal,
		res.Volume, res.Price,
	)
	return err
}

const selectEntries = `
	SELECT id, recorded_at, account, symbol, action, order_type,
	       volume, price, sl, tp, magic, comment,
	       retcode, retcode_comment, order_ticket, deal_ticket,
	       fill_volume, fill_price
	FROM executions`

// List returns the most recent executions for an account, newest first.
// Account "" lists across accounts.
func (j *Journal) List(ctx context.Context, account string, limit int) ([]Entry, error) {
	if account == "" {
		return j.queryEntries(ctx, "", limit)
	}
	return j.queryEntries(ctx, `WHERE account = ?`, limit, account)
}

// BySymbol returns the most recent executions for one symbol, newest first.
func (j *Journal) BySymbol(ctx context.Context, symbol string, limit int) ([]Entry, error) {
	return j.queryEntries(ctx, `WHERE symbol = ?`, limit, symbol)
}

// ByMagic returns the most recent executions tagged with one magic number,
// newest first. This is the per-strategy view of the journal.
func (j *Journal) ByMagic(ctx context.Context, magic int64, limit int) ([]Entry, error) {
	return j.queryEntries(ctx, `WHERE magic = ?`, limit, magic)
}

func (j *Journal) queryEntries(ctx context.Context, where string, limit int, args ...any) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := selectEntries
	if where != "" {
		query += " " + where
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var recordedAt int64
		if err := rows.Scan(
			&e.ID, &recordedAt, &e.Account, &e.Symbol, &e.Action, &e.OrderType,
			&e.Volume, &e.Price, &e.SL, &e.TP, &e.Magic, &e.Comment,
			&e.Retcode, &e.RetcodeComment, &e.OrderTicket, &e.DealTicket,
			&e.FillVolume, &e.FillPrice,
		); err != nil {
			return nil, err
		}
		e.RecordedAt = time.Unix(recordedAt, 0).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
