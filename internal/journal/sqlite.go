package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"tradeforge/internal/types"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteJournal implements Journal using SQLite.
type SQLiteJournal struct {
	db *sql.DB
}

var _ Journal = (*SQLiteJournal)(nil)

// NewSQLiteJournal opens (or creates) the journal database at path.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	j := &SQLiteJournal{db: db}

	if err := j.migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return j, nil
}

func (j *SQLiteJournal) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			client_order_id TEXT,
			symbol TEXT NOT NULL,
			qty TEXT NOT NULL,
			side TEXT NOT NULL,
			type TEXT NOT NULL,
			time_in_force TEXT,
			limit_price TEXT,
			stop_price TEXT,
			status TEXT NOT NULL,
			filled_qty TEXT NOT NULL DEFAULT '0',
			filled_avg_price TEXT NOT NULL DEFAULT '0',
			reject_reason TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_client_order_id ON orders(client_order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_symbol ON orders(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,

		`CREATE TABLE IF NOT EXISTS account_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME NOT NULL,
			account_id TEXT NOT NULL,
			currency TEXT NOT NULL,
			cash TEXT NOT NULL,
			buying_power TEXT NOT NULL,
			portfolio_value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_timestamp ON account_snapshots(timestamp)`,
	}

	for _, m := range migrations {
		if _, err := j.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("run migration: %w", err)
		}
	}
	return nil
}

// RecordOrder upserts an order keyed by its id.
func (j *SQLiteJournal) RecordOrder(ctx context.Context, o types.Order) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, client_order_id, symbol, qty, side, type, time_in_force,
			limit_price, stop_price, status, filled_qty, filled_avg_price,
			reject_reason, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			filled_qty = excluded.filled_qty,
			filled_avg_price = excluded.filled_avg_price,
			reject_reason = excluded.reject_reason,
			updated_at = excluded.updated_at`,
		o.ID, o.ClientOrderID, o.Symbol, o.Qty.String(), string(o.Side),
		string(o.Type), string(o.TimeInForce), decimalPtrString(o.LimitPrice),
		decimalPtrString(o.StopPrice), string(o.Status), o.FilledQty.String(),
		o.FilledAvgPrice.String(), o.RejectReason, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("record order: %w", err)
	}
	return nil
}

// RecordAccount appends an account snapshot.
func (j *SQLiteJournal) RecordAccount(ctx context.Context, a types.Account) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO account_snapshots (
			timestamp, account_id, currency, cash, buying_power, portfolio_value
		) VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), a.ID, a.Currency, a.Cash.String(),
		a.BuyingPower.String(), a.PortfolioValue.String(),
	)
	if err != nil {
		return fmt.Errorf("record account: %w", err)
	}
	return nil
}

// Orders returns the most recent orders for a symbol, newest first.
func (j *SQLiteJournal) Orders(ctx context.Context, symbol string, limit int) ([]types.Order, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, client_order_id, symbol, qty, side, type, time_in_force,
			limit_price, stop_price, status, filled_qty, filled_avg_price,
			reject_reason, created_at, updated_at
		FROM orders`
	args := []any{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []types.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Close closes the database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func scanOrder(rows *sql.Rows) (types.Order, error) {
	var (
		o                        types.Order
		qty, filledQty, avgPrice string
		side, typ, tif, status   string
		limitPrice, stopPrice    sql.NullString
		clientOrderID, rejectWhy sql.NullString
	)

	err := rows.Scan(&o.ID, &clientOrderID, &o.Symbol, &qty, &side, &typ,
		&tif, &limitPrice, &stopPrice, &status, &filledQty, &avgPrice,
		&rejectWhy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return o, fmt.Errorf("scan order: %w", err)
	}

	o.ClientOrderID = clientOrderID.String
	o.RejectReason = rejectWhy.String
	o.Side = types.OrderSide(side)
	o.Type = types.OrderType(typ)
	o.TimeInForce = types.TimeInForce(tif)
	o.Status = types.OrderStatus(status)
	o.Target = types.Single(o.Symbol)

	if o.Qty, err = decimal.NewFromString(qty); err != nil {
		return o, fmt.Errorf("parse qty: %w", err)
	}
	if o.FilledQty, err = decimal.NewFromString(filledQty); err != nil {
		return o, fmt.Errorf("parse filled qty: %w", err)
	}
	if o.FilledAvgPrice, err = decimal.NewFromString(avgPrice); err != nil {
		return o, fmt.Errorf("parse filled avg price: %w", err)
	}
	if o.LimitPrice, err = parseDecimalPtr(limitPrice); err != nil {
		return o, fmt.Errorf("parse limit price: %w", err)
	}
	if o.StopPrice, err = parseDecimalPtr(stopPrice); err != nil {
		return o, fmt.Errorf("parse stop price: %w", err)
	}

	return o, nil
}

func decimalPtrString(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func parseDecimalPtr(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
