// Package postgres provides a pgx-backed snapshot store for the ledger.
// It mirrors the CSV codec contract: whole-ledger save through the
// ordered traversal and restore through the persist sink. The schema
// lives under db/migrations.
package postgres

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/bankcore/internal/bank"
	"github.com/tinoosan/bankcore/internal/errs"
	"github.com/tinoosan/bankcore/internal/persist"
)

// Store holds a pgx connection pool. All methods are safe for
// concurrent use; the service serializes snapshot calls anyway.
type Store struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool, log: logger}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// Save replaces the stored snapshot with the given ledger state in one
// transaction: accounts ascending, each history in append order.
func (s *Store) Save(ctx context.Context, accounts iter.Seq[*bank.Account]) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `truncate transactions, accounts`); err != nil {
		return err
	}
	for acc := range accounts {
		if _, err := tx.Exec(ctx, `
			insert into accounts (number, holder_name, balance)
			values ($1, $2, $3::numeric)
		`, acc.Number, acc.Holder, acc.Balance.String()); err != nil {
			return err
		}
		for rec := range acc.History.All() {
			if _, err := tx.Exec(ctx, `
				insert into transactions (account_number, type, amount, datetime, note)
				values ($1, $2, $3::numeric, $4, $5)
			`, acc.Number, string(rec.Kind), rec.Amount.String(), rec.Timestamp, rec.Note); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

// Load feeds the stored snapshot into sink: accounts first, then
// transactions grouped per account in insert order. Rows the sink
// rejects (duplicate accounts, unknown kinds, missing accounts) are
// skipped with a warning, matching the CSV decode behaviour.
func (s *Store) Load(ctx context.Context, sink persist.Sink) (bool, error) {
	loaded := false

	rows, err := s.pool.Query(ctx, `
		select number, holder_name, balance::text
		from accounts
		order by number
	`)
	if err != nil {
		return false, err
	}
	for rows.Next() {
		var (
			number  int
			holder  string
			balText string
		)
		if err := rows.Scan(&number, &holder, &balText); err != nil {
			rows.Close()
			return loaded, err
		}
		balance, err := decimal.NewFromString(balText)
		if err != nil {
			s.log.Warn("skipping account row", "number", number, "reason", "bad balance", "err", err)
			continue
		}
		if err := sink.CreateAccount(number, holder, balance); err != nil {
			s.log.Warn("skipping account row", "number", number, "reason", err.Error())
			continue
		}
		loaded = true
	}
	rows.Close()
	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return loaded, err
	}

	rows, err = s.pool.Query(ctx, `
		select account_number, type, amount::text, datetime, note
		from transactions
		order by account_number, id
	`)
	if err != nil {
		return loaded, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			number             int
			kindText, amtText  string
			datetime, noteText string
		)
		if err := rows.Scan(&number, &kindText, &amtText, &datetime, &noteText); err != nil {
			return loaded, err
		}
		kind, ok := bank.ParseKind(kindText)
		if !ok {
			s.log.Warn("skipping transaction row", "number", number, "reason", "unknown type", "type", kindText)
			continue
		}
		amount, err := decimal.NewFromString(amtText)
		if err != nil {
			s.log.Warn("skipping transaction row", "number", number, "reason", "bad amount", "err", err)
			continue
		}
		rec := bank.TransactionRecord{Kind: kind, Amount: amount, Timestamp: datetime, Note: noteText}
		if err := sink.AppendRecord(number, rec); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				s.log.Warn("skipping transaction row", "number", number, "reason", "unknown account")
				continue
			}
			return loaded, err
		}
		loaded = true
	}
	return loaded, rows.Err()
}
