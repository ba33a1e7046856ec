// Package persist encodes and decodes the ledger as two delimited text
// streams: one row per account and one row per historical transaction.
// The codec only sees the ledger through the ordered traversal and the
// restore sink; it never touches index internals.
package persist

import (
	"encoding/csv"
	"errors"
	"io"
	"iter"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tinoosan/bankcore/internal/bank"
	"github.com/tinoosan/bankcore/internal/errs"
)

var (
	accountsHeader     = []string{"accountNumber", "holderName", "balance"}
	transactionsHeader = []string{"accountNumber", "type", "amount", "datetime"}
)

// Sink receives decoded rows. Account rows go through the same creation
// rules as live operations; transaction rows are appended as historical
// facts, bypassing business validation.
type Sink interface {
	CreateAccount(number int, holder string, balance decimal.Decimal) error
	AppendRecord(number int, rec bank.TransactionRecord) error
}

// Codec reads and writes the two-stream CSV encoding. Malformed input
// rows are skipped with a warning, never fatal.
type Codec struct {
	log *slog.Logger
}

// New constructs a codec that logs skipped rows through logger.
func New(logger *slog.Logger) *Codec {
	return &Codec{log: logger}
}

// Encode writes every account (ascending number order) to accW and each
// account's history (append order) to txW. Output is deterministic for
// a given ledger state regardless of insertion order.
func (c *Codec) Encode(accounts iter.Seq[*bank.Account], accW, txW io.Writer) error {
	aw := csv.NewWriter(accW)
	tw := csv.NewWriter(txW)
	if err := aw.Write(accountsHeader); err != nil {
		return err
	}
	if err := tw.Write(transactionsHeader); err != nil {
		return err
	}
	for acc := range accounts {
		row := []string{
			strconv.Itoa(acc.Number),
			acc.Holder,
			acc.Balance.String(),
		}
		if err := aw.Write(row); err != nil {
			return err
		}
		for rec := range acc.History.All() {
			txRow := []string{
				strconv.Itoa(acc.Number),
				string(rec.Kind),
				rec.Amount.String(),
				rec.Timestamp,
			}
			if err := tw.Write(txRow); err != nil {
				return err
			}
		}
	}
	aw.Flush()
	tw.Flush()
	if err := aw.Error(); err != nil {
		return err
	}
	return tw.Error()
}

// Decode parses accounts first, then transactions, feeding both into
// sink. It returns whether anything was loaded. Rows that fail to parse,
// reference unknown accounts or carry unknown kinds are skipped with a
// warning; only stream-level read failures abort.
func (c *Codec) Decode(accR, txR io.Reader, sink Sink) (bool, error) {
	accounts, err := c.decodeAccounts(accR, sink)
	if err != nil {
		return accounts > 0, err
	}
	records, err := c.decodeTransactions(txR, sink)
	return accounts > 0 || records > 0, err
}

// decodeAccounts reads `accountNumber,holderName,balance` rows and
// returns the number of accounts created.
func (c *Codec) decodeAccounts(r io.Reader, sink Sink) (int, error) {
	if r == nil {
		return 0, nil
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	loaded := 0
	for rowNum := 0; ; rowNum++ {
		row, err := cr.Read()
		if err == io.EOF {
			return loaded, nil
		}
		if err != nil {
			// Recover per-row parse errors; abort only on real I/O failure.
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				c.log.Warn("invalid line in accounts stream", "row", rowNum, "err", err)
				continue
			}
			return loaded, err
		}
		if len(row) < 3 {
			c.warnRow(rowNum, "accounts", row, "too few fields")
			continue
		}
		number, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			// First row is expected to be the header.
			if rowNum != 0 {
				c.warnRow(rowNum, "accounts", row, "bad account number")
			}
			continue
		}
		balance, err := decimal.NewFromString(strings.TrimSpace(row[2]))
		if err != nil {
			c.warnRow(rowNum, "accounts", row, "bad balance")
			continue
		}
		if err := sink.CreateAccount(number, row[1], balance); err != nil {
			c.warnRow(rowNum, "accounts", row, err.Error())
			continue
		}
		loaded++
	}
}

// decodeTransactions reads `accountNumber,type,amount,datetime` rows and
// returns the number of records appended. The datetime is free-form text
// carried through unchanged; trailing fields are treated as part of it.
func (c *Codec) decodeTransactions(r io.Reader, sink Sink) (int, error) {
	if r == nil {
		return 0, nil
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	loaded := 0
	for rowNum := 0; ; rowNum++ {
		row, err := cr.Read()
		if err == io.EOF {
			return loaded, nil
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				c.log.Warn("invalid line in transactions stream", "row", rowNum, "err", err)
				continue
			}
			return loaded, err
		}
		if len(row) < 4 {
			c.warnRow(rowNum, "transactions", row, "too few fields")
			continue
		}
		number, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			if rowNum != 0 {
				c.warnRow(rowNum, "transactions", row, "bad account number")
			}
			continue
		}
		kind, ok := bank.ParseKind(strings.TrimSpace(row[1]))
		if !ok {
			c.warnRow(rowNum, "transactions", row, "unknown transaction type")
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(row[2]))
		if err != nil {
			c.warnRow(rowNum, "transactions", row, "bad amount")
			continue
		}
		rec := bank.TransactionRecord{
			Kind:      kind,
			Amount:    amount,
			Timestamp: strings.Join(row[3:], ","),
		}
		if err := sink.AppendRecord(number, rec); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				c.warnRow(rowNum, "transactions", row, "unknown account")
				continue
			}
			return loaded, err
		}
		loaded++
	}
}

func (c *Codec) warnRow(rowNum int, stream string, row []string, reason string) {
	c.log.Warn("skipping row", "stream", stream, "row", rowNum, "line", strings.Join(row, ","), "reason", reason)
}
