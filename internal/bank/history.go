package bank

import (
	"iter"

	"github.com/shopspring/decimal"
)

// History is the append-only transaction log owned by a single account.
// It records what it is told; business rules are enforced by the service
// before anything reaches it. There is no delete: the log is a
// write-once audit trail.
type History struct {
	records []TransactionRecord
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds one record to the tail of the log.
func (h *History) Append(kind TxKind, amount decimal.Decimal, timestamp, note string) {
	h.records = append(h.records, TransactionRecord{
		Kind:      kind,
		Amount:    amount,
		Timestamp: timestamp,
		Note:      note,
	})
}

// All iterates records in append order. The sequence is finite and
// restartable; callers must not mutate the yielded records.
func (h *History) All() iter.Seq[TransactionRecord] {
	return func(yield func(TransactionRecord) bool) {
		for _, rec := range h.records {
			if !yield(rec) {
				return
			}
		}
	}
}

// Records returns a copy of the log in append order.
func (h *History) Records() []TransactionRecord {
	out := make([]TransactionRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Len returns the number of records.
func (h *History) Len() int { return len(h.records) }
