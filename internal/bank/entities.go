package bank

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxKind enumerates the kinds of transactions recorded against an account.
type TxKind string

const (
	// KindDeposit increases the balance of an account.
	KindDeposit TxKind = "Deposit"
	// KindWithdraw decreases the balance of an account.
	KindWithdraw TxKind = "Withdraw"
	// KindInterest records interest credited to an account.
	KindInterest TxKind = "Interest"
)

// ParseKind maps persisted text to a TxKind. The legacy spelling
// "Withdrawal" is accepted for KindWithdraw; files written by older
// versions of the system used it.
func ParseKind(s string) (TxKind, bool) {
	switch s {
	case "Deposit":
		return KindDeposit, true
	case "Withdraw", "Withdrawal":
		return KindWithdraw, true
	case "Interest":
		return KindInterest, true
	}
	return "", false
}

// Queueable reports whether the kind may be placed on the pending queue.
// Interest is always applied directly, never deferred.
func (k TxKind) Queueable() bool {
	return k == KindDeposit || k == KindWithdraw
}

// TransactionRecord is one immutable line in an account's history.
// Ordering is append order; Timestamp is an opaque key carried through
// persistence unchanged.
type TransactionRecord struct {
	Kind      TxKind
	Amount    decimal.Decimal
	Timestamp string
	Note      string
}

// Account represents one bank account keyed by its number.
// Number is unique and immutable once created; Balance never goes
// negative as the result of an accepted operation.
type Account struct {
	Number  int
	Holder  string
	Balance decimal.Decimal
	History *History
}

// PendingEntry is a deferred deposit or withdrawal awaiting batch
// application. It references its target account by number only; the
// account may not exist yet, or may be gone, when the entry is drained.
type PendingEntry struct {
	ID            uuid.UUID
	AccountNumber int
	Kind          TxKind
	Amount        decimal.Decimal
	Note          string
}
