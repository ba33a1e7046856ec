package v1

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tinoosan/bankcore/internal/bank"
	"github.com/tinoosan/bankcore/internal/service/ledger"
)

// Ledger abstracts the service operations the HTTP surface exposes.
// It is satisfied by *ledger.Service.
type Ledger interface {
	CreateAccount(number int, holder string, initial decimal.Decimal) (ledger.AccountSummary, error)
	Deposit(number int, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(number int, amount decimal.Decimal) (decimal.Decimal, error)
	EnqueuePending(number int, kind bank.TxKind, amount decimal.Decimal, note string) (bank.PendingEntry, error)
	PendingSize() int
	ProcessPendingQueue() []ledger.DrainOutcome
	ApplyInterestAll(rate decimal.Decimal, monthly bool) (int, error)
	Statistics() ledger.Stats
	Accounts() []ledger.AccountSummary
	Account(number int) (ledger.AccountSummary, error)
	History(number int) ([]bank.TransactionRecord, error)
	SaveToFiles(accountsPath, transactionsPath string) error
	LoadFromFiles(accountsPath, transactionsPath string) (bool, error)
	SaveSnapshot(ctx context.Context, store ledger.SnapshotStore) error
	LoadSnapshot(ctx context.Context, store ledger.SnapshotStore) (bool, error)
}

// ReadyChecker is optionally implemented by snapshot stores to indicate
// readiness.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}
