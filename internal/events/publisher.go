// Package events defines the outbound event contract for applied
// ledger mutations and a no-op default for deployments without a broker.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tinoosan/bankcore/internal/bank"
)

// Publisher delivers domain events to an external system. Implementations
// must be safe for use from a single goroutine at a time; the service
// publishes outside its critical section.
type Publisher interface {
	Publish(topic string, event any) error
}

// TransactionApplied is emitted after a deposit, withdrawal or interest
// credit has mutated an account.
type TransactionApplied struct {
	EntryID       *uuid.UUID      `json:"entry_id,omitempty"` // set for queued entries
	AccountNumber int             `json:"account_number"`
	Kind          bank.TxKind     `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
	At            time.Time       `json:"at"`
}

// AccountCreated is emitted after a new account is stored.
type AccountCreated struct {
	AccountNumber int             `json:"account_number"`
	Holder        string          `json:"holder"`
	Balance       decimal.Decimal `json:"balance"`
	At            time.Time       `json:"at"`
}

// Noop discards all events.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(string, any) error { return nil }
