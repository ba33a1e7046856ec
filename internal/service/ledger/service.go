// Package ledger implements the account ledger service: account
// lifecycle, direct deposits and withdrawals, deferred-transaction
// draining, interest application, aggregate statistics and snapshot
// save/load. It is the sole mutator of the account index and the
// pending queue; every operation validates before any state change.
package ledger

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/bankcore/internal/bank"
	"github.com/tinoosan/bankcore/internal/errs"
	"github.com/tinoosan/bankcore/internal/events"
	"github.com/tinoosan/bankcore/internal/index"
	"github.com/tinoosan/bankcore/internal/pending"
	"github.com/tinoosan/bankcore/internal/persist"
)

// timestampLayout is the wall-clock format recorded on new transactions.
const timestampLayout = "2006-01-02 15:04:05"

// Event topics passed to the publisher.
const (
	topicTransactionApplied = "transaction_applied"
	topicAccountCreated     = "account_created"
)

// Service owns the account index and the pending queue. A single mutex
// serializes all operations (single-writer model); callers such as the
// HTTP layer go through it implicitly.
type Service struct {
	mu       sync.Mutex
	accounts *index.Index
	queue    *pending.Queue
	codec    *persist.Codec
	clock    func() time.Time
	log      *slog.Logger
	pub      events.Publisher
}

// New constructs a service. A nil publisher defaults to events.Noop and
// a nil clock to time.Now; tests inject a fixed clock to make recorded
// timestamps deterministic.
func New(logger *slog.Logger, pub events.Publisher, clock func() time.Time) *Service {
	if pub == nil {
		pub = events.Noop{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		accounts: index.New(),
		queue:    pending.New(),
		codec:    persist.New(logger),
		clock:    clock,
		log:      logger,
		pub:      pub,
	}
}

// AccountSummary is the read-side view of an account.
type AccountSummary struct {
	Number  int
	Holder  string
	Balance decimal.Decimal
}

// Stats aggregates the whole ledger in one ascending traversal.
// Richest is nil for an empty ledger; balance ties are broken by the
// first account encountered in ascending number order.
type Stats struct {
	Count   int
	Total   decimal.Decimal
	Average decimal.Decimal
	Richest *AccountSummary
}

// DrainStatus classifies the fate of one drained pending entry.
type DrainStatus string

const (
	DrainApplied             DrainStatus = "applied"
	DrainSkippedMissing      DrainStatus = "skipped_missing_account"
	DrainSkippedInsufficient DrainStatus = "skipped_insufficient_funds"
)

// DrainOutcome reports what happened to one pending entry. Balance is
// the account balance after application and is only meaningful when
// Status is DrainApplied.
type DrainOutcome struct {
	Entry   bank.PendingEntry
	Status  DrainStatus
	Balance decimal.Decimal
}

// pubEvent defers publishing until the service mutex is released.
type pubEvent struct {
	topic string
	event any
}

func (s *Service) publishAll(evs []pubEvent) {
	for _, e := range evs {
		if err := s.pub.Publish(e.topic, e.event); err != nil {
			s.log.Error("event publish failed", "topic", e.topic, "err", err)
		}
	}
}

// CreateAccount stores a new account. The number must be positive and
// unused; the opening balance must not be negative.
func (s *Service) CreateAccount(number int, holder string, initial decimal.Decimal) (AccountSummary, error) {
	s.mu.Lock()
	acc, err := s.createLocked(number, holder, initial)
	if err != nil {
		s.mu.Unlock()
		return AccountSummary{}, err
	}
	summary := summarize(acc)
	at := s.clock()
	s.mu.Unlock()

	s.log.Info("account created", "number", summary.Number, "holder", summary.Holder)
	s.publishAll([]pubEvent{{topicAccountCreated, events.AccountCreated{
		AccountNumber: summary.Number,
		Holder:        summary.Holder,
		Balance:       summary.Balance,
		At:            at,
	}}})
	return summary, nil
}

// createLocked performs the validated insert. Caller holds s.mu.
func (s *Service) createLocked(number int, holder string, initial decimal.Decimal) (*bank.Account, error) {
	if number <= 0 {
		return nil, fmt.Errorf("account number must be positive: %w", errs.ErrInvalid)
	}
	if initial.IsNegative() {
		return nil, fmt.Errorf("initial balance cannot be negative: %w", errs.ErrInvalid)
	}
	acc, inserted := s.accounts.Insert(number, holder, initial)
	if !inserted {
		return nil, fmt.Errorf("account #%d already exists: %w", number, errs.ErrDuplicate)
	}
	return acc, nil
}

// Deposit adds amount to the account balance and records a Deposit.
func (s *Service) Deposit(number int, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	if amount.Sign() <= 0 {
		s.mu.Unlock()
		return decimal.Zero, fmt.Errorf("deposit amount must be positive: %w", errs.ErrInvalid)
	}
	acc, ok := s.accounts.Lookup(number)
	if !ok {
		s.mu.Unlock()
		return decimal.Zero, fmt.Errorf("account #%d: %w", number, errs.ErrNotFound)
	}
	at := s.clock()
	acc.Balance = acc.Balance.Add(amount)
	acc.History.Append(bank.KindDeposit, amount, at.Format(timestampLayout), "Direct deposit")
	balance := acc.Balance
	s.mu.Unlock()

	s.log.Info("deposit applied", "number", number, "amount", amount, "balance", balance)
	s.publishAll([]pubEvent{{topicTransactionApplied, events.TransactionApplied{
		AccountNumber: number,
		Kind:          bank.KindDeposit,
		Amount:        amount,
		Balance:       balance,
		At:            at,
	}}})
	return balance, nil
}

// Withdraw subtracts amount from the account balance and records a
// Withdraw. The balance never drops below zero: a withdrawal larger
// than the balance is rejected with no state change.
func (s *Service) Withdraw(number int, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	if amount.Sign() <= 0 {
		s.mu.Unlock()
		return decimal.Zero, fmt.Errorf("withdrawal amount must be positive: %w", errs.ErrInvalid)
	}
	acc, ok := s.accounts.Lookup(number)
	if !ok {
		s.mu.Unlock()
		return decimal.Zero, fmt.Errorf("account #%d: %w", number, errs.ErrNotFound)
	}
	if acc.Balance.LessThan(amount) {
		s.mu.Unlock()
		return decimal.Zero, fmt.Errorf("account #%d: %w", number, errs.ErrInsufficientFunds)
	}
	at := s.clock()
	acc.Balance = acc.Balance.Sub(amount)
	acc.History.Append(bank.KindWithdraw, amount, at.Format(timestampLayout), "Direct withdraw")
	balance := acc.Balance
	s.mu.Unlock()

	s.log.Info("withdrawal applied", "number", number, "amount", amount, "balance", balance)
	s.publishAll([]pubEvent{{topicTransactionApplied, events.TransactionApplied{
		AccountNumber: number,
		Kind:          bank.KindWithdraw,
		Amount:        amount,
		Balance:       balance,
		At:            at,
	}}})
	return balance, nil
}

// EnqueuePending defers a deposit or withdrawal for batch application.
// The amount must be positive and the kind queueable. Account existence
// is not checked here; it is resolved when the queue is drained, so
// entries can be queued for accounts created later.
func (s *Service) EnqueuePending(number int, kind bank.TxKind, amount decimal.Decimal, note string) (bank.PendingEntry, error) {
	if amount.Sign() <= 0 {
		return bank.PendingEntry{}, fmt.Errorf("amount must be positive: %w", errs.ErrInvalid)
	}
	if !kind.Queueable() {
		return bank.PendingEntry{}, fmt.Errorf("kind %q cannot be queued: %w", kind, errs.ErrUnsupportedKind)
	}
	if note == "" {
		if kind == bank.KindDeposit {
			note = "Queued deposit"
		} else {
			note = "Queued withdraw"
		}
	}
	entry := bank.PendingEntry{
		ID:            uuid.New(),
		AccountNumber: number,
		Kind:          kind,
		Amount:        amount,
		Note:          note,
	}
	s.mu.Lock()
	s.queue.Enqueue(entry)
	size := s.queue.Len()
	s.mu.Unlock()

	s.log.Info("pending entry queued", "entry_id", entry.ID, "number", number, "kind", kind, "amount", amount, "queue_size", size)
	return entry, nil
}

// PendingSize returns the current queue depth.
func (s *Service) PendingSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// ProcessPendingQueue drains the queue in FIFO order, applying each
// entry under the same rules as direct operations. Entries for missing
// accounts or exceeding the balance are skipped, never requeued; the
// queue is empty when this returns.
func (s *Service) ProcessPendingQueue() []DrainOutcome {
	var (
		outcomes []DrainOutcome
		evs      []pubEvent
	)
	s.mu.Lock()
	s.queue.DrainAll(func(e bank.PendingEntry) {
		at := s.clock()
		acc, ok := s.accounts.Lookup(e.AccountNumber)
		if !ok {
			outcomes = append(outcomes, DrainOutcome{Entry: e, Status: DrainSkippedMissing})
			return
		}
		if e.Kind == bank.KindWithdraw && acc.Balance.LessThan(e.Amount) {
			outcomes = append(outcomes, DrainOutcome{Entry: e, Status: DrainSkippedInsufficient})
			return
		}
		switch e.Kind {
		case bank.KindDeposit:
			acc.Balance = acc.Balance.Add(e.Amount)
		case bank.KindWithdraw:
			acc.Balance = acc.Balance.Sub(e.Amount)
		}
		acc.History.Append(e.Kind, e.Amount, at.Format(timestampLayout), "Processed queue: "+e.Note)
		outcomes = append(outcomes, DrainOutcome{Entry: e, Status: DrainApplied, Balance: acc.Balance})
		entryID := e.ID
		evs = append(evs, pubEvent{topicTransactionApplied, events.TransactionApplied{
			EntryID:       &entryID,
			AccountNumber: e.AccountNumber,
			Kind:          e.Kind,
			Amount:        e.Amount,
			Balance:       acc.Balance,
			At:            at,
		}})
	})
	s.mu.Unlock()

	for _, o := range outcomes {
		s.log.Info("pending entry drained", "entry_id", o.Entry.ID, "number", o.Entry.AccountNumber, "kind", o.Entry.Kind, "status", string(o.Status))
	}
	s.publishAll(evs)
	return outcomes
}

// ApplyInterestAll credits interest to every account in ascending
// order. The rate must be positive; when monthly is set the effective
// rate is rate/12. Accounts whose interest comes to zero get no record,
// so a zero-balance account is untouched. Returns the number of
// accounts credited.
func (s *Service) ApplyInterestAll(rate decimal.Decimal, monthly bool) (int, error) {
	if rate.Sign() <= 0 {
		return 0, fmt.Errorf("interest rate must be positive: %w", errs.ErrInvalid)
	}
	effective := rate
	note := "Yearly interest"
	if monthly {
		effective = rate.Div(decimal.NewFromInt(12))
		note = "Monthly interest"
	}

	var evs []pubEvent
	applied := 0
	s.mu.Lock()
	at := s.clock()
	ts := at.Format(timestampLayout)
	for acc := range s.accounts.Ascend() {
		interest := acc.Balance.Mul(effective)
		if interest.IsZero() {
			continue
		}
		acc.Balance = acc.Balance.Add(interest)
		acc.History.Append(bank.KindInterest, interest, ts, note)
		applied++
		evs = append(evs, pubEvent{topicTransactionApplied, events.TransactionApplied{
			AccountNumber: acc.Number,
			Kind:          bank.KindInterest,
			Amount:        interest,
			Balance:       acc.Balance,
			At:            at,
		}})
	}
	s.mu.Unlock()

	s.log.Info("interest applied", "rate", rate, "monthly", monthly, "accounts", applied)
	s.publishAll(evs)
	return applied, nil
}

// Statistics computes aggregate figures in a single ascending pass.
func (s *Service) Statistics() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := Stats{Total: decimal.Zero, Average: decimal.Zero}
	for acc := range s.accounts.Ascend() {
		stats.Count++
		stats.Total = stats.Total.Add(acc.Balance)
		if stats.Richest == nil || acc.Balance.GreaterThan(stats.Richest.Balance) {
			summary := summarize(acc)
			stats.Richest = &summary
		}
	}
	if stats.Count > 0 {
		stats.Average = stats.Total.Div(decimal.NewFromInt(int64(stats.Count)))
	}
	return stats
}

// Accounts returns a snapshot of all accounts in ascending number order.
func (s *Service) Accounts() []AccountSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AccountSummary, 0, s.accounts.Len())
	for acc := range s.accounts.Ascend() {
		out = append(out, summarize(acc))
	}
	return out
}

// Account returns the summary for one account.
func (s *Service) Account(number int) (AccountSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts.Lookup(number)
	if !ok {
		return AccountSummary{}, fmt.Errorf("account #%d: %w", number, errs.ErrNotFound)
	}
	return summarize(acc), nil
}

// History returns a copy of the account's transaction log in append order.
func (s *Service) History(number int) ([]bank.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts.Lookup(number)
	if !ok {
		return nil, fmt.Errorf("account #%d: %w", number, errs.ErrNotFound)
	}
	return acc.History.Records(), nil
}

// Teardown empties the index and discards any undrained queue entries.
// Safe to call once at shutdown; the service stays usable afterwards.
func (s *Service) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := s.queue.Len()
	s.queue.DrainAll(func(bank.PendingEntry) {})
	s.accounts.Teardown()
	if dropped > 0 {
		s.log.Warn("teardown dropped pending entries", "count", dropped)
	}
}

func summarize(acc *bank.Account) AccountSummary {
	return AccountSummary{Number: acc.Number, Holder: acc.Holder, Balance: acc.Balance}
}
