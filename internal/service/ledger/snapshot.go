package ledger

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/shopspring/decimal"

	"github.com/tinoosan/bankcore/internal/bank"
	"github.com/tinoosan/bankcore/internal/errs"
	"github.com/tinoosan/bankcore/internal/persist"
)

// SnapshotStore is an alternative durable backend for the whole ledger
// (e.g. the postgres store). It sees accounts only through the ordered
// traversal and restores them only through the persist sink.
type SnapshotStore interface {
	Save(ctx context.Context, accounts iter.Seq[*bank.Account]) error
	Load(ctx context.Context, sink persist.Sink) (bool, error)
}

// restoreSink feeds decoded rows back into the service. Account rows go
// through the same validation as live creation; transaction rows are
// historical facts and bypass business rules. The caller already holds
// the service mutex.
type restoreSink struct {
	s *Service
}

func (r restoreSink) CreateAccount(number int, holder string, balance decimal.Decimal) error {
	_, err := r.s.createLocked(number, holder, balance)
	return err
}

func (r restoreSink) AppendRecord(number int, rec bank.TransactionRecord) error {
	acc, ok := r.s.accounts.Lookup(number)
	if !ok {
		return fmt.Errorf("account #%d: %w", number, errs.ErrNotFound)
	}
	acc.History.Append(rec.Kind, rec.Amount, rec.Timestamp, rec.Note)
	return nil
}

// SaveToFiles encodes the ledger into the two CSV files. Both files are
// written to a temp sibling first and renamed into place, so a failed
// write never corrupts an existing snapshot.
func (s *Service) SaveToFiles(accountsPath, transactionsPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accTmp := accountsPath + ".tmp"
	txTmp := transactionsPath + ".tmp"
	accF, err := os.Create(accTmp)
	if err != nil {
		return fmt.Errorf("open accounts file: %w", err)
	}
	txF, err := os.Create(txTmp)
	if err != nil {
		accF.Close()
		os.Remove(accTmp)
		return fmt.Errorf("open transactions file: %w", err)
	}

	if err := s.codec.Encode(s.accounts.Ascend(), accF, txF); err != nil {
		accF.Close()
		txF.Close()
		os.Remove(accTmp)
		os.Remove(txTmp)
		return err
	}
	if err := accF.Close(); err != nil {
		txF.Close()
		os.Remove(accTmp)
		os.Remove(txTmp)
		return err
	}
	if err := txF.Close(); err != nil {
		os.Remove(accTmp)
		os.Remove(txTmp)
		return err
	}
	if err := os.Rename(accTmp, accountsPath); err != nil {
		os.Remove(accTmp)
		os.Remove(txTmp)
		return err
	}
	if err := os.Rename(txTmp, transactionsPath); err != nil {
		os.Remove(txTmp)
		return err
	}
	s.log.Info("ledger saved", "accounts_file", accountsPath, "transactions_file", transactionsPath)
	return nil
}

// LoadFromFiles decodes the two CSV files into the ledger. A missing
// file is not an error: it is treated as an empty stream. Returns
// whether anything was loaded.
func (s *Service) LoadFromFiles(accountsPath, transactionsPath string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accR, err := openOrEmpty(accountsPath)
	if err != nil {
		return false, fmt.Errorf("open accounts file: %w", err)
	}
	if accR == nil {
		s.log.Info("no accounts file, starting empty", "path", accountsPath)
	} else {
		defer accR.Close()
	}

	txR, err := openOrEmpty(transactionsPath)
	if err != nil {
		return false, fmt.Errorf("open transactions file: %w", err)
	}
	if txR == nil {
		s.log.Info("no transactions file, starting with empty histories", "path", transactionsPath)
	} else {
		defer txR.Close()
	}

	loaded, err := s.codec.Decode(readerOrNil(accR), readerOrNil(txR), restoreSink{s})
	if err != nil {
		return loaded, err
	}
	if loaded {
		s.log.Info("ledger loaded", "accounts", s.accounts.Len())
	}
	return loaded, nil
}

// SaveSnapshot writes the ledger into an alternative snapshot store.
func (s *Service) SaveSnapshot(ctx context.Context, store SnapshotStore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Save(ctx, s.accounts.Ascend())
}

// LoadSnapshot restores the ledger from an alternative snapshot store.
func (s *Service) LoadSnapshot(ctx context.Context, store SnapshotStore) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Load(ctx, restoreSink{s})
}

func openOrEmpty(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}

func readerOrNil(f *os.File) io.Reader {
	if f == nil {
		return nil
	}
	return f
}
