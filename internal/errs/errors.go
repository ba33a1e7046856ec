package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound  = errors.New("not_found")
	ErrDuplicate = errors.New("duplicate")
	// ErrInvalid covers validation failures: non-positive amounts,
	// non-positive account numbers and negative opening balances.
	ErrInvalid = errors.New("invalid")
	// ErrInsufficientFunds indicates a withdrawal exceeding the balance.
	ErrInsufficientFunds = errors.New("insufficient_funds")
	// ErrUnsupportedKind indicates a transaction kind that cannot be queued.
	ErrUnsupportedKind = errors.New("unsupported_kind")
)
