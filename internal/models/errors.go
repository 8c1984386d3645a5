package models

import "errors"

// Caller-visible error kinds. All of these are recoverable conditions the
// HTTP layer maps onto transport statuses; none are fatal.
var (
	ErrCardNotFound = errors.New("card not found")
	ErrUserNotFound = errors.New("user not found")

	// ErrConflict signals a duplicate card number or a delete that would
	// orphan ledger entries.
	ErrConflict = errors.New("conflict")

	// ErrInvalidAmount rejects amounts that are not positive or carry more
	// than two decimal places; sub-cent values would be rounded by the
	// store and mint or burn money.
	ErrInvalidAmount = errors.New("amount must be positive with at most two decimal places")

	ErrInvalidCardNumber = errors.New("invalid card number")
	ErrSameCardTransfer  = errors.New("cannot transfer a card to itself")
	ErrCardNotUsable     = errors.New("card is blocked or expired")
	ErrInsufficientFunds = errors.New("insufficient funds")

	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNoOp              = errors.New("card already has the requested status")

	// ErrStoreUnavailable wraps transient store failures (connection loss,
	// lock timeout). Callers may retry; preconditions are re-checked on
	// every attempt.
	ErrStoreUnavailable = errors.New("store unavailable")
)
