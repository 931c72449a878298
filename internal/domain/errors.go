package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// NotFound
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	// InvalidTransfer and its causes
	ErrInvalidTransfer  = errors.New("invalid transfer")
	ErrSameAccount      = fmt.Errorf("%w: cannot transfer to same account", ErrInvalidTransfer)
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be positive", ErrInvalidTransfer)
	ErrAmountPrecision  = fmt.Errorf("%w: amount has more than %d fraction digits", ErrInvalidTransfer, MinorUnitDigits)
	ErrAmountTooLarge   = fmt.Errorf("%w: amount exceeds maximum allowed", ErrInvalidTransfer)
	ErrInvalidChannel   = fmt.Errorf("%w: unknown channel", ErrInvalidTransfer)
	ErrInvalidReference = fmt.Errorf("%w: malformed account reference", ErrInvalidTransfer)

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrLimitExceeded     = errors.New("daily limit exceeded")

	// ErrDuplicateTrackingCode is an internal retry signal of the ledger.
	ErrDuplicateTrackingCode = errors.New("duplicate tracking code")
	ErrTransactionAborted    = errors.New("transaction aborted, retry later")

	ErrAccountExists = errors.New("account with this card number or IBAN already exists")

	ErrInvalidCursor = errors.New("invalid history cursor")
)

// StorageError hides storage engine failures behind a generic message.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage error"
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Detail is the full message for logs, never for callers.
func (e *StorageError) Detail() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// IsKnownError reports whether err is already one of the engine error kinds.
func IsKnownError(err error) bool {
	var limitErr *LimitExceededError
	switch {
	case errors.As(err, &limitErr),
		errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrTransactionNotFound),
		errors.Is(err, ErrInvalidTransfer),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrDuplicateTrackingCode),
		errors.Is(err, ErrTransactionAborted),
		errors.Is(err, ErrAccountExists),
		errors.Is(err, ErrInvalidCursor),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrExpiredToken),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrUserExists),
		errors.Is(err, ErrNotAccountOwner):
		return true
	}
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}

// Error kinds reported by Kind.
const (
	KindNotFound          = "not_found"
	KindInvalidTransfer   = "invalid_transfer"
	KindInvalidRequest    = "invalid_request"
	KindInsufficientFunds = "insufficient_funds"
	KindLimitExceeded     = "limit_exceeded"
	KindAborted           = "aborted"
	KindConflict          = "conflict"
	KindAuth              = "auth"
	KindCanceled          = "canceled"
	KindStorage           = "storage"
)

// Kind classifies err into one of the engine error kinds.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrTransactionNotFound), errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidTransfer):
		return KindInvalidTransfer
	case errors.Is(err, ErrInvalidCursor):
		return KindInvalidRequest
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrLimitExceeded):
		return KindLimitExceeded
	case errors.Is(err, ErrTransactionAborted), errors.Is(err, ErrDuplicateTrackingCode):
		return KindAborted
	case errors.Is(err, ErrAccountExists), errors.Is(err, ErrUserExists):
		return KindConflict
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrNotAccountOwner),
		errors.Is(err, ErrInvalidToken), errors.Is(err, ErrExpiredToken):
		return KindAuth
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}
	return KindStorage
}
