package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrConflict is matched by every ConflictError.
	ErrConflict = errors.New("conflict")
)

// ValidationError lists the request fields that are missing or invalid.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

// NotFoundError names the referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientFundsError reports a debit that the source balance cannot cover.
type InsufficientFundsError struct {
	AccountID int64
	Balance   decimal.Decimal
	Required  decimal.Decimal
}

// Shortfall is how much the balance is missing.
func (e *InsufficientFundsError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Balance)
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in account %d: balance %s, required %s",
		e.AccountID, e.Balance.StringFixed(2), e.Required.StringFixed(2))
}

// ConflictError is a duplicate or still-referenced entity. Count is the
// number of blocking references, when that applies.
type ConflictError struct {
	Message string
	Count   int
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
