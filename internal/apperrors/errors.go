package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller is not allowed to perform the operation.
var ErrForbidden = errors.New("operation forbidden")

// ErrConflict indicates the operation conflicts with the current state of the
// resource (e.g. a concurrent writer got there first). Callers may retry.
var ErrConflict = errors.New("conflict with current resource state")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError wraps an underlying error with an HTTP-ish status code and message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// UnbalancedEntryError is returned when a journal entry's debit and credit
// totals do not agree within the accepted tolerance.
type UnbalancedEntryError struct {
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("journal entry is unbalanced: debit total %s, credit total %s",
		e.DebitTotal.String(), e.CreditTotal.String())
}

// ImmutableEntryError is returned when a caller attempts to update or delete a
// journal entry that has already been posted.
type ImmutableEntryError struct {
	JournalID string
}

func (e *ImmutableEntryError) Error() string {
	return fmt.Sprintf("journal entry %s is posted and can no longer be modified", e.JournalID)
}

// AlreadyPostedError is returned when posting an entry that is already posted.
type AlreadyPostedError struct {
	JournalID string
}

func (e *AlreadyPostedError) Error() string {
	return fmt.Sprintf("journal entry %s has already been posted", e.JournalID)
}

// BudgetOverrunError is returned when an allocation or transfer would drive a
// budget's available amount negative.
type BudgetOverrunError struct {
	BudgetID  string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *BudgetOverrunError) Error() string {
	return fmt.Sprintf("budget %s has %s available, requested %s",
		e.BudgetID, e.Available.String(), e.Requested.String())
}

// ReferentialIntegrityError is returned when deleting a resource that is still
// referenced by posted journal lines.
type ReferentialIntegrityError struct {
	AccountID string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("account %s is referenced by posted journal lines and cannot be deleted", e.AccountID)
}

// ReportIntegrityWarning flags a report that failed its internal balance
// self-check. It is surfaced alongside the report payload, never used to mask
// the mismatch.
type ReportIntegrityWarning struct {
	Report     string
	Difference decimal.Decimal
}

func (e *ReportIntegrityWarning) Error() string {
	return fmt.Sprintf("%s report failed its balance check by %s", e.Report, e.Difference.String())
}
