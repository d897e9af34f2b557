// Package apperror defines the error kinds surfaced by the ledger, the catalog
// and the bulk pipeline. Each carries a short user-facing text; the low-level
// cause stays reachable through Unwrap.
package apperror

import (
	"errors"
	"fmt"
)

// ErrDuplicateCode marks a product code that is already taken.
var ErrDuplicateCode = errors.New("product code already exists")

// ConnectionError means a database connection could not be opened.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return withCause("cannot connect to the database", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError wraps a failed read or write statement.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return withCause(e.Op+" failed", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// FileIOError wraps a failure to open, read or write a CSV file.
type FileIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileIOError) Error() string {
	return withCause(fmt.Sprintf("cannot %s file %s", e.Op, e.Path), e.Err)
}

func (e *FileIOError) Unwrap() error { return e.Err }

// ValidationError rejects caller input before anything is written.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// InsufficientStockError rejects an outbound movement larger than the
// quantity on hand.
type InsufficientStockError struct {
	ProductID uint
	Current   int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: current %d, requested %d", e.Current, e.Requested)
}

// ProductNotFoundError is returned when a product id or code does not exist.
type ProductNotFoundError struct {
	ID   uint
	Code string
}

func (e *ProductNotFoundError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("product %q not found", e.Code)
	}
	return fmt.Sprintf("product %d not found", e.ID)
}

// TransactionError covers begin, commit and rollback failures.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return withCause("transaction "+e.Op+" failed", e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// IsKnown reports whether err already carries one of the kinds above.
func IsKnown(err error) bool {
	var (
		conn  *ConnectionError
		query *QueryError
		file  *FileIOError
		valid *ValidationError
		stock *InsufficientStockError
		nf    *ProductNotFoundError
		tx    *TransactionError
	)
	return errors.As(err, &conn) || errors.As(err, &query) || errors.As(err, &file) ||
		errors.As(err, &valid) || errors.As(err, &stock) || errors.As(err, &nf) || errors.As(err, &tx)
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return msg + ": " + cause.Error()
}

// Message is the text shown to a user for err. Unclassified errors get a
// generic message so driver internals do not leak.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if IsKnown(err) {
		return err.Error()
	}
	return "internal error"
}
