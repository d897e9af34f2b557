package apperror

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"insufficient stock", &InsufficientStockError{ProductID: 1, Current: 3, Requested: 5}, "insufficient stock: current 3, requested 5"},
		{"not found by id", &ProductNotFoundError{ID: 42}, "product 42 not found"},
		{"not found by code", &ProductNotFoundError{Code: "A1"}, `product "A1" not found`},
		{"validation", &ValidationError{Field: "count", Message: "must be greater than 0"}, "count: must be greater than 0"},
		{"query with cause", &QueryError{Op: "update quantity", Err: errors.New("disk I/O error")}, "update quantity failed: disk I/O error"},
		{"file", &FileIOError{Op: "create", Path: "/x.csv", Err: fs.ErrPermission}, "cannot create file /x.csv: permission denied"},
		{"transaction", &TransactionError{Op: "commit"}, "transaction commit failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestUnwrapAndIsKnown(t *testing.T) {
	dup := &ValidationError{Field: "code", Message: "already exists", Err: ErrDuplicateCode}
	wrapped := fmt.Errorf("create product: %w", dup)

	assert.True(t, errors.Is(wrapped, ErrDuplicateCode))
	assert.True(t, IsKnown(wrapped))
	assert.False(t, IsKnown(errors.New("plain")))

	file := &FileIOError{Op: "open", Path: "in.csv", Err: fs.ErrNotExist}
	assert.True(t, errors.Is(file, fs.ErrNotExist))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "product 7 not found", Message(&ProductNotFoundError{ID: 7}))
	assert.Equal(t, "internal error", Message(errors.New("sqlite3: disk I/O error")))
}
