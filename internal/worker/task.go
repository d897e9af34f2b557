// Package worker runs the bulk CSV tasks off the interactive path. At most one
// task is active at a time and each task talks to the database through its own
// connection.
package worker

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Kind names a bulk task.
type Kind string

const (
	KindExportStock   Kind = "export_stock"
	KindExportRecords Kind = "export_records"
	KindImportStock   Kind = "import_stock"
)

// State follows idle -> running -> succeeded | failed. There is no cancel.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Progress counts processed rows. Total is 0 when unknown up front.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Result is the single terminal report of a task.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Rows    int    `json:"rows"`
	Skipped int    `json:"skipped,omitempty"`
	Failed  int    `json:"failed,omitempty"`
}

func failure(err error) Result {
	return Result{Success: false, Message: err.Error()}
}

// ProgressFunc receives progress updates from a running task.
type ProgressFunc func(Progress)

// Task is one unit of bulk work. Run gets a connection owned by the runner and
// must report every outcome through the returned Result.
type Task interface {
	Kind() Kind
	Path() string
	Run(ctx context.Context, db *gorm.DB, report ProgressFunc) Result
}

// NewTask builds the task for kind operating on the file at path.
func NewTask(kind Kind, path string) (Task, error) {
	if path == "" {
		return nil, fmt.Errorf("%s: file path is required", kind)
	}
	switch kind {
	case KindExportStock:
		return NewExportStock(path), nil
	case KindExportRecords:
		return NewExportRecords(path), nil
	case KindImportStock:
		return NewImportStock(path), nil
	}
	return nil, fmt.Errorf("unknown task kind %q", kind)
}
