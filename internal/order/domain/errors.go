package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateOrder = errors.New("order code already recorded")
	ErrOrderNotFound  = errors.New("order not found")
)

type InvalidSubmissionError struct {
	Field  string
	Reason string
}

func (e *InvalidSubmissionError) Error() string {
	return fmt.Sprintf("invalid submission: %s %s", e.Field, e.Reason)
}

// PersistenceError means the order header was not written. Nothing was
// committed, so the caller may resubmit under a new order code.
type PersistenceError struct {
	OrderCode string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("order %s not recorded: %v", e.OrderCode, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// DegradedWriteError reports a write that failed after the order header was
// committed. The order stands; operators reconcile from the logs.
type DegradedWriteError struct {
	OrderCode string
	What      string
	Err       error
}

func (e *DegradedWriteError) Error() string {
	return fmt.Sprintf("order %s: %s not written: %v", e.OrderCode, e.What, e.Err)
}

func (e *DegradedWriteError) Unwrap() error { return e.Err }
