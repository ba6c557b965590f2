package domain

import "fmt"

type WarningKind string

const (
	WarnDegradedWrite      WarningKind = "degraded_write"
	WarnOversold           WarningKind = "oversold"
	WarnNotificationFailed WarningKind = "notification_failed"
)

// Warning is a failure that did not stop the order from being placed.
type Warning struct {
	Kind      WarningKind
	Step      State
	ProductID string
	Err       error
}

func (w Warning) String() string {
	if w.ProductID != "" {
		return fmt.Sprintf("%s at %s (%s): %v", w.Kind, w.Step, w.ProductID, w.Err)
	}
	return fmt.Sprintf("%s at %s: %v", w.Kind, w.Step, w.Err)
}

type OutcomeKind string

const (
	OutcomeSuccess  OutcomeKind = "success"
	OutcomeRejected OutcomeKind = "rejected"
	OutcomeError    OutcomeKind = "error"
)

// Outcome is the single result of a submission. Err is set for rejected and
// error outcomes; Warnings only ever accompany success.
type Outcome struct {
	Kind      OutcomeKind
	OrderCode string
	Err       error
	Warnings  []Warning
	Trace     []State
	// Replayed marks a success answered from an earlier submission with the
	// same order code.
	Replayed bool
}

func (o Outcome) OK() bool { return o.Kind == OutcomeSuccess }

func (o Outcome) HasWarning(kind WarningKind) bool {
	for _, w := range o.Warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}
