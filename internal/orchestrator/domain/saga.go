package domain

import "fmt"

type State string

const (
	StateValidating   State = "validating"
	StateRecording    State = "recording"
	StateDecrementing State = "decrementing"
	StateNotifying    State = "notifying"
	StateDone         State = "done"
	StateAborted      State = "aborted"
)

// Only validation and the header write may abort a submission. Once the
// header exists the order is placed and every later step runs forward. A
// replayed order code goes straight to done.
var transitions = map[State][]State{
	StateValidating:   {StateRecording, StateDone, StateAborted},
	StateRecording:    {StateDecrementing, StateDone, StateAborted},
	StateDecrementing: {StateNotifying},
	StateNotifying:    {StateDone},
}

func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s State) Terminal() bool { return s == StateDone || s == StateAborted }

// Saga tracks one submission through the pipeline.
type Saga struct {
	OrderCode string
	State     State
	Trace     []State
}

func NewSaga(orderCode string) *Saga {
	return &Saga{OrderCode: orderCode, State: StateValidating, Trace: []State{StateValidating}}
}

func (s *Saga) Advance(to State) error {
	if !CanTransition(s.State, to) {
		return fmt.Errorf("order %s: illegal transition %s -> %s", s.OrderCode, s.State, to)
	}
	s.State = to
	s.Trace = append(s.Trace, to)
	return nil
}
