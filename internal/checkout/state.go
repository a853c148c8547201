package checkout

import (
	"fmt"

	"go.uber.org/zap"
)

type State string

const (
	StateDraft      State = "Draft"
	StateValidating State = "Validating"
	StateCommitted  State = "Committed"
	StateAborted    State = "Aborted"
)

type transition struct {
	From State
	To   State
}

var validTransitions = []transition{
	{From: StateDraft, To: StateValidating},
	{From: StateDraft, To: StateAborted},
	{From: StateValidating, To: StateCommitted},
	{From: StateValidating, To: StateAborted},
}

var transitionMap = func() map[transition]bool {
	m := make(map[transition]bool, len(validTransitions))
	for _, t := range validTransitions {
		m[t] = true
	}
	return m
}()

// CanTransition reports whether a checkout may move from one state to
// another. Committed and Aborted are terminal.
func CanTransition(from, to State) bool {
	return transitionMap[transition{From: from, To: to}]
}

type machine struct {
	state State
	log   *zap.Logger
}

func newMachine(log *zap.Logger) *machine {
	return &machine{state: StateDraft, log: log}
}

func (m *machine) to(next State) error {
	if !CanTransition(m.state, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, next)
	}
	m.log.Debug("checkout state changed",
		zap.String("from", string(m.state)),
		zap.String("to", string(next)),
	)
	m.state = next
	return nil
}

// abort moves to Aborted and hands back cause for the caller to return.
func (m *machine) abort(cause error) error {
	if err := m.to(StateAborted); err != nil {
		m.log.Error("abort from terminal state", zap.Error(err))
	}
	return cause
}
