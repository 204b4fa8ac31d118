package domain

import (
	"github.com/qmuntal/stateless"
)

// lifecycle lists the forward edges of the payment graph. Every state also
// permits re-entry into itself.
var lifecycle = map[PaymentStatus][]PaymentStatus{
	StatusPending:           {StatusProcessing, StatusSucceeded, StatusFailed, StatusCanceled},
	StatusProcessing:        {StatusSucceeded, StatusFailed, StatusCanceled},
	StatusSucceeded:         {StatusRefunded, StatusPartiallyRefunded},
	StatusPartiallyRefunded: {StatusRefunded},
	StatusFailed:            nil,
	StatusCanceled:          nil,
	StatusRefunded:          nil,
}

// newLifecycleMachine configures a state machine positioned at current.
// Triggers are the target statuses themselves.
func newLifecycleMachine(current PaymentStatus) *stateless.StateMachine {
	sm := stateless.NewStateMachine(current)
	for state, targets := range lifecycle {
		cfg := sm.Configure(state).PermitReentry(state)
		for _, target := range targets {
			cfg.Permit(target, target)
		}
	}
	return sm
}

func fire(current, target PaymentStatus) (PaymentStatus, error) {
	if _, ok := lifecycle[target]; !ok {
		return current, NewInvalidStatusError(string(target))
	}
	if _, ok := lifecycle[current]; !ok {
		return current, NewInvalidTransitionError(current, target)
	}

	sm := newLifecycleMachine(current)
	if err := sm.Fire(target); err != nil {
		return current, NewInvalidTransitionError(current, target)
	}
	return sm.MustState().(PaymentStatus), nil
}
