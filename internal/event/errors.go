package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for the event bus.
var (
	// ErrSubscriptionNotFound is returned when unsubscribing an unknown or cancelled subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrWaitTimeout is returned by a waiter when no event arrived in time.
	ErrWaitTimeout = errors.New("event wait timed out")

	// ErrWaitCancelled is returned by a waiter cancelled before an event arrived.
	ErrWaitCancelled = errors.New("event wait cancelled")

	// ErrWaitPending is returned by Waiter.Result while the wait is still in flight.
	ErrWaitPending = errors.New("event wait pending")

	// ErrHandlerPanic matches any PanicError.
	ErrHandlerPanic = errors.New("handler panicked")
)

// PanicError wraps a panic raised by a subscriber.
type PanicError struct {
	// SubscriptionID is the ID of the subscription whose handler panicked.
	SubscriptionID uint64

	// Event is the name of the event being delivered.
	Event Name

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic for subscription %d on %s: %v", e.SubscriptionID, e.Event, e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
