package event

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Waiter is a cancellable future for the next event with a given name.
type Waiter struct {
	name Name
	sub  *Subscription

	once  sync.Once
	done  chan struct{}
	event Event
	err   error
}

// WaitFor returns a waiter resolved by the next event named name.
// A positive timeout fails the waiter with ErrWaitTimeout and removes its
// subscription if nothing arrives in time; zero waits indefinitely.
func (b *Bus) WaitFor(name Name, timeout time.Duration) *Waiter {
	w := &Waiter{
		name: name,
		done: make(chan struct{}),
	}
	w.sub = b.SubscribeOnce(name, func(e Event) {
		w.finish(e, nil)
	})
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		go func() {
			defer timer.Stop()
			select {
			case <-timer.C:
				w.finish(nil, fmt.Errorf("event: waiting for %s after %s: %w", name, timeout, ErrWaitTimeout))
			case <-w.done:
			}
		}()
	}
	return w
}

func (w *Waiter) finish(e Event, err error) {
	w.once.Do(func() {
		w.event = e
		w.err = err
		w.sub.Cancel()
		close(w.done)
	})
}

// Cancel fails the waiter with ErrWaitCancelled unless it already finished.
func (w *Waiter) Cancel() {
	w.finish(nil, fmt.Errorf("event: waiting for %s: %w", w.name, ErrWaitCancelled))
}

// Done is closed once the waiter resolves, times out or is cancelled.
func (w *Waiter) Done() <-chan struct{} {
	return w.done
}

// Result returns the outcome without blocking.
// It returns ErrWaitPending while the wait is in flight.
func (w *Waiter) Result() (Event, error) {
	select {
	case <-w.done:
		return w.event, w.err
	default:
		return nil, ErrWaitPending
	}
}

// Wait blocks until the waiter finishes or ctx is done.
// Cancelling ctx does not cancel the waiter itself.
func (w *Waiter) Wait(ctx context.Context) (Event, error) {
	select {
	case <-w.done:
		return w.event, w.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
