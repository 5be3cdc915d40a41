// Package event provides the typed publish/subscribe bus that connects the
// duel's subsystems without direct coupling.
//
// Delivery is synchronous: Publish calls every subscriber of the event's name
// in subscription order before it returns. Each handler runs inside its own
// fault boundary, so a panicking subscriber is logged and skipped while the
// remaining subscribers still receive the event.
package event

import (
	"io"
	"runtime/debug"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultHistorySize is the number of recent events retained for diagnostics.
const DefaultHistorySize = 128

// Handler receives a published event.
type Handler func(Event)

// Subscription is the handle returned by Subscribe. It can be passed to
// Unsubscribe or cancelled directly.
type Subscription struct {
	id      uint64
	name    Name
	once    bool
	handler Handler
	bus     *Bus

	// guarded by bus.mu
	cancelled bool
}

// ID returns the subscription identifier.
func (s *Subscription) ID() uint64 {
	return s.id
}

// Event returns the subscribed event name.
func (s *Subscription) Event() Name {
	return s.name
}

// Cancel removes the subscription. Cancelling twice is harmless.
func (s *Subscription) Cancel() {
	//nolint:errcheck // Already-removed subscriptions are fine here
	s.bus.Unsubscribe(s)
}

// Active reports whether the subscription can still receive events.
func (s *Subscription) Active() bool {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	return !s.cancelled
}

// Stats contains delivery counters.
type Stats struct {
	Published uint64
	Delivered uint64
	Panicked  uint64
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report handler panics.
func WithLogger(l *log.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithHistorySize sets the capacity of the recent-event ring.
// Non-positive sizes keep the default.
func WithHistorySize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.history = newHistory(n)
		}
	}
}

// WithClock sets the time source used to stamp history records.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) {
		b.now = now
	}
}

// WithPanicHandler registers a callback invoked after a subscriber panics.
func WithPanicHandler(h func(*PanicError)) Option {
	return func(b *Bus) {
		b.onPanic = h
	}
}

// Bus is a synchronous typed publish/subscribe channel.
//
// The mutex only protects subscriber lists, counters and history: waiter
// timeouts fire on timer goroutines. Handlers are never called with it held.
type Bus struct {
	mu      sync.Mutex
	subs    map[Name][]*Subscription
	nextID  uint64
	history *History
	stats   Stats

	logger  *log.Logger
	now     func() time.Time
	onPanic func(*PanicError)
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subs:    make(map[Name][]*Subscription),
		history: newHistory(DefaultHistorySize),
		logger:  log.New(io.Discard),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for every future event with the given name.
func (b *Bus) Subscribe(name Name, handler Handler) *Subscription {
	return b.subscribe(name, handler, false)
}

// SubscribeOnce registers handler for the next event with the given name only.
func (b *Bus) SubscribeOnce(name Name, handler Handler) *Subscription {
	return b.subscribe(name, handler, true)
}

func (b *Bus) subscribe(name Name, handler Handler, once bool) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:      b.nextID,
		name:    name,
		once:    once,
		handler: handler,
		bus:     b,
	}
	b.subs[name] = append(b.subs[name], sub)
	return sub
}

// Unsubscribe removes a subscription.
// Returns ErrSubscriptionNotFound if it was already removed.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if sub.cancelled || !b.removeLocked(sub) {
		sub.cancelled = true
		return ErrSubscriptionNotFound
	}
	sub.cancelled = true
	return nil
}

// removeLocked drops sub from its name's list, preserving order.
func (b *Bus) removeLocked(sub *Subscription) bool {
	list := b.subs[sub.name]
	for i, s := range list {
		if s == sub {
			next := make([]*Subscription, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			if len(next) == 0 {
				delete(b.subs, sub.name)
			} else {
				b.subs[sub.name] = next
			}
			return true
		}
	}
	return false
}

// Publish records e in the history ring and delivers it to the current
// subscribers of its name, in subscription order.
func (b *Bus) Publish(e Event) {
	name := e.Name()

	b.mu.Lock()
	b.history.add(e, b.now())
	b.stats.Published++

	list := b.subs[name]
	targets := make([]*Subscription, len(list))
	copy(targets, list)
	for _, s := range targets {
		if s.once {
			// Once-subscriptions leave the list before their handler runs,
			// so a nested publish of the same event cannot reach them again.
			s.cancelled = true
			b.removeLocked(s)
		}
	}
	b.mu.Unlock()

	for _, s := range targets {
		if !s.once && !s.Active() {
			// Unsubscribed by an earlier handler during this publish.
			continue
		}
		b.deliver(s, e)
	}
}

// deliver runs one handler inside its own fault boundary.
func (b *Bus) deliver(s *Subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			perr := &PanicError{
				SubscriptionID: s.id,
				Event:          e.Name(),
				Value:          r,
				Stack:          string(debug.Stack()),
			}

			b.mu.Lock()
			b.stats.Panicked++
			b.mu.Unlock()

			b.logger.Error("event handler panicked",
				"event", e.Name(),
				"subscription", s.id,
				"panic", r,
			)
			if b.onPanic != nil {
				b.onPanic(perr)
			}
		}
	}()

	s.handler(e)

	b.mu.Lock()
	b.stats.Delivered++
	b.mu.Unlock()
}

// SubscriberCount returns the number of active subscribers for name.
func (b *Bus) SubscriberCount(name Name) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[name])
}

// Recent returns up to n of the most recent events, oldest first.
func (b *Bus) Recent(n int) []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.Recent(n)
}

// ClearHistory drops all retained history records.
func (b *Bus) ClearHistory() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history.clear()
}

// Stats returns a copy of the delivery counters.
func (b *Bus) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// On subscribes a handler typed to a single catalogue payload.
// The event name is taken from T, so payload shape is checked at compile time.
func On[T Event](b *Bus, handler func(T)) *Subscription {
	var zero T
	return b.Subscribe(zero.Name(), func(e Event) {
		if typed, ok := e.(T); ok {
			handler(typed)
		}
	})
}

// Once is the typed form of SubscribeOnce.
func Once[T Event](b *Bus, handler func(T)) *Subscription {
	var zero T
	return b.SubscribeOnce(zero.Name(), func(e Event) {
		if typed, ok := e.(T); ok {
			handler(typed)
		}
	})
}
