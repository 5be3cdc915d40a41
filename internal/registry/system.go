package registry

import (
	"context"
	"time"
)

// System is the contract every orchestrated subsystem implements.
// Systems contain their own state; the registry only owns their lifecycle.
type System interface {
	// Name returns a unique identifier (e.g., "flow", "scoring").
	Name() string

	// Priority orders initialization; lower values initialize earlier
	// unless a dependency forces otherwise.
	Priority() int

	// Dependencies lists the names that must be initialized first.
	Dependencies() []string

	// Initialize prepares the system. It may read the state store and
	// subscribe to the bus. Called once, in dependency order.
	Initialize(ctx context.Context) error

	// Destroy releases resources. Called in reverse initialization order.
	Destroy() error
}

// Updater is implemented by systems that run every frame.
type Updater interface {
	// Update advances the system. elapsed is the frame timestamp relative
	// to the loop start and delta the time since the previous frame.
	Update(elapsed, delta time.Duration)
}

// Resetter is implemented by systems holding per-match state that must be
// cleared when the game returns to the menu.
type Resetter interface {
	Reset()
}

// Base carries the descriptive part of a System for embedding.
type Base struct {
	name     string
	priority int
	deps     []string
}

// NewBase creates a Base with the given name, priority and dependencies.
func NewBase(name string, priority int, deps ...string) Base {
	return Base{
		name:     name,
		priority: priority,
		deps:     deps,
	}
}

// Name returns the system name.
func (b Base) Name() string {
	return b.name
}

// Priority returns the initialization priority.
func (b Base) Priority() int {
	return b.priority
}

// Dependencies returns a copy of the declared dependencies.
func (b Base) Dependencies() []string {
	out := make([]string, len(b.deps))
	copy(out, b.deps)
	return out
}

// Status is the lifecycle state of a registered system.
type Status int

const (
	StatusUnregistered Status = iota
	StatusRegistered
	StatusInitializing
	StatusInitialized
	StatusFailed
	StatusDestroyed
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusUnregistered:
		return "unregistered"
	case StatusRegistered:
		return "registered"
	case StatusInitializing:
		return "initializing"
	case StatusInitialized:
		return "initialized"
	case StatusFailed:
		return "failed"
	case StatusDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}
