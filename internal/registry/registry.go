// Package registry owns the lifecycle of the duel's subsystems.
// Systems are registered by name, initialized in dependency order, updated
// once per frame in that same order and destroyed in reverse.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Info contains metadata about a registered system.
type Info struct {
	Name     string
	Priority int
	Status   Status
	Enabled  bool
}

type entry struct {
	sys     System
	seq     int // registration sequence, breaks priority ties
	status  Status
	enabled bool
}

// RegisterOption configures a single Register call.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	replace bool
}

// AllowReplace lets Register overwrite a system with the same name.
// Without it a duplicate name is rejected with ErrDuplicateSystem.
func AllowReplace() RegisterOption {
	return func(o *registerOptions) {
		o.replace = true
	}
}

// Registry holds named systems and drives their lifecycle.
// System methods are never called with the registry lock held, so systems
// may query the registry from Initialize, Update and Destroy.
type Registry struct {
	mu      sync.RWMutex
	logger  *log.Logger
	entries map[string]*entry
	seq     int
	order   []string // computed by InitializeAll, extended by ReloadSystem
}

// New creates an empty registry. A nil logger discards output.
func New(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Registry{
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Register adds a system. Registering a name twice fails unless the call
// passes AllowReplace, in which case the old instance is destroyed (if it
// was initialized) and the new one takes its place in the order.
func (r *Registry) Register(sys System, opts ...RegisterOption) error {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}
	name := sys.Name()

	r.mu.Lock()
	old, exists := r.entries[name]
	if exists && !o.replace {
		r.mu.Unlock()
		return fmt.Errorf("registry: register %q: %w", name, ErrDuplicateSystem)
	}

	e := &entry{sys: sys, status: StatusRegistered, enabled: true}
	if exists {
		e.seq = old.seq
	} else {
		r.seq++
		e.seq = r.seq
	}
	r.entries[name] = e
	r.mu.Unlock()

	if exists {
		r.logger.Warn("replacing registered system", "system", name, "previous", old.status)
		if old.status == StatusInitialized || old.status == StatusFailed {
			if err := safeDestroy(old.sys); err != nil {
				r.logger.Error("destroying replaced system", "system", name, "error", err)
			}
		}
	}
	return nil
}

// InitializeAll computes the initialization order and initializes every
// system not yet initialized, sequentially. The first failure stops the
// sweep; systems initialized before it stay initialized.
func (r *Registry) InitializeAll(ctx context.Context) error {
	order, err := r.resolveOrder()
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.order = order
	r.mu.Unlock()

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return &InitError{System: name, Err: err}
		}

		r.mu.Lock()
		e := r.entries[name]
		if e.status == StatusInitialized {
			r.mu.Unlock()
			continue
		}
		e.status = StatusInitializing
		r.mu.Unlock()

		r.logger.Debug("initializing system", "system", name)
		if err := safeInit(ctx, e.sys); err != nil {
			r.setStatus(e, StatusFailed)
			r.logger.Error("system initialization failed", "system", name, "error", err)
			return &InitError{System: name, Err: err}
		}
		r.setStatus(e, StatusInitialized)
	}

	r.logger.Info("systems initialized", "count", len(order))
	return nil
}

// UpdateAll calls Update on every initialized, enabled Updater in
// initialization order.
func (r *Registry) UpdateAll(elapsed, delta time.Duration) {
	r.mu.RLock()
	targets := make([]Updater, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		if e == nil || e.status != StatusInitialized || !e.enabled {
			continue
		}
		if u, ok := e.sys.(Updater); ok {
			targets = append(targets, u)
		}
	}
	r.mu.RUnlock()

	for _, u := range targets {
		u.Update(elapsed, delta)
	}
}

// DestroyAll tears systems down in reverse initialization order.
// A failing or panicking Destroy is logged and the sweep continues; all
// failures are returned joined. Systems that never started initializing
// are skipped.
func (r *Registry) DestroyAll() error {
	r.mu.RLock()
	order := make([]string, len(r.order))
	copy(order, r.order)
	r.mu.RUnlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]

		r.mu.Lock()
		e := r.entries[name]
		if e == nil || !needsDestroy(e.status) {
			r.mu.Unlock()
			continue
		}
		r.mu.Unlock()

		if err := safeDestroy(e.sys); err != nil {
			r.logger.Error("system destroy failed", "system", name, "error", err)
			errs = append(errs, &DestroyError{System: name, Err: err})
		}
		r.setStatus(e, StatusDestroyed)
	}

	return errors.Join(errs...)
}

// ReloadSystem destroys and re-initializes a single system out of band.
func (r *Registry) ReloadSystem(ctx context.Context, name string) error {
	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		r.mu.Unlock()
		return &UnregisteredError{Name: name}
	}
	wasLive := needsDestroy(e.status)
	r.mu.Unlock()

	if wasLive {
		if err := safeDestroy(e.sys); err != nil {
			r.logger.Warn("destroy during reload failed", "system", name, "error", err)
		}
		r.setStatus(e, StatusDestroyed)
	}

	r.setStatus(e, StatusInitializing)
	if err := safeInit(ctx, e.sys); err != nil {
		r.setStatus(e, StatusFailed)
		return &InitError{System: name, Err: err}
	}

	r.mu.Lock()
	e.status = StatusInitialized
	if !contains(r.order, name) {
		r.order = append(r.order, name)
	}
	r.mu.Unlock()

	r.logger.Info("system reloaded", "system", name)
	return nil
}

// ResetAll calls Reset on every initialized Resetter in initialization order.
func (r *Registry) ResetAll() {
	r.mu.RLock()
	targets := make([]Resetter, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		if e == nil || e.status != StatusInitialized {
			continue
		}
		if rs, ok := e.sys.(Resetter); ok {
			targets = append(targets, rs)
		}
	}
	r.mu.RUnlock()

	for _, rs := range targets {
		rs.Reset()
	}
}

// Get returns the system registered under name.
func (r *Registry) Get(name string) (System, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, &UnregisteredError{Name: name}
	}
	return e.sys, nil
}

// Lookup returns the system registered under name as type T.
func Lookup[T System](r *Registry, name string) (T, error) {
	var zero T
	sys, err := r.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := sys.(T)
	if !ok {
		return zero, fmt.Errorf("registry: system %q is %T, not %T", name, sys, zero)
	}
	return typed, nil
}

// Exists checks if a system with the given name is registered.
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[name]
	return ok
}

// IsInitialized reports whether the named system finished initializing.
func (r *Registry) IsInitialized(name string) bool {
	return r.Status(name) == StatusInitialized
}

// Status returns the lifecycle status of the named system.
func (r *Registry) Status(name string) Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return StatusUnregistered
	}
	return e.status
}

// SetEnabled toggles whether UpdateAll visits the named system.
func (r *Registry) SetEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return &UnregisteredError{Name: name}
	}
	e.enabled = enabled
	return nil
}

// IsEnabled reports whether the named system is enabled.
func (r *Registry) IsEnabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	return ok && e.enabled
}

// Order returns the computed initialization order.
func (r *Registry) Order() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// List returns information about all registered systems, sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Info, 0, len(r.entries))
	for name, e := range r.entries {
		result = append(result, Info{
			Name:     name,
			Priority: e.sys.Priority(),
			Status:   e.status,
			Enabled:  e.enabled,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

func (r *Registry) setStatus(e *entry, s Status) {
	r.mu.Lock()
	e.status = s
	r.mu.Unlock()
}

func needsDestroy(s Status) bool {
	return s == StatusInitialized || s == StatusInitializing || s == StatusFailed
}

func contains(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}
