package registry

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for registry operations.
var (
	ErrCircularDependency = errors.New("circular dependency")
	ErrInitialization     = errors.New("system initialization failed")
	ErrDestruction        = errors.New("system destruction failed")
	ErrUnregisteredSystem = errors.New("system not registered")
	ErrDuplicateSystem    = errors.New("system already registered")
)

// CycleError reports a dependency cycle. Path starts and ends with the
// system that was revisited.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("registry: %s: %s", ErrCircularDependency, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCircularDependency
}

// InitError reports the system whose Initialize failed and the cause.
type InitError struct {
	System string
	Err    error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("registry: initialize %q: %v", e.System, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

func (e *InitError) Is(target error) bool {
	return target == ErrInitialization
}

// DestroyError reports a failure while tearing down one system.
type DestroyError struct {
	System string
	Err    error
}

func (e *DestroyError) Error() string {
	return fmt.Sprintf("registry: destroy %q: %v", e.System, e.Err)
}

func (e *DestroyError) Unwrap() error {
	return e.Err
}

func (e *DestroyError) Is(target error) bool {
	return target == ErrDestruction
}

// UnregisteredError reports access to a system name that was never registered.
type UnregisteredError struct {
	Name string
}

func (e *UnregisteredError) Error() string {
	return fmt.Sprintf("registry: unknown system %q", e.Name)
}

func (e *UnregisteredError) Is(target error) bool {
	return target == ErrUnregisteredSystem
}
