package registry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeSystem struct {
	Base
	journal      *[]string
	initErr      error
	destroyErr   error
	destroyPanic bool
	updates      int
	resets       int
}

func newFake(journal *[]string, name string, priority int, deps ...string) *fakeSystem {
	return &fakeSystem{
		Base:    NewBase(name, priority, deps...),
		journal: journal,
	}
}

func (f *fakeSystem) Initialize(context.Context) error {
	*f.journal = append(*f.journal, "init:"+f.Name())
	return f.initErr
}

func (f *fakeSystem) Destroy() error {
	*f.journal = append(*f.journal, "destroy:"+f.Name())
	if f.destroyPanic {
		panic("destroy exploded")
	}
	return f.destroyErr
}

func (f *fakeSystem) Update(time.Duration, time.Duration) {
	f.updates++
}

func (f *fakeSystem) Reset() {
	f.resets++
}

// plainSystem has no Update or Reset.
type plainSystem struct {
	Base
}

func (plainSystem) Initialize(context.Context) error { return nil }
func (plainSystem) Destroy() error                   { return nil }

func mustRegister(t *testing.T, r *Registry, sys System) {
	t.Helper()
	if err := r.Register(sys); err != nil {
		t.Fatalf("Register(%s) failed: %v", sys.Name(), err)
	}
}

func TestInitializeDependencyChain(t *testing.T) {
	var journal []string
	r := New(nil)

	// Registered in reverse order on purpose
	mustRegister(t, r, newFake(&journal, "C", 0, "B"))
	mustRegister(t, r, newFake(&journal, "B", 0, "A"))
	mustRegister(t, r, newFake(&journal, "A", 0))

	if err := r.InitializeAll(context.Background()); err != nil {
		t.Fatalf("InitializeAll() failed: %v", err)
	}

	got := strings.Join(journal, ",")
	if got != "init:A,init:B,init:C" {
		t.Errorf("Init order = %s, expected init:A,init:B,init:C", got)
	}
	if order := strings.Join(r.Order(), ","); order != "A,B,C" {
		t.Errorf("Order() = %s, expected A,B,C", order)
	}
}

func TestDependenciesBeatPriority(t *testing.T) {
	var journal []string
	r := New(nil)

	mustRegister(t, r, newFake(&journal, "early", 0, "late"))
	mustRegister(t, r, newFake(&journal, "late", 100))
	mustRegister(t, r, newFake(&journal, "middle", 50))

	if err := r.InitializeAll(context.Background()); err != nil {
		t.Fatalf("InitializeAll() failed: %v", err)
	}

	if order := strings.Join(r.Order(), ","); order != "late,early,middle" {
		t.Errorf("Order() = %s, expected late,early,middle", order)
	}
}

func TestPriorityTiesKeepRegistrationOrder(t *testing.T) {
	var journal []string
	r := New(nil)

	mustRegister(t, r, newFake(&journal, "zeta", 5))
	mustRegister(t, r, newFake(&journal, "alpha", 5))
	mustRegister(t, r, newFake(&journal, "first", 1))

	if err := r.InitializeAll(context.Background()); err != nil {
		t.Fatalf("InitializeAll() failed: %v", err)
	}

	if order := strings.Join(r.Order(), ","); order != "first,zeta,alpha" {
		t.Errorf("Order() = %s, expected first,zeta,alpha", order)
	}
}

func TestCircularDependency(t *testing.T) {
	var journal []string
	r := New(nil)

	mustRegister(t, r, newFake(&journal, "A", 0, "B"))
	mustRegister(t, r, newFake(&journal, "B", 0, "A"))

	err := r.InitializeAll(context.Background())
	if !errors.Is(err, ErrCircularDependency) {
		t.Fatalf("InitializeAll() = %v, expected ErrCircularDependency", err)
	}

	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("Expected *CycleError, got %T", err)
	}
	if got := strings.Join(cycle.Path, "->"); got != "A->B->A" {
		t.Errorf("Cycle path = %s, expected A->B->A", got)
	}
	if len(journal) != 0 {
		t.Errorf("No system should initialize when a cycle exists, got %v", journal)
	}
}

func TestSelfDependencyIsCycle(t *testing.T) {
	var journal []string
	r := New(nil)
	mustRegister(t, r, newFake(&journal, "loop", 0, "loop"))

	if err := r.InitializeAll(context.Background()); !errors.Is(err, ErrCircularDependency) {
		t.Errorf("InitializeAll() = %v, expected ErrCircularDependency", err)
	}
}

func TestMissingDependencyIsSoft(t *testing.T) {
	var journal []string
	r := New(nil)
	mustRegister(t, r, newFake(&journal, "audio", 0, "mixer"))

	if err := r.InitializeAll(context.Background()); err != nil {
		t.Fatalf("InitializeAll() failed: %v", err)
	}
	if !r.IsInitialized("audio") {
		t.Errorf("System with a missing dependency should still initialize")
	}
}

func TestInitializationFailureAborts(t *testing.T) {
	var journal []string
	r := New(nil)

	cause := errors.New("no assets")
	a := newFake(&journal, "A", 0)
	b := newFake(&journal, "B", 1)
	b.initErr = cause
	c := newFake(&journal, "C", 2)
	mustRegister(t, r, a)
	mustRegister(t, r, b)
	mustRegister(t, r, c)

	err := r.InitializeAll(context.Background())
	if err == nil {
		t.Fatal("InitializeAll() should fail")
	}
	if !errors.Is(err, ErrInitialization) || !errors.Is(err, cause) {
		t.Errorf("Error %v should match ErrInitialization and the cause", err)
	}

	var initErr *InitError
	if !errors.As(err, &initErr) || initErr.System != "B" {
		t.Errorf("Expected *InitError for B, got %v", err)
	}

	if !r.IsInitialized("A") {
		t.Errorf("A should remain initialized (no rollback)")
	}
	if r.Status("B") != StatusFailed {
		t.Errorf("B status = %s, expected failed", r.Status("B"))
	}
	if r.Status("C") != StatusRegistered {
		t.Errorf("C status = %s, expected registered", r.Status("C"))
	}
}

func TestInitializePanicBecomesError(t *testing.T) {
	r := New(nil)
	mustRegister(t, r, &panickyInit{Base: NewBase("panicky", 0)})

	err := r.InitializeAll(context.Background())
	if !errors.Is(err, ErrInitialization) {
		t.Fatalf("InitializeAll() = %v, expected ErrInitialization", err)
	}
}

type panickyInit struct {
	Base
}

func (panickyInit) Initialize(context.Context) error { panic("bad init") }
func (panickyInit) Destroy() error                   { return nil }

func TestInitializeCancelledContext(t *testing.T) {
	var journal []string
	r := New(nil)
	mustRegister(t, r, newFake(&journal, "A", 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.InitializeAll(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("InitializeAll() = %v, expected context.Canceled", err)
	}
	if len(journal) != 0 {
		t.Errorf("No system should initialize with a cancelled context")
	}
}

func TestUpdateAllSkipsDisabledAndUninitialized(t *testing.T) {
	var journal []string
	r := New(nil)

	a := newFake(&journal, "A", 0)
	b := newFake(&journal, "B", 1)
	mustRegister(t, r, a)
	mustRegister(t, r, b)
	mustRegister(t, r, plainSystem{Base: NewBase("plain", 2)})

	// Before initialization nothing updates
	r.UpdateAll(0, time.Millisecond)
	if a.updates != 0 {
		t.Fatalf("Update called before initialization")
	}

	if err := r.InitializeAll(context.Background()); err != nil {
		t.Fatalf("InitializeAll() failed: %v", err)
	}
	if err := r.SetEnabled("B", false); err != nil {
		t.Fatalf("SetEnabled() failed: %v", err)
	}

	r.UpdateAll(16*time.Millisecond, 16*time.Millisecond)
	r.UpdateAll(32*time.Millisecond, 16*time.Millisecond)

	if a.updates != 2 {
		t.Errorf("A updates = %d, expected 2", a.updates)
	}
	if b.updates != 0 {
		t.Errorf("Disabled B updates = %d, expected 0", b.updates)
	}
	if r.IsEnabled("B") {
		t.Errorf("IsEnabled(B) should be false")
	}
}

func TestDestroyAllReverseAndBestEffort(t *testing.T) {
	var journal []string
	r := New(nil)

	a := newFake(&journal, "A", 0)
	b := newFake(&journal, "B", 1)
	b.destroyErr = errors.New("stuck")
	c := newFake(&journal, "C", 2)
	c.destroyPanic = true
	mustRegister(t, r, a)
	mustRegister(t, r, b)
	mustRegister(t, r, c)

	if err := r.InitializeAll(context.Background()); err != nil {
		t.Fatalf("InitializeAll() failed: %v", err)
	}
	journal = nil

	err := r.DestroyAll()
	if !errors.Is(err, ErrDestruction) {
		t.Errorf("DestroyAll() = %v, expected ErrDestruction", err)
	}

	if got := strings.Join(journal, ","); got != "destroy:C,destroy:B,destroy:A" {
		t.Errorf("Destroy order = %s, expected destroy:C,destroy:B,destroy:A", got)
	}
	for _, name := range []string{"A", "B", "C"} {
		if r.Status(name) != StatusDestroyed {
			t.Errorf("%s status = %s, expected destroyed", name, r.Status(name))
		}
	}

	// Destroyed systems no longer update
	r.UpdateAll(0, 0)
	if a.updates != 0 {
		t.Errorf("Destroyed system was updated")
	}
}

func TestDuplicateRegistration(t *testing.T) {
	var journal []string
	r := New(nil)

	mustRegister(t, r, newFake(&journal, "flow", 0))
	if err := r.Register(newFake(&journal, "flow", 0)); !errors.Is(err, ErrDuplicateSystem) {
		t.Fatalf("Register() duplicate = %v, expected ErrDuplicateSystem", err)
	}
}

func TestReplaceRegistration(t *testing.T) {
	var journal []string
	r := New(nil)

	old := newFake(&journal, "ai", 0)
	mustRegister(t, r, old)
	if err := r.InitializeAll(context.Background()); err != nil {
		t.Fatalf("InitializeAll() failed: %v", err)
	}

	replacement := newFake(&journal, "ai", 0)
	if err := r.Register(replacement, AllowReplace()); err != nil {
		t.Fatalf("Register() with AllowReplace failed: %v", err)
	}

	if got := journal[len(journal)-1]; got != "destroy:ai" {
		t.Errorf("Replaced initialized system should be destroyed, last journal entry %q", got)
	}
	if r.Status("ai") != StatusRegistered {
		t.Errorf("Replacement status = %s, expected registered", r.Status("ai"))
	}

	if err := r.InitializeAll(context.Background()); err != nil {
		t.Fatalf("InitializeAll() failed: %v", err)
	}
	sys, err := r.Get("ai")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if sys != System(replacement) {
		t.Errorf("Get() returned the old instance")
	}
}

func TestReloadSystem(t *testing.T) {
	var journal []string
	r := New(nil)
	mustRegister(t, r, newFake(&journal, "grid", 0))

	if err := r.InitializeAll(context.Background()); err != nil {
		t.Fatalf("InitializeAll() failed: %v", err)
	}
	journal = nil

	if err := r.ReloadSystem(context.Background(), "grid"); err != nil {
		t.Fatalf("ReloadSystem() failed: %v", err)
	}
	if got := strings.Join(journal, ","); got != "destroy:grid,init:grid" {
		t.Errorf("Reload journal = %s", got)
	}
	if !r.IsInitialized("grid") {
		t.Errorf("Reloaded system should be initialized")
	}

	if err := r.ReloadSystem(context.Background(), "nope"); !errors.Is(err, ErrUnregisteredSystem) {
		t.Errorf("ReloadSystem(unknown) = %v, expected ErrUnregisteredSystem", err)
	}
}

func TestGetAndLookup(t *testing.T) {
	var journal []string
	r := New(nil)
	sys := newFake(&journal, "scoring", 0)
	mustRegister(t, r, sys)

	if _, err := r.Get("missing"); !errors.Is(err, ErrUnregisteredSystem) {
		t.Errorf("Get(missing) = %v, expected ErrUnregisteredSystem", err)
	}

	got, err := Lookup[*fakeSystem](r, "scoring")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if got != sys {
		t.Errorf("Lookup() returned a different instance")
	}

	if _, err := Lookup[plainSystem](r, "scoring"); err == nil {
		t.Errorf("Lookup() with the wrong type should fail")
	}
}

func TestResetAll(t *testing.T) {
	var journal []string
	r := New(nil)
	a := newFake(&journal, "A", 0)
	b := newFake(&journal, "B", 1)
	mustRegister(t, r, a)
	mustRegister(t, r, b)
	mustRegister(t, r, plainSystem{Base: NewBase("plain", 2)})

	if err := r.InitializeAll(context.Background()); err != nil {
		t.Fatalf("InitializeAll() failed: %v", err)
	}
	r.ResetAll()

	if a.resets != 1 || b.resets != 1 {
		t.Errorf("Resets = %d/%d, expected 1/1", a.resets, b.resets)
	}
}

func TestListSortedByName(t *testing.T) {
	var journal []string
	r := New(nil)
	mustRegister(t, r, newFake(&journal, "zeta", 0))
	mustRegister(t, r, newFake(&journal, "alpha", 9))

	list := r.List()
	if len(list) != 2 || list[0].Name != "alpha" || list[1].Name != "zeta" {
		t.Errorf("List() = %+v", list)
	}
	if list[0].Priority != 9 || list[0].Status != StatusRegistered || !list[0].Enabled {
		t.Errorf("Unexpected info: %+v", list[0])
	}
}
