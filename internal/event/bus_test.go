package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/bubble-duel/internal/core"
)

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()

	var order []int
	for i := 1; i <= 3; i++ {
		n := i
		bus.Subscribe(NameGemsUpdated, func(Event) {
			order = append(order, n)
		})
	}

	bus.Publish(GemsUpdated{PlayerGems: 1})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("Delivery order = %v, expected [1 2 3]", order)
	}
}

func TestPublishOnlyMatchingName(t *testing.T) {
	bus := NewBus()

	gems := 0
	bus.Subscribe(NameGemsUpdated, func(Event) { gems++ })

	bus.Publish(ComboUpdated{Combo: 2})
	if gems != 0 {
		t.Errorf("Handler for gems-updated received combo-updated")
	}

	bus.Publish(GemsUpdated{})
	if gems != 1 {
		t.Errorf("Expected 1 delivery, got %d", gems)
	}
}

func TestPanickingHandlerDoesNotBlockOthers(t *testing.T) {
	var caught *PanicError
	bus := NewBus(WithPanicHandler(func(err *PanicError) {
		caught = err
	}))

	reached := false
	bus.Subscribe(NameGameOver, func(Event) {
		panic("boom")
	})
	bus.Subscribe(NameGameOver, func(Event) {
		reached = true
	})

	bus.Publish(GameOver{Winner: core.SidePlayer})

	if !reached {
		t.Fatal("Second subscriber was not reached after first panicked")
	}
	if caught == nil {
		t.Fatal("Panic handler was not called")
	}
	if !errors.Is(caught, ErrHandlerPanic) {
		t.Errorf("PanicError should match ErrHandlerPanic")
	}
	if caught.Event != NameGameOver {
		t.Errorf("PanicError.Event = %q, expected %q", caught.Event, NameGameOver)
	}

	stats := bus.Stats()
	if stats.Panicked != 1 || stats.Delivered != 1 || stats.Published != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	sub := bus.Subscribe(NameComboUpdated, func(Event) { calls++ })

	if err := bus.Unsubscribe(sub); err != nil {
		t.Fatalf("Unsubscribe() failed: %v", err)
	}
	bus.Publish(ComboUpdated{Combo: 1})

	if calls != 0 {
		t.Errorf("Unsubscribed handler was called %d times", calls)
	}
	if err := bus.Unsubscribe(sub); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("Second Unsubscribe() = %v, expected ErrSubscriptionNotFound", err)
	}
	if bus.SubscriberCount(NameComboUpdated) != 0 {
		t.Errorf("SubscriberCount() = %d, expected 0", bus.SubscriberCount(NameComboUpdated))
	}
}

func TestUnsubscribeDuringPublishSkipsLaterHandler(t *testing.T) {
	bus := NewBus()

	var second *Subscription
	secondCalls := 0
	bus.Subscribe(NameTimeUp, func(Event) {
		second.Cancel()
	})
	second = bus.Subscribe(NameTimeUp, func(Event) { secondCalls++ })

	bus.Publish(TimeUp{})

	if secondCalls != 0 {
		t.Errorf("Handler cancelled mid-publish was still called")
	}
}

func TestSubscribeOnce(t *testing.T) {
	bus := NewBus()

	calls := 0
	sub := bus.SubscribeOnce(NameGameReset, func(Event) {
		calls++
	})

	bus.Publish(GameReset{})
	bus.Publish(GameReset{})

	if calls != 1 {
		t.Errorf("Once handler called %d times, expected 1", calls)
	}
	if sub.Active() {
		t.Errorf("Once subscription should be inactive after delivery")
	}
}

func TestSubscribeOnceNestedPublish(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.SubscribeOnce(NameGameReset, func(Event) {
		calls++
		bus.Publish(GameReset{})
	})

	bus.Publish(GameReset{})

	if calls != 1 {
		t.Errorf("Once handler re-entered %d times, expected 1", calls)
	}
}

func TestTypedSubscribe(t *testing.T) {
	bus := NewBus()

	var got VictoryConditionMet
	On(bus, func(e VictoryConditionMet) {
		got = e
	})

	bus.Publish(VictoryConditionMet{Winner: core.SideOpponent, Reason: core.ReasonGems})

	if got.Winner != core.SideOpponent || got.Reason != core.ReasonGems {
		t.Errorf("Typed handler got %+v", got)
	}
}

func TestTypedOnce(t *testing.T) {
	bus := NewBus()

	calls := 0
	Once(bus, func(GameStarted) { calls++ })

	bus.Publish(GameStarted{MatchID: "a"})
	bus.Publish(GameStarted{MatchID: "b"})

	if calls != 1 {
		t.Errorf("Typed once handler called %d times, expected 1", calls)
	}
}

func TestWaitForResolves(t *testing.T) {
	bus := NewBus()

	w := bus.WaitFor(NameSuddenDeathStarted, time.Second)
	if _, err := w.Result(); !errors.Is(err, ErrWaitPending) {
		t.Fatalf("Result() before publish = %v, expected ErrWaitPending", err)
	}

	bus.Publish(SuddenDeathStarted{Elapsed: 150 * time.Second})

	ev, err := w.Result()
	if err != nil {
		t.Fatalf("Result() failed: %v", err)
	}
	sd, ok := ev.(SuddenDeathStarted)
	if !ok || sd.Elapsed != 150*time.Second {
		t.Errorf("Result() = %#v", ev)
	}
	if bus.SubscriberCount(NameSuddenDeathStarted) != 0 {
		t.Errorf("Waiter subscription should be removed after resolving")
	}
}

func TestWaitForTimeout(t *testing.T) {
	bus := NewBus()

	w := bus.WaitFor(NameGameOver, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := w.Wait(ctx)
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("Wait() = %v, expected ErrWaitTimeout", err)
	}
	if bus.SubscriberCount(NameGameOver) != 0 {
		t.Errorf("Timed-out waiter left its subscription behind")
	}

	// A late event must not change the outcome.
	bus.Publish(GameOver{})
	if _, err := w.Result(); !errors.Is(err, ErrWaitTimeout) {
		t.Errorf("Result() after late publish = %v, expected ErrWaitTimeout", err)
	}
}

func TestWaitForImmediateTimeout(t *testing.T) {
	bus := NewBus()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := 0; i < 100; i++ {
		w := bus.WaitFor(NameGameOver, time.Nanosecond)
		if _, err := w.Wait(ctx); !errors.Is(err, ErrWaitTimeout) {
			t.Fatalf("Wait() = %v, expected ErrWaitTimeout", err)
		}
	}
	if bus.SubscriberCount(NameGameOver) != 0 {
		t.Errorf("Timed-out waiters left %d subscriptions behind", bus.SubscriberCount(NameGameOver))
	}
}

func TestWaitForResolvedBeforeTimeout(t *testing.T) {
	bus := NewBus()

	w := bus.WaitFor(NameGameOver, 5*time.Millisecond)
	bus.Publish(GameOver{MatchID: "m1"})
	time.Sleep(20 * time.Millisecond)

	ev, err := w.Result()
	if err != nil {
		t.Fatalf("Result() failed: %v", err)
	}
	if _, ok := ev.(GameOver); !ok {
		t.Errorf("Result() = %#v, expected GameOver", ev)
	}
}

func TestWaitForCancel(t *testing.T) {
	bus := NewBus()

	w := bus.WaitFor(NameGameOver, 0)
	w.Cancel()

	select {
	case <-w.Done():
	default:
		t.Fatal("Done() should be closed after Cancel()")
	}
	if _, err := w.Result(); !errors.Is(err, ErrWaitCancelled) {
		t.Errorf("Result() = %v, expected ErrWaitCancelled", err)
	}
}

func TestHistoryRecordsPublishes(t *testing.T) {
	bus := NewBus(WithHistorySize(3))

	for i := 1; i <= 5; i++ {
		bus.Publish(ComboUpdated{Combo: i})
	}

	recent := bus.Recent(0)
	if len(recent) != 3 {
		t.Fatalf("Recent(0) returned %d records, expected 3", len(recent))
	}
	for i, rec := range recent {
		combo := rec.Event.(ComboUpdated).Combo
		if combo != i+3 {
			t.Errorf("recent[%d] combo = %d, expected %d", i, combo, i+3)
		}
	}
	if recent[2].Seq != 5 {
		t.Errorf("Newest Seq = %d, expected 5", recent[2].Seq)
	}

	bus.ClearHistory()
	if len(bus.Recent(0)) != 0 {
		t.Errorf("History not cleared")
	}
}
