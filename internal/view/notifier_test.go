package view

import (
	"testing"
	"time"
)

func TestToastDefaultDuration(t *testing.T) {
	clock := &fakeClock{}
	n := NewNotifier(clock)

	id := n.ShowErrorToast("network down", 0)
	clock.Advance(DefaultToastDuration - time.Millisecond)
	toast, ok := n.Toast()
	if !ok || toast.ID != id || toast.Message != "network down" {
		t.Fatalf("expected toast to be visible, got %+v (%v)", toast, ok)
	}
	clock.Advance(time.Millisecond)
	if _, ok := n.Toast(); ok {
		t.Fatalf("expected toast to expire after the default duration")
	}
}

func TestToastReplacementKeepsNewest(t *testing.T) {
	clock := &fakeClock{}
	n := NewNotifier(clock)

	first := n.ShowErrorToast("first", 3*time.Second)
	clock.Advance(time.Second)
	second := n.ShowErrorToast("second", 3*time.Second)
	if second <= first {
		t.Fatalf("expected increasing ids, got %d then %d", first, second)
	}

	// The first toast's timer fires here but must not clear the second.
	clock.Advance(2 * time.Second)
	toast, ok := n.Toast()
	if !ok || toast.ID != second || toast.Message != "second" {
		t.Fatalf("expected second toast to survive, got %+v (%v)", toast, ok)
	}

	clock.Advance(time.Second)
	if _, ok := n.Toast(); ok {
		t.Fatalf("expected second toast to expire")
	}
}

func TestGlobalErrorAndOnChange(t *testing.T) {
	clock := &fakeClock{}
	n := NewNotifier(clock)
	changes := 0
	n.OnChange(func() { changes++ })

	n.SetGlobalError("server unavailable")
	clock.Advance(time.Hour)
	if n.GlobalError() != "server unavailable" {
		t.Fatalf("expected banner to persist")
	}
	n.ClearGlobalError()
	if n.GlobalError() != "" {
		t.Fatalf("expected banner to clear")
	}

	n.ShowErrorToast("x", time.Second)
	clock.Advance(time.Second)
	if changes != 4 {
		t.Fatalf("expected 4 change notifications, got %d", changes)
	}
}
