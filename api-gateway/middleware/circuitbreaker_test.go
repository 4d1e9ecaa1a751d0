package middleware

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("inventory", 3, time.Minute)
	boom := errors.New("backend down")

	for i := 0; i < 3; i++ {
		if err := cb.Call(func() error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d err = %v, want the backend error", i, err)
		}
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %q, want open after threshold", cb.GetState())
	}

	// open circuit short-circuits without invoking the function
	called := false
	err := cb.Call(func() error { called = true; return nil })
	if err == nil {
		t.Error("expected rejection while open")
	}
	if called {
		t.Error("function invoked while circuit open")
	}
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker("inventory", 1, 10*time.Millisecond)

	if err := cb.Call(func() error { return errors.New("down") }); err == nil {
		t.Fatal("expected failure")
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %q, want open", cb.GetState())
	}

	time.Sleep(20 * time.Millisecond)

	// three successes in half-open close the circuit
	for i := 0; i < 3; i++ {
		if err := cb.Call(func() error { return nil }); err != nil {
			t.Fatalf("half-open call %d: %v", i, err)
		}
	}
	if cb.GetState() != StateClosed {
		t.Errorf("state = %q, want closed after recovery", cb.GetState())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("inventory", 1, 10*time.Millisecond)

	if err := cb.Call(func() error { return errors.New("down") }); err == nil {
		t.Fatal("expected failure")
	}
	time.Sleep(20 * time.Millisecond)

	if err := cb.Call(func() error { return errors.New("still down") }); err == nil {
		t.Fatal("expected failure")
	}
	if cb.GetState() != StateOpen {
		t.Errorf("state = %q, want reopened", cb.GetState())
	}
}

func TestDetermineServiceFromPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/api/items", "inventory"},
		{"/api/items/42", "inventory"},
		{"/api/stock/adjust", "inventory"},
		{"/api/movements", "inventory"},
		{"/api/requests/7/approve", "inventory"},
		{"/api/workorders/9", "workorder"},
		{"/health", ""},
	}
	for _, c := range cases {
		if got := determineServiceFromPath(c.path); got != c.want {
			t.Errorf("determineServiceFromPath(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}
