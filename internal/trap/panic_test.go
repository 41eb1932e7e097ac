package trap

import (
	"testing"

	"github.com/argonlang/argon-rt/value"
)

func TestPushRecoverPop(t *testing.T) {
	var s Stack
	if !s.Empty() {
		t.Fatal("expected a fresh stack to be empty")
	}

	payload := value.NewError(value.KindRuntimeError, "boom", nil)
	s.Push(payload, 1)

	if s.Empty() {
		t.Fatal("expected stack to be non-empty after Push")
	}

	if _, ok := s.Recover(2); ok {
		t.Fatal("expected Recover from a different frame to fail")
	}

	got, ok := s.Recover(1)
	if !ok || got != payload {
		t.Fatalf("expected recover to return the pushed payload, got %v ok=%v", got, ok)
	}

	// A second Recover at the same frame must not succeed twice.
	if _, ok := s.Recover(1); ok {
		t.Fatal("expected a second Recover to fail once already recovered")
	}

	if !s.Pop() {
		t.Fatal("expected Pop to succeed once recovered")
	}
	if !s.Empty() {
		t.Fatal("expected stack empty after Pop")
	}
}

func TestPopRefusesUnrecovered(t *testing.T) {
	var s Stack
	s.Push(value.NewError(value.KindRuntimeError, "boom", nil), 1)
	if s.Pop() {
		t.Fatal("expected Pop to refuse an unrecovered panic")
	}
}

func TestPushMarksPriorNodeAborted(t *testing.T) {
	var s Stack
	s.Push(value.NewError(value.KindRuntimeError, "first", nil), 1)
	s.Push(value.NewError(value.KindRuntimeError, "second", nil), 2)

	node, ok := s.Active()
	if !ok {
		t.Fatal("expected an active panic")
	}
	if node.Aborted {
		t.Fatal("the newest node should not itself be marked aborted")
	}
	if node.prev == nil || !node.prev.Aborted {
		t.Fatal("expected the first panic to be marked aborted once a second one arose")
	}
}
