package pstack

import (
	"errors"
	"testing"
)

func TestReplayLogRebuildsHistory(t *testing.T) {
	original := NewLogStack[int]()
	driveScenario(t, original)

	restored, err := ReplayLog(original.Log())
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if restored.Version() != original.Version() {
		t.Fatalf("restored version %d, want %d", restored.Version(), original.Version())
	}
	for v, want := range scenarioContents {
		assertContents(t, restored, v, want)
	}
}

func TestReplayLogRejectsCorruptLog(t *testing.T) {
	ops := []Operation[int]{popOp[int]()}
	if _, err := ReplayLog(ops); !errors.Is(err, ErrCorruptLog) {
		t.Fatalf("expected ErrCorruptLog, got %v", err)
	}
}

func TestReplayReversibleRecomputesInverses(t *testing.T) {
	original := NewReversibleStack[int]()
	driveScenario(t, original)

	restored, err := ReplayReversible(original.Log())
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if restored.CursorVersion() != 0 {
		t.Fatalf("restored cursor at %d, want 0", restored.CursorVersion())
	}

	// Descending reads exercise the recomputed inverses immediately: the
	// cursor first walks to the top, then back down through every pop's
	// captured value.
	for v := restored.Version(); v >= 0; v-- {
		assertContents(t, restored, v, scenarioContents[v])
	}
}

func TestReplayReversibleRejectsCorruptLog(t *testing.T) {
	ops := []Operation[int]{pushOp(1), popOp[int](), popOp[int]()}
	if _, err := ReplayReversible(ops); !errors.Is(err, ErrCorruptLog) {
		t.Fatalf("expected ErrCorruptLog, got %v", err)
	}

	if _, err := ReplayReversible([]Operation[int]{{Kind: "swap"}}); !errors.Is(err, ErrCorruptLog) {
		t.Fatalf("expected ErrCorruptLog for unknown kind, got %v", err)
	}
}

func TestReplayRoundTripThroughJSON(t *testing.T) {
	original := NewReversibleStack[string]()
	original.Push("a")
	original.Push("b")
	if _, err := original.Pop(); err != nil {
		t.Fatalf("pop: %v", err)
	}
	original.Push("c")

	payload, err := LogToJSON(original.Log())
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	ops, err := LogFromJSON[string](payload)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	restored, err := ReplayReversible(ops)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	content, err := restored.ReadVersion(restored.Version())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(content) != 2 || content[0] != "a" || content[1] != "c" {
		t.Fatalf("restored latest content %v", content)
	}
}
