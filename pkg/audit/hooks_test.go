package audit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		ID:       " abc ",
		Verb:     " push ",
		Design:   " reversible ",
		Version:  3,
		Value:    7,
		Channel:  " pstack ",
		Metadata: meta,
	}

	got := NormalizeEvent(evt)

	if got.ID != "abc" || got.Verb != "push" || got.Design != "reversible" || got.Channel != "pstack" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	if got.Metadata["k"] != "v" {
		t.Fatalf("expected metadata value preserved: %+v", got.Metadata)
	}
	got.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
}

func TestHooksNotifyShortCircuitsMissingRequired(t *testing.T) {
	hooks := Hooks{&CaptureHook{}}
	err := hooks.Notify(context.Background(), Event{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	capture := hooks[0].(*CaptureHook)
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events))
	}
}

func TestHooksNotifyFansOutAndJoinsErrors(t *testing.T) {
	failure := errors.New("sink offline")
	good := &CaptureHook{}
	bad := &CaptureHook{Err: failure}

	hooks := Hooks{good, nil, bad}
	err := hooks.Notify(context.Background(), Event{Verb: VerbPush, Design: "snapshot", Version: 1})
	if !errors.Is(err, failure) {
		t.Fatalf("expected joined failure, got %v", err)
	}
	if len(good.Events) != 1 || len(bad.Events) != 1 {
		t.Fatalf("expected both hooks notified: %d and %d", len(good.Events), len(bad.Events))
	}
	if good.Events[0].OccurredAt.After(time.Now()) {
		t.Fatalf("normalized timestamp in the future")
	}
}

func TestEmitterAssignsIDAndChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true})

	if err := emitter.Emit(context.Background(), Event{Verb: VerbPop, Design: "log", Version: 2}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected one event, got %d", len(capture.Events))
	}
	event := capture.Events[0]
	if event.ID == "" {
		t.Fatalf("expected generated event id")
	}
	if event.Channel != "pstack" {
		t.Fatalf("expected default channel, got %q", event.Channel)
	}
}

func TestEmitterDisabled(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if emitter.Enabled() {
		t.Fatalf("emitter should be disabled")
	}
	if err := emitter.Emit(context.Background(), Event{Verb: VerbPush, Design: "log"}); err != nil {
		t.Fatalf("emit on disabled emitter: %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("disabled emitter must not notify, got %d events", len(capture.Events))
	}

	var nilEmitter *Emitter
	if nilEmitter.Enabled() {
		t.Fatalf("nil emitter should report disabled")
	}
}
