package memlog

import (
	"context"
	"testing"

	"github.com/goliatone/go-pstack/pkg/audit"
	"github.com/google/uuid"
)

func TestHookStoresRecords(t *testing.T) {
	hook := New()
	emitter := audit.NewEmitter(audit.Hooks{hook}, audit.Config{Enabled: true, Channel: "history"})

	if err := emitter.Emit(context.Background(), audit.Event{
		Verb:    audit.VerbPush,
		Design:  "reversible",
		Version: 1,
		Value:   42,
	}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	records := hook.Records()
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	record := records[0]
	if record.ID == uuid.Nil {
		t.Fatalf("expected a parsed id")
	}
	if record.Verb != audit.VerbPush || record.Design != "reversible" || record.Version != 1 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Value != 42 {
		t.Fatalf("unexpected value: %v", record.Value)
	}
	if record.Channel != "history" {
		t.Fatalf("unexpected channel: %q", record.Channel)
	}
}

func TestHookRejectsMalformedID(t *testing.T) {
	hook := New()
	err := hook.Notify(context.Background(), audit.Event{
		ID:     "not-a-uuid",
		Verb:   audit.VerbPop,
		Design: "log",
	})
	if err == nil {
		t.Fatalf("expected error for malformed id")
	}
	if hook.Len() != 0 {
		t.Fatalf("rejected event must not be stored")
	}
}
