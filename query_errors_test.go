package pstack

import (
	"errors"
	"testing"
)

func TestWrapQueryErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapQueryError("expr", "top > missing", 4, base)

	var queryErr *QueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("expected QueryError, got %T", err)
	}
	if queryErr.Engine != "expr" {
		t.Fatalf("expected engine expr, got %q", queryErr.Engine)
	}
	if queryErr.Expr != "top > missing" {
		t.Fatalf("expected expression metadata, got %q", queryErr.Expr)
	}
	if queryErr.Version != 4 {
		t.Fatalf("expected version metadata, got %d", queryErr.Version)
	}
	if !errors.Is(queryErr.Err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
}

func TestWrapQueryErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &QueryError{
		Engine: "expr",
		Err:    base,
	}

	err := wrapQueryError("cel", "rule", 9, existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
}

func TestHistoryErrorMetadata(t *testing.T) {
	err := wrapHistoryError(DesignReversible, "read_version", 9, 6, ErrVersionOutOfRange)

	var histErr *HistoryError
	if !errors.As(err, &histErr) {
		t.Fatalf("expected HistoryError, got %T", err)
	}
	if histErr.Design != DesignReversible || histErr.Op != "read_version" {
		t.Fatalf("unexpected metadata: %+v", histErr)
	}
	if histErr.Version != 9 || histErr.Latest != 6 {
		t.Fatalf("unexpected positions: %+v", histErr)
	}
	if !errors.Is(err, ErrVersionOutOfRange) {
		t.Fatalf("wrapped error should satisfy errors.Is")
	}

	// Rewrapping keeps the original metadata intact.
	again := wrapHistoryError(DesignLog, "pop", 0, 0, err)
	var rewrapped *HistoryError
	if !errors.As(again, &rewrapped) {
		t.Fatalf("expected HistoryError, got %T", again)
	}
	if rewrapped.Design != DesignReversible {
		t.Fatalf("rewrap overwrote metadata: %+v", rewrapped)
	}
}
