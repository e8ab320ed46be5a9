package pstack

import (
	"fmt"
	"time"

	"github.com/goliatone/go-pstack/pkg/audit"
)

type logEntry[T any] struct {
	op      Operation[T]
	inverse Operation[T]
}

// ReversibleStack stores each operation with its exact inverse and keeps a
// cursor: the most recently materialized content and its version. Reads walk
// the cursor one log entry at a time toward the target, forward over the
// operations and backward over their inverses, so temporally local access
// patterns pay far less than a full replay.
//
// The cursor is shared mutable state: ReadVersion moves it as a side effect,
// which makes this design unsafe for concurrent use even by readers. Wrap it
// with Guard when callers share an instance.
type ReversibleStack[T any] struct {
	entries []logEntry[T]
	content []T
	version int
	cfg     config
}

// NewReversibleStack constructs an empty reversible history with the cursor
// at version 0.
func NewReversibleStack[T any](opts ...Option) *ReversibleStack[T] {
	return &ReversibleStack[T]{cfg: applyHistoryOptions(opts)}
}

// Version returns the latest version number, which equals the log length.
func (s *ReversibleStack[T]) Version() int {
	return len(s.entries)
}

// CursorVersion returns the version the cached content currently
// materializes.
func (s *ReversibleStack[T]) CursorVersion() int {
	return s.version
}

// Push appends a (push, pop) entry to the log. The cursor is not touched.
func (s *ReversibleStack[T]) Push(value T) {
	s.entries = append(s.entries, logEntry[T]{op: pushOp(value), inverse: popOp[T]()})
	s.cfg.emitMutation(DesignReversible, audit.VerbPush, s.Version(), value)
}

// Pop appends a (pop, push) entry whose inverse carries the removed value.
// Capturing that value requires materializing the latest version first, so
// the call follows an explicit two-step contract: move the cursor to the
// latest version, then append. The cursor side effect is observable through
// CursorVersion.
func (s *ReversibleStack[T]) Pop() (T, error) {
	var zero T
	if _, err := s.seek(s.Version(), nil); err != nil {
		return zero, wrapHistoryError(DesignReversible, "pop", s.Version(), s.Version(), err)
	}
	if len(s.content) == 0 {
		return zero, wrapHistoryError(DesignReversible, "pop", s.Version(), s.Version(), ErrEmptyStack)
	}
	value := s.content[len(s.content)-1]
	s.entries = append(s.entries, logEntry[T]{op: popOp[T](), inverse: pushOp(value)})
	s.cfg.emitMutation(DesignReversible, audit.VerbPop, s.Version(), value)
	return value, nil
}

// ReadVersion walks the cursor to version and returns a copy of the
// materialized content. Reading the cached version is O(1); any other target
// costs one log entry per step of distance from the previous cursor.
func (s *ReversibleStack[T]) ReadVersion(version int) ([]T, error) {
	content, _, err := s.readVersion(version, false)
	return content, err
}

// ReadVersionWithTrace is ReadVersion plus a record of every step the cursor
// took, for diagnostics and transport.
func (s *ReversibleStack[T]) ReadVersionWithTrace(version int) ([]T, WalkTrace, error) {
	return s.readVersion(version, true)
}

func (s *ReversibleStack[T]) readVersion(version int, traced bool) ([]T, WalkTrace, error) {
	start := time.Now()
	from := s.version
	trace := WalkTrace{Design: DesignReversible, From: from, To: version}
	if version < 0 || version > s.Version() {
		err := wrapHistoryError(DesignReversible, "read_version", version, s.Version(), ErrVersionOutOfRange)
		s.logRead(version, from, 0, false, time.Since(start), err)
		return nil, trace, err
	}

	var tracePtr *WalkTrace
	if traced {
		tracePtr = &trace
	}
	steps, err := s.seek(version, tracePtr)
	if err != nil {
		err = wrapHistoryError(DesignReversible, "read_version", version, s.Version(), err)
		s.logRead(version, from, steps, false, time.Since(start), err)
		return nil, trace, err
	}
	s.logRead(version, from, steps, steps == 0, time.Since(start), nil)
	return cloneContent(s.content), trace, nil
}

// Read returns the element at index within the content at version.
func (s *ReversibleStack[T]) Read(version, index int) (T, error) {
	content, err := s.ReadVersion(version)
	if err != nil {
		var zero T
		return zero, err
	}
	return readAt(DesignReversible, s.Version(), content, version, index)
}

// Log returns a defensive copy of the forward operations in the log.
func (s *ReversibleStack[T]) Log() []Operation[T] {
	if len(s.entries) == 0 {
		return nil
	}
	ops := make([]Operation[T], len(s.entries))
	for i := range s.entries {
		ops[i] = s.entries[i].op
	}
	return ops
}

// seek moves the cursor one log entry at a time until it reaches version,
// which the caller has already validated. It returns the number of entries
// applied.
func (s *ReversibleStack[T]) seek(version int, trace *WalkTrace) (int, error) {
	steps := 0
	for s.version < version {
		next, err := s.entries[s.version].op.apply(s.content)
		if err != nil {
			return steps, fmt.Errorf("%w: forward entry %d: %v", ErrCorruptLog, s.version, err)
		}
		s.content = next
		s.version++
		steps++
		if trace != nil {
			trace.Steps = append(trace.Steps, WalkStep{
				Direction: WalkForward,
				Entry:     s.version - 1,
				Kind:      s.entries[s.version-1].op.Kind,
				Version:   s.version,
			})
		}
	}
	for s.version > version {
		next, err := s.entries[s.version-1].inverse.apply(s.content)
		if err != nil {
			return steps, fmt.Errorf("%w: reverse entry %d: %v", ErrCorruptLog, s.version-1, err)
		}
		s.content = next
		s.version--
		steps++
		if trace != nil {
			trace.Steps = append(trace.Steps, WalkStep{
				Direction: WalkReverse,
				Entry:     s.version,
				Kind:      s.entries[s.version].inverse.Kind,
				Version:   s.version,
			})
		}
	}
	return steps, nil
}

func (s *ReversibleStack[T]) logRead(version, from, steps int, cacheHit bool, duration time.Duration, err error) {
	s.cfg.logger().LogRead(ReadLogEvent{
		Design:   DesignReversible,
		Version:  version,
		From:     from,
		Steps:    steps,
		CacheHit: cacheHit,
		Duration: duration,
		Err:      err,
	})
}
