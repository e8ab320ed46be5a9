package pstack

import (
	"time"

	"github.com/goliatone/go-pstack/pkg/audit"
)

// LogStack stores only the operation log. Mutations append a single entry;
// reads replay the log from the empty state, costing O(version) per read
// with no caching between calls.
type LogStack[T any] struct {
	ops []Operation[T]
	cfg config
}

// NewLogStack constructs an empty log-replay history.
func NewLogStack[T any](opts ...Option) *LogStack[T] {
	return &LogStack[T]{cfg: applyHistoryOptions(opts)}
}

// Version returns the latest version number, which equals the log length.
func (s *LogStack[T]) Version() int {
	return len(s.ops)
}

// Push appends a push entry to the log.
func (s *LogStack[T]) Push(value T) {
	s.ops = append(s.ops, pushOp(value))
	s.cfg.emitMutation(DesignLog, audit.VerbPush, s.Version(), value)
}

// Pop appends a pop entry to the log and returns the removed value. The
// design keeps no materialized content, so the latest version is re-derived
// by replay both to reject pops on empty content before anything is
// recorded and to know the value being removed.
func (s *LogStack[T]) Pop() (T, error) {
	var zero T
	content, err := replayOps(s.ops, len(s.ops))
	if err != nil {
		return zero, wrapHistoryError(DesignLog, "pop", s.Version(), s.Version(), err)
	}
	if len(content) == 0 {
		return zero, wrapHistoryError(DesignLog, "pop", s.Version(), s.Version(), ErrEmptyStack)
	}
	value := content[len(content)-1]
	s.ops = append(s.ops, popOp[T]())
	s.cfg.emitMutation(DesignLog, audit.VerbPop, s.Version(), value)
	return value, nil
}

// ReadVersion replays the log from the empty state up to version.
func (s *LogStack[T]) ReadVersion(version int) ([]T, error) {
	start := time.Now()
	if version < 0 || version > s.Version() {
		err := wrapHistoryError(DesignLog, "read_version", version, s.Version(), ErrVersionOutOfRange)
		s.logRead(version, 0, time.Since(start), err)
		return nil, err
	}
	content, err := replayOps(s.ops, version)
	if err != nil {
		err = wrapHistoryError(DesignLog, "read_version", version, s.Version(), err)
		s.logRead(version, version, time.Since(start), err)
		return nil, err
	}
	s.logRead(version, version, time.Since(start), nil)
	return content, nil
}

// Read returns the element at index within the content at version.
func (s *LogStack[T]) Read(version, index int) (T, error) {
	content, err := s.ReadVersion(version)
	if err != nil {
		var zero T
		return zero, err
	}
	return readAt(DesignLog, s.Version(), content, version, index)
}

// Log returns a defensive copy of the recorded operations.
func (s *LogStack[T]) Log() []Operation[T] {
	return cloneOps(s.ops)
}

func (s *LogStack[T]) logRead(version, steps int, duration time.Duration, err error) {
	s.cfg.logger().LogRead(ReadLogEvent{
		Design:   DesignLog,
		Version:  version,
		From:     0,
		Steps:    steps,
		Duration: duration,
		Err:      err,
	})
}
