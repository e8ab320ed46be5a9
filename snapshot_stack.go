package pstack

import (
	"time"

	"github.com/goliatone/go-pstack/pkg/audit"
)

// SnapshotStack is the naive design: every mutation stores a full copy of
// the resulting content. Reads are O(1) random access at the price of O(n)
// copying per mutation and memory proportional to the total elements across
// all versions.
type SnapshotStack[T any] struct {
	snapshots [][]T
	cfg       config
}

// NewSnapshotStack constructs an empty snapshot history. Version 0 is the
// empty stack.
func NewSnapshotStack[T any](opts ...Option) *SnapshotStack[T] {
	return &SnapshotStack[T]{
		snapshots: [][]T{nil},
		cfg:       applyHistoryOptions(opts),
	}
}

// Version returns the latest version number.
func (s *SnapshotStack[T]) Version() int {
	return len(s.snapshots) - 1
}

// Push copies the latest content, appends value, and stores the copy as a
// new version.
func (s *SnapshotStack[T]) Push(value T) {
	next := append(cloneContent(s.latest()), value)
	s.snapshots = append(s.snapshots, next)
	s.cfg.emitMutation(DesignSnapshot, audit.VerbPush, s.Version(), value)
}

// Pop copies the latest content without its top element, stores the copy as
// a new version, and returns the removed value.
func (s *SnapshotStack[T]) Pop() (T, error) {
	var zero T
	latest := s.latest()
	if len(latest) == 0 {
		return zero, wrapHistoryError(DesignSnapshot, "pop", s.Version(), s.Version(), ErrEmptyStack)
	}
	value := latest[len(latest)-1]
	s.snapshots = append(s.snapshots, cloneContent(latest[:len(latest)-1]))
	s.cfg.emitMutation(DesignSnapshot, audit.VerbPop, s.Version(), value)
	return value, nil
}

// ReadVersion returns a copy of the content stored for version.
func (s *SnapshotStack[T]) ReadVersion(version int) ([]T, error) {
	start := time.Now()
	if version < 0 || version > s.Version() {
		err := wrapHistoryError(DesignSnapshot, "read_version", version, s.Version(), ErrVersionOutOfRange)
		s.logRead(version, 0, time.Since(start), err)
		return nil, err
	}
	content := cloneContent(s.snapshots[version])
	s.logRead(version, 0, time.Since(start), nil)
	return content, nil
}

// Read returns the element at index within the content at version.
func (s *SnapshotStack[T]) Read(version, index int) (T, error) {
	content, err := s.ReadVersion(version)
	if err != nil {
		var zero T
		return zero, err
	}
	return readAt(DesignSnapshot, s.Version(), content, version, index)
}

func (s *SnapshotStack[T]) latest() []T {
	return s.snapshots[len(s.snapshots)-1]
}

func (s *SnapshotStack[T]) logRead(version, steps int, duration time.Duration, err error) {
	s.cfg.logger().LogRead(ReadLogEvent{
		Design:   DesignSnapshot,
		Version:  version,
		From:     version,
		Steps:    steps,
		Duration: duration,
		Err:      err,
	})
}
