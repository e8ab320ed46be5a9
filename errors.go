package pstack

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyStack indicates a pop was attempted while the latest content
	// is empty.
	ErrEmptyStack = errors.New("pstack: pop on empty stack")
	// ErrVersionOutOfRange indicates a version argument outside [0, latest].
	ErrVersionOutOfRange = errors.New("pstack: version out of range")
	// ErrIndexOutOfRange indicates an index argument outside the bounds of
	// the targeted content.
	ErrIndexOutOfRange = errors.New("pstack: index out of range")
	// ErrCorruptLog indicates a recorded operation log that pops below the
	// empty state or carries an unknown operation kind.
	ErrCorruptLog = errors.New("pstack: corrupt operation log")
)

// HistoryError carries design and position metadata alongside the
// originating error.
type HistoryError struct {
	Design  string
	Op      string
	Version int
	Latest  int
	Err     error
}

func (e *HistoryError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("pstack: %s %s version=%d latest=%d: %v", e.Design, e.Op, e.Version, e.Latest, e.Err)
}

func (e *HistoryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapHistoryError(design, op string, version, latest int, err error) error {
	if err == nil {
		return nil
	}

	var histErr *HistoryError
	if errors.As(err, &histErr) {
		return err
	}

	return &HistoryError{
		Design:  design,
		Op:      op,
		Version: version,
		Latest:  latest,
		Err:     err,
	}
}
