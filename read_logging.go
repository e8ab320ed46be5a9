package pstack

import "time"

// ReadLogEvent describes one ReadVersion call for observability. From is the
// version the read started from (the previous cursor position for the
// reversible design, 0 for log replay, the target itself for snapshot
// lookups) and Steps counts the log entries applied to reach the target.
type ReadLogEvent struct {
	Design   string
	Version  int
	From     int
	Steps    int
	CacheHit bool
	Duration time.Duration
	Err      error
}

// ReadLogger records read events.
type ReadLogger interface {
	LogRead(ReadLogEvent)
}

// ReadLoggerFunc adapts a function to ReadLogger.
type ReadLoggerFunc func(ReadLogEvent)

// LogRead implements ReadLogger.
func (f ReadLoggerFunc) LogRead(event ReadLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopReadLogger struct{}

func (noopReadLogger) LogRead(ReadLogEvent) {}
