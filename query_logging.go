package pstack

import "time"

// QueryLogEvent describes a query evaluation attempt for logging.
type QueryLogEvent struct {
	Engine   string
	Expr     string
	Version  int
	Duration time.Duration
	Err      error
}

// QueryLogger records query events.
type QueryLogger interface {
	LogQuery(QueryLogEvent)
}

// QueryLoggerFunc adapts a function to QueryLogger.
type QueryLoggerFunc func(QueryLogEvent)

// LogQuery implements QueryLogger.
func (f QueryLoggerFunc) LogQuery(event QueryLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopQueryLogger struct{}

func (noopQueryLogger) LogQuery(QueryLogEvent) {}

// WithQueryLogger attaches a query logger to the Query wrapper.
func WithQueryLogger(logger QueryLogger) QueryOption {
	return func(cfg *queryConfig) {
		if logger == nil {
			cfg.logger = noopQueryLogger{}
			return
		}
		cfg.logger = logger
	}
}
