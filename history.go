package pstack

import (
	"context"
	"fmt"

	"github.com/goliatone/go-pstack/pkg/audit"
)

// History is the partial-persistence contract shared by all designs: any
// past version can be read, only the latest version can be mutated, and
// every successful mutation creates a new version. Version 0 is always the
// empty stack; the latest version equals the number of mutations applied.
type History[T any] interface {
	// Push records value on top of the latest content as a new version.
	Push(value T)
	// Pop removes the top of the latest content as a new version and
	// returns the removed value. Fails with ErrEmptyStack when the latest
	// content is empty; a failed pop records nothing.
	Pop() (T, error)
	// Version returns the latest version number.
	Version() int
	// ReadVersion returns the content at version, bottom to top. The
	// returned slice is a snapshot, never a live reference.
	ReadVersion(version int) ([]T, error)
	// Read returns the element at index within the content at version.
	Read(version, index int) (T, error)
}

// Design names reported through errors, read events, and audit events.
const (
	DesignSnapshot   = "snapshot"
	DesignLog        = "log"
	DesignReversible = "reversible"
)

// Option configures a history instance.
type Option func(*config)

type config struct {
	readLogger ReadLogger
	emitter    *audit.Emitter
}

func applyHistoryOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithReadLogger attaches a read observer to the history.
func WithReadLogger(logger ReadLogger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.readLogger = noopReadLogger{}
			return
		}
		cfg.readLogger = logger
	}
}

// WithAuditHooks fans successful mutation events out to hooks.
func WithAuditHooks(hooks audit.Hooks) Option {
	emitter := audit.NewEmitter(hooks, audit.Config{Enabled: true})
	return func(cfg *config) {
		cfg.emitter = emitter
	}
}

// WithAuditEmitter installs a pre-configured emitter, letting callers control
// the channel and enablement.
func WithAuditEmitter(emitter *audit.Emitter) Option {
	return func(cfg *config) {
		cfg.emitter = emitter
	}
}

func (c config) logger() ReadLogger {
	if c.readLogger != nil {
		return c.readLogger
	}
	return noopReadLogger{}
}

// emitMutation reports a committed push or pop. The mutation has already
// been recorded; hook failures are the hook's concern and do not surface
// through the mutation call.
func (c config) emitMutation(design, verb string, version int, value any) {
	if !c.emitter.Enabled() {
		return
	}
	_ = c.emitter.Emit(context.Background(), audit.Event{
		Verb:    verb,
		Design:  design,
		Version: version,
		Value:   value,
	})
}

// cloneContent detaches a content snapshot from its backing array.
func cloneContent[T any](content []T) []T {
	if len(content) == 0 {
		return nil
	}
	out := make([]T, len(content))
	copy(out, content)
	return out
}

// readAt indexes into an already materialized content snapshot, reporting
// ErrIndexOutOfRange with position metadata on a miss.
func readAt[T any](design string, latest int, content []T, version, index int) (T, error) {
	var zero T
	if index < 0 || index >= len(content) {
		err := fmt.Errorf("%w: index %d, size %d", ErrIndexOutOfRange, index, len(content))
		return zero, wrapHistoryError(design, "read", version, latest, err)
	}
	return content[index], nil
}
