package pstack

import "fmt"

// ReplayLog rebuilds a log-replay history from a previously recorded
// operation log, validating that no entry pops below the empty state.
func ReplayLog[T any](ops []Operation[T], opts ...Option) (*LogStack[T], error) {
	if _, err := replayOps(ops, len(ops)); err != nil {
		return nil, err
	}
	return &LogStack[T]{ops: cloneOps(ops), cfg: applyHistoryOptions(opts)}, nil
}

// ReplayReversible rebuilds a reversible history from a recorded operation
// log, recomputing each entry's inverse as the log is replayed. The restored
// cursor sits at version 0.
func ReplayReversible[T any](ops []Operation[T], opts ...Option) (*ReversibleStack[T], error) {
	var content []T
	entries := make([]logEntry[T], 0, len(ops))
	for i, op := range ops {
		switch op.Kind {
		case OpPush:
			entries = append(entries, logEntry[T]{op: op, inverse: popOp[T]()})
		case OpPop:
			if len(content) == 0 {
				return nil, fmt.Errorf("%w: entry %d pops empty content", ErrCorruptLog, i)
			}
			entries = append(entries, logEntry[T]{op: op, inverse: pushOp(content[len(content)-1])})
		default:
			return nil, fmt.Errorf("%w: entry %d has unknown kind %q", ErrCorruptLog, i, op.Kind)
		}
		next, err := op.apply(content)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrCorruptLog, i, err)
		}
		content = next
	}
	stack := NewReversibleStack[T](opts...)
	stack.entries = entries
	return stack, nil
}
