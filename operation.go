package pstack

import (
	"encoding/json"
	"fmt"
)

// OpKind identifies the mutation an Operation performs.
type OpKind string

const (
	OpPush OpKind = "push"
	OpPop  OpKind = "pop"
)

// Operation is one logged stack mutation: the transition from one version to
// the next. Value is only meaningful for OpPush entries. The tagged form
// keeps the log inspectable and serializable instead of hiding mutations
// behind closures.
type Operation[T any] struct {
	Kind  OpKind `json:"kind"`
	Value T      `json:"value,omitempty"`
}

func pushOp[T any](value T) Operation[T] {
	return Operation[T]{Kind: OpPush, Value: value}
}

func popOp[T any]() Operation[T] {
	return Operation[T]{Kind: OpPop}
}

// apply returns the content after the operation. The input slice may be
// reused as backing storage; callers sharing content must pass a private
// copy.
func (op Operation[T]) apply(content []T) ([]T, error) {
	switch op.Kind {
	case OpPush:
		return append(content, op.Value), nil
	case OpPop:
		if len(content) == 0 {
			return nil, ErrEmptyStack
		}
		return content[:len(content)-1], nil
	default:
		return nil, fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

// Inverse returns the operation that undoes op. Inverting an OpPop requires
// the value it removed, captured at the moment the pop was recorded.
func (op Operation[T]) Inverse(removed T) Operation[T] {
	if op.Kind == OpPush {
		return popOp[T]()
	}
	return pushOp(removed)
}

// LogToJSON serialises an operation log for storage or transport helpers.
func LogToJSON[T any](ops []Operation[T]) ([]byte, error) {
	return json.Marshal(ops)
}

// LogFromJSON deserialises a payload previously generated via LogToJSON.
func LogFromJSON[T any](payload []byte) ([]Operation[T], error) {
	var ops []Operation[T]
	if err := json.Unmarshal(payload, &ops); err != nil {
		return nil, err
	}
	return ops, nil
}

// replayOps rebuilds content by applying ops[0:upto) in order to the empty
// state. A log recorded through the public API cannot fail here; failures
// surface as ErrCorruptLog for logs supplied from the outside.
func replayOps[T any](ops []Operation[T], upto int) ([]T, error) {
	var content []T
	for i := 0; i < upto; i++ {
		next, err := ops[i].apply(content)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrCorruptLog, i, err)
		}
		content = next
	}
	return content, nil
}

func cloneOps[T any](ops []Operation[T]) []Operation[T] {
	if len(ops) == 0 {
		return nil
	}
	out := make([]Operation[T], len(ops))
	copy(out, ops)
	return out
}
