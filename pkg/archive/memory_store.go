package archive

import (
	"context"
	"fmt"
	"sync"

	pstack "github.com/goliatone/go-pstack"
)

// MemoryStore is a minimal in-memory Store implementation intended for tests
// and examples. It uses Ref.Identifier() as its deterministic key and makes
// no persistence assumptions beyond that.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records map[string]memoryRecord[T]
}

type memoryRecord[T any] struct {
	record Record[T]
	meta   Meta
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{records: map[string]memoryRecord[T]{}}
}

func (s *MemoryStore[T]) Load(_ context.Context, ref Ref) (Record[T], Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Record[T]{}, Meta{}, false, err
	}

	s.mu.RLock()
	entry, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return Record[T]{}, Meta{}, false, nil
	}
	return cloneRecord(entry.record), cloneMeta(entry.meta), true, nil
}

// Save stores the record, treating a non-empty meta.ETag as a
// compare-and-swap token against the currently stored tag. The returned
// metadata carries the new tag.
func (s *MemoryStore[T]) Save(_ context.Context, ref Ref, record Record[T], meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.records[key]; ok && meta.ETag != "" && meta.ETag != current.meta.ETag {
		return Meta{}, fmt.Errorf("%w: have %q, want %q", ErrETagMismatch, meta.ETag, current.meta.ETag)
	}
	meta.ETag = meta.SnapshotID
	s.records[key] = memoryRecord[T]{record: cloneRecord(record), meta: cloneMeta(meta)}
	return cloneMeta(meta), nil
}

func cloneRecord[T any](record Record[T]) Record[T] {
	if len(record.Ops) == 0 {
		return Record[T]{}
	}
	return Record[T]{Ops: append([]pstack.Operation[T](nil), record.Ops...)}
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
