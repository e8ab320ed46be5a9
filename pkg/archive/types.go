package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pstack "github.com/goliatone/go-pstack"
	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates no record exists for the requested Ref.
	ErrNotFound = errors.New("archive: history not found")
	// ErrETagMismatch indicates the record changed since it was read.
	ErrETagMismatch = errors.New("archive: etag mismatch")
)

// Ref identifies one archived history.
type Ref struct {
	Name string
}

// Identifier returns the canonical storage key for the reference.
func (r Ref) Identifier() (string, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return "", fmt.Errorf("archive: name is required")
	}
	return fmt.Sprintf("history/%s", name), nil
}

// Record is a serialized history: its operation log at save time.
type Record[T any] struct {
	Ops []pstack.Operation[T]
}

// Meta is storage-owned metadata used for trace/audit and concurrency
// control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one record for a single history reference. Save must
// honor Meta.ETag as a compare-and-swap token when it is non-empty.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (record Record[T], meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, record Record[T], meta Meta) (Meta, error)
}

// Archiver snapshots operation logs into a Store and restores histories
// from stored records.
type Archiver[T any] struct {
	Store Store[T]
}

// Save archives ops under name and returns the stored metadata. When
// expectedETag is non-empty the store rejects the write if the archived
// record changed since it was read.
func (a Archiver[T]) Save(ctx context.Context, name string, ops []pstack.Operation[T], expectedETag string) (Meta, error) {
	if a.Store == nil {
		return Meta{}, fmt.Errorf("archive: store is required")
	}
	record := Record[T]{Ops: append([]pstack.Operation[T](nil), ops...)}
	meta := Meta{
		SnapshotID: uuid.NewString(),
		ETag:       expectedETag,
		UpdatedAt:  time.Now().UTC(),
	}
	stored, err := a.Store.Save(ctx, Ref{Name: name}, record, meta)
	if err != nil {
		return Meta{}, fmt.Errorf("archive: save %q: %w", name, err)
	}
	return stored, nil
}

// Restore loads the record stored under name and rebuilds a reversible
// history from it.
func (a Archiver[T]) Restore(ctx context.Context, name string, opts ...pstack.Option) (*pstack.ReversibleStack[T], Meta, error) {
	if a.Store == nil {
		return nil, Meta{}, fmt.Errorf("archive: store is required")
	}
	record, meta, ok, err := a.Store.Load(ctx, Ref{Name: name})
	if err != nil {
		return nil, Meta{}, fmt.Errorf("archive: load %q: %w", name, err)
	}
	if !ok {
		return nil, Meta{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	stack, err := pstack.ReplayReversible(record.Ops, opts...)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("archive: restore %q: %w", name, err)
	}
	return stack, meta, nil
}
