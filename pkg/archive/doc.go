// Package archive defines persistence-facing contracts for saving and
// restoring recorded operation logs, plus a small archiver that orchestrates
// store access and delegates history reconstruction to the core go-pstack
// replay primitives.
//
// Responsibilities:
//   - Store[T] only loads/saves a single Record for a single Ref.
//   - Archiver[T] snapshots a live log into the store and rebuilds a
//     reversible history from a stored record.
//   - The core pstack package remains persistence-agnostic; all persistence
//     logic stays behind Store implementations supplied by consumers.
//
// Data flow:
//
//	History.Log() -> Archiver.Save -> Store
//	Store -> Archiver.Restore -> pstack.ReplayReversible(...)
//
// Concurrency control:
//
//	Meta.ETag changes on every save. Passing the previously read ETag to
//	Archiver.Save turns the write into a compare-and-swap; a stale tag is
//	rejected with ErrETagMismatch.
package archive
