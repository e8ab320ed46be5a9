package pstack

import "sync"

// Guarded serializes access to a history behind a single lock. The
// reversible design mutates its cursor on every read, so shared instances
// need exclusive access for reads as well as mutations; the wrapper applies
// the same discipline to any History implementation.
type Guarded[T any] struct {
	mu      sync.Mutex
	history History[T]
}

// Guard wraps history for concurrent use.
func Guard[T any](history History[T]) *Guarded[T] {
	return &Guarded[T]{history: history}
}

func (g *Guarded[T]) Push(value T) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.history.Push(value)
}

func (g *Guarded[T]) Pop() (T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.history.Pop()
}

func (g *Guarded[T]) Version() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.history.Version()
}

func (g *Guarded[T]) ReadVersion(version int) ([]T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.history.ReadVersion(version)
}

func (g *Guarded[T]) Read(version, index int) (T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.history.Read(version, index)
}
