package loop

import "sync"

// Cell is a snapshot cell: one writer task publishes whole values, any task
// reads the latest one. Readers never observe a half-written value. Values
// containing slices must be cloned before Store and treated as read-only
// after, so the stored snapshot is never mutated behind a reader.
type Cell[T any] struct {
	mu sync.RWMutex
	v  T
}

func (c *Cell[T]) Store(v T) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *Cell[T]) Load() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// Update applies f to the current value atomically.
func (c *Cell[T]) Update(f func(T) T) {
	c.mu.Lock()
	c.v = f(c.v)
	c.mu.Unlock()
}

// Latest is the single-producer single-consumer hand-off between the
// inference task and the control task. Push replaces any unconsumed value
// (staleness is acceptable, stalling is not); TryPop never blocks.
type Latest[T any] struct {
	mu    sync.Mutex
	v     T
	fresh bool
}

// Push publishes a value, overwriting an unconsumed one.
func (l *Latest[T]) Push(v T) {
	l.mu.Lock()
	l.v = v
	l.fresh = true
	l.mu.Unlock()
}

// TryPop consumes the pending value if one is present.
func (l *Latest[T]) TryPop() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.fresh {
		var zero T
		return zero, false
	}
	l.fresh = false
	return l.v, true
}
