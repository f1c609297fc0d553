package core

import "sync"

// Cell is an observable value cell with a single owner.
// The owner calls Set; readers call Get for an immediate snapshot or Watch
// for change notifications. Publishing never blocks: each watcher channel
// holds the latest value only, older unread values are dropped.
type Cell[T any] struct {
	mu       sync.RWMutex
	value    T
	watchers []chan T
}

// NewCell creates a cell holding the given initial value.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set stores a new value and notifies all watchers.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	watchers := c.watchers
	c.mu.Unlock()

	for _, w := range watchers {
		select {
		case w <- v:
		default:
			// Watcher lags behind, replace the stale value
			select {
			case <-w:
			default:
			}
			select {
			case w <- v:
			default:
			}
		}
	}
}

// Watch returns a channel that receives the value after each Set.
// The channel conflates: a slow reader sees the latest value, not every
// intermediate one.
func (c *Cell[T]) Watch() <-chan T {
	ch := make(chan T, 1)
	c.mu.Lock()
	c.watchers = append(c.watchers, ch)
	c.mu.Unlock()
	return ch
}
