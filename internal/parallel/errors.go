// Package parallel holds small concurrency primitives used when several
// searches run side by side.
package parallel

import "sync"

// ErrorCollector records the first non-nil error reported by any of a set of
// concurrent goroutines. Later errors are dropped. The zero value is ready
// to use.
type ErrorCollector struct {
	once sync.Once
	err  error
	mu   sync.Mutex
}

// SetError records err if it is the first non-nil error seen. Nil errors are
// ignored and do not consume the slot.
func (c *ErrorCollector) SetError(err error) {
	if err == nil {
		return
	}
	c.once.Do(func() {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
	})
}

// Err returns the first recorded error, or nil.
func (c *ErrorCollector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
