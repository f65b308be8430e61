package future

import (
	"context"
	"sync"
)

// Value carried by a settled completion
type Value interface{}

// A Completion is a one-shot settlement primitive: the first call to
// Complete or Fail wins and every later signal is ignored. It exists so
// that a unit of work with several ways to finish (an explicit callback,
// a returned error, a recovered panic) resolves to exactly one outcome.
type Completion struct {
	done chan struct{}
	once sync.Once
	val  Value
	err  error
}

// NewCompletion creates an unsettled completion
func NewCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Complete settles the completion with a value.
// It reports whether this call was the one that settled it.
func (c *Completion) Complete(v Value) bool {
	settled := false
	c.once.Do(func() {
		c.val = v
		settled = true
		close(c.done)
	})
	return settled
}

// Fail settles the completion with an error.
// It reports whether this call was the one that settled it.
func (c *Completion) Fail(err error) bool {
	settled := false
	c.once.Do(func() {
		c.err = err
		settled = true
		close(c.done)
	})
	return settled
}

// Done is closed once the completion has settled
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Settled reports whether a signal has been recorded yet
func (c *Completion) Settled() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the completion settles or the context is done,
// whichever comes first
func (c *Completion) Wait(ctx context.Context) (Value, error) {
	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
