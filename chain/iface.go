package chain

import "context"

// Data is the running context: the mutable key-value mapping threaded
// through every step of a chain. It is owned by the executor for the
// duration of a run; steps may mutate it in place or hand a replacement
// to their continuation, but must not retain it past their own completion.
type Data map[string]interface{}

// Well-known keys of the running context.
const (
	// EventKey holds the invocation event the executor was seeded with
	EventKey = "event"
	// ContextKey holds the opaque invocation context
	ContextKey = "context"
	// StepNameKey records the name of the step currently executing.
	// It is bookkeeping for failure attribution and is stripped from
	// the success envelope together with the seed keys.
	StepNameKey = "__current_step"
)

// AnonymousName is reported for steps without a declared identifier
const AnonymousName = "anonymous function"

// Next is the continuation a step invokes to signal its completion.
// A non-nil err short-circuits the chain. A non-nil update replaces the
// running context for subsequent steps; a nil update carries the running
// context forward unchanged, so steps that mutate in place call
// next(nil, nil).
type Next func(err error, update Data)

// Handler is a unit of middleware work. Completion is signalled either
// through the continuation or by returning a non-nil error, whichever
// happens first. Returning nil signals nothing: the executor keeps
// waiting for the continuation, so a handler doing asynchronous work can
// return immediately and call next later.
type Handler func(ctx context.Context, data Data, next Next) error

// A Step encapsulates a named unit of work
type Step interface {
	Name() string
	Run(ctx context.Context, data Data, next Next) error
}

// Predicate for branching execution left or right
type Predicate func(Data) bool
