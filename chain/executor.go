package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/jperocho/salh"
	"github.com/jperocho/salh/chain/internal"
	"github.com/jperocho/salh/eventbus"
	"github.com/jperocho/salh/future"
)

// Option represents a configuration option for the chain executor
type Option func(*Executor)

// PublishTo adds an existing eventbus to the executor. Lifecycle events
// for every step are published to it.
func PublishTo(bus eventbus.EventBus) Option {
	return func(e *Executor) { e.bus = bus }
}

// LogWith sets the logger the executor uses and that steps can retrieve
// from their context with salh.ContextLogger
func LogWith(log salh.Logger) Option {
	return func(e *Executor) { e.log = log }
}

// New creates a chain executor for a single invocation. The event and
// invocation context are opaque payloads: they are not validated and are
// only used to seed the running context under EventKey and ContextKey.
func New(event, invocationContext interface{}, opts ...Option) *Executor {
	exec := &Executor{
		data: Data{EventKey: event, ContextKey: invocationContext},
		log:  salh.NopLogger,
	}
	for _, opt := range opts {
		opt(exec)
	}
	if exec.bus == nil {
		exec.bus = eventbus.NopBus
	}
	return exec
}

// Executor drives the steps of a chain one at a time, threading the
// running context through them. A single executor owns its running
// context exclusively; it runs one chain at a time.
type Executor struct {
	data Data
	bus  eventbus.EventBus
	log  salh.Logger
	rw   sync.Mutex
}

// Run executes the steps strictly in order. Each step suspends the chain
// until its completion signal arrives; on the first captured failure the
// remaining steps are never invoked and the failure is returned as a
// *Error, from which the error envelope is available. When every step
// succeeds the success envelope carries the final running context with
// the seed and bookkeeping keys stripped.
//
// Cancellation of ctx is treated as a failure of the step executing at
// that moment; a stalled step that never signals is otherwise waited on
// indefinitely.
func (e *Executor) Run(ctx context.Context, steps ...Step) (*Envelope, error) {
	e.rw.Lock()
	defer e.rw.Unlock()

	ctx = internal.SetPublisher(ctx, e.bus)
	ctx = salh.SetLogger(ctx, e.log)

	for _, step := range steps {
		e.data[StepNameKey] = step.Name()
		PublishRunEvent(ctx, step.Name(), StateProcessing, nil)
		e.log.Debugf("running step %q", step.Name())

		update, failure := runStep(ctx, step, e.data)
		if failure != nil {
			if IsCanceled(failure) {
				PublishRunEvent(ctx, step.Name(), StateCanceled, nil)
			} else {
				PublishRunEvent(ctx, step.Name(), StateFailed, failure)
			}
			e.log.Errorf("step %q failed: %v", step.Name(), failure)
			return nil, failure
		}
		e.data = update
		PublishRunEvent(ctx, step.Name(), StateSuccess, nil)
	}
	return successEnvelope(e.data), nil
}

// runStep invokes a single step and waits for its first completion
// signal. The latch settles exactly once: continuation called, error
// returned, panic recovered or context canceled, whichever fires first.
// Failures without an attributed step name are stamped with this step's
// name before they propagate.
func runStep(ctx context.Context, step Step, data Data) (Data, *Error) {
	latch := future.NewCompletion()
	next := Next(func(err error, update Data) {
		if err != nil {
			latch.Fail(err)
			return
		}
		latch.Complete(update)
	})

	go func() {
		defer func() {
			if r := recover(); r != nil {
				latch.Fail(recovered(r))
			}
		}()
		if err := step.Run(ctx, data, next); err != nil {
			latch.Fail(err)
		}
	}()

	v, err := latch.Wait(ctx)
	if err != nil {
		failure := StepErr(err)
		if failure.Func == "" {
			failure.Func = step.Name()
		}
		return data, failure
	}
	if update, ok := v.(Data); ok && update != nil {
		return update, nil
	}
	return data, nil
}

func recovered(r interface{}) *Error {
	if err, ok := r.(error); ok {
		return StepErr(err)
	}
	return &Error{Message: fmt.Sprint(r)}
}
