package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/jperocho/salh/chain/internal"
	"github.com/jperocho/salh/eventbus"
)

var stateKeyNames map[State]string
var namedStateKeys map[string]State

func init() {
	stateKeyNames = map[State]string{
		StateUnknown:    "unknown",
		StateWaiting:    "waiting",
		StateProcessing: "processing",
		StateSkipped:    "skipped",
		StateSuccess:    "completed",
		StateFailed:     "failed",
		StateCanceled:   "canceled",
	}

	namedStateKeys = make(map[string]State, len(stateKeyNames))
	for k, v := range stateKeyNames {
		namedStateKeys[v] = k
	}
}

// StateFromString creates a step state from a string
func StateFromString(name string) (State, error) {
	if v, ok := namedStateKeys[name]; ok {
		return v, nil
	}
	return StateUnknown, fmt.Errorf("invalid step state %q", name)
}

// State represents the lifecycle state of a step
type State uint8

const (
	// StateUnknown indicates the step is unknown
	StateUnknown State = iota
	// StateWaiting indicates the step is known but hasn't started yet
	StateWaiting
	// StateProcessing indicates the step is currently executing
	StateProcessing
	// StateSkipped indicates the step has been skipped
	StateSkipped
	// StateSuccess indicates the step was executed successfully
	StateSuccess
	// StateFailed indicates the step has failed
	StateFailed
	// StateCanceled indicates the step was canceled
	StateCanceled
)

func (e State) String() string {
	return stateKeyNames[e]
}

// MarshalText renders this step state to text
func (e State) MarshalText() (text []byte, err error) {
	return []byte(stateKeyNames[e]), nil
}

// UnmarshalText parses this step state from text
func (e *State) UnmarshalText(text []byte) error {
	st, err := StateFromString(string(text))
	if err != nil {
		return err
	}
	*e = st
	return nil
}

const (
	// TopicLifecycle is the event topic for step lifecycle events
	TopicLifecycle = "lifecycle"
	// TopicRetry is the event topic for retries
	TopicRetry = "retry"

	// TopicApplication is the event topic for application specific events
	TopicApplication = "application"
)

// RetryEvent is emitted when a retry is scheduled
type RetryEvent struct {
	Name   string
	Reason error
	Next   time.Duration
}

// A LifecycleEvent is emitted for state transitions of a step
type LifecycleEvent struct {
	State  State
	Name   string
	Reason error
}

// PublishRunEvent for state transitions during a chain run
func PublishRunEvent(ctx context.Context, stepName string, state State, reason error) {
	internal.PublishEvent(ctx, TopicLifecycle, LifecycleEvent{
		State:  state,
		Name:   stepName,
		Reason: reason,
	})
}

// PublishRetryEvent when a step is about to be retried
func PublishRetryEvent(ctx context.Context, stepName string, reason error, next time.Duration) {
	internal.PublishEvent(ctx, TopicRetry, RetryEvent{
		Name:   stepName,
		Reason: reason,
		Next:   next,
	})
}

// PublishEvent publishes application specific events
func PublishEvent(ctx context.Context, args interface{}) {
	internal.PublishEvent(ctx, TopicApplication, args)
}

// IsLifecycleEvent returns true if this is a lifecycle event in the given state
func IsLifecycleEvent(evt eventbus.Event, state State) bool {
	return LifecycleEventFilter(state)(evt)
}

// LifecycleEventFilter is an event filter that matches specific lifecycle events
func LifecycleEventFilter(state State) eventbus.EventPredicate {
	return func(evt eventbus.Event) bool {
		if evt.Name != TopicLifecycle {
			return false
		}
		lce, ok := evt.Args.(LifecycleEvent)
		return ok && lce.State == state
	}
}

// RetryEventFilter an event handler filter that only selects retry events
func RetryEventFilter(evt eventbus.Event) bool {
	if evt.Name != TopicRetry {
		return false
	}
	_, ok := evt.Args.(RetryEvent)
	return ok
}

// IsApplicationEvent returns true when the event is an application event
func IsApplicationEvent(evt eventbus.Event) bool {
	return evt.Name == TopicApplication
}
