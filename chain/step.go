package chain

import "context"

// Zero is the zero value for a step and doesn't take any actions
var Zero Step

func init() {
	// eagerly create this one
	Zero = Named("<nop>", nil)
}

// StepName represents a step name
type StepName string

// Name method to make it easier to build named steps
func (s StepName) Name() string {
	return string(s)
}

// Named builds a step from a declared identifier and a handler.
// A nil handler carries the running context forward unchanged.
func Named(name string, handler Handler) Step {
	return &simpleStep{StepName: StepName(name), handler: handler}
}

// Anonymous builds a step without a declared identifier.
// Failures inside it are attributed to the literal "anonymous function".
func Anonymous(handler Handler) Step {
	return &simpleStep{StepName: AnonymousName, handler: handler}
}

type simpleStep struct {
	StepName
	handler Handler
}

func (s *simpleStep) Run(ctx context.Context, data Data, next Next) error {
	if s.handler == nil {
		next(nil, nil)
		return nil
	}
	return s.handler(ctx, data, next)
}
