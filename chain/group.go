package chain

import (
	"context"
	"sync"
)

// Group bundles steps into a single step. The children execute
// sequentially with the updated running context of each passed into the
// next, and the group signals exactly once: success with the final
// running context, or the first failure of a child with that child's
// attribution intact.
func Group(name string, steps ...Step) Step {
	return &groupStep{StepName: StepName(name), steps: steps}
}

type groupStep struct {
	StepName
	steps []Step
	m     sync.Mutex
}

func (s *groupStep) Run(ctx context.Context, data Data, next Next) error {
	s.m.Lock()
	defer s.m.Unlock()

	for _, step := range s.steps {
		select {
		case <-ctx.Done():
			next(StepErr(ctx.Err()), nil)
			return nil
		default:
		}

		data[StepNameKey] = step.Name()
		PublishRunEvent(ctx, step.Name(), StateProcessing, nil)
		update, failure := runStep(ctx, step, data)
		if failure != nil {
			if IsCanceled(failure) {
				PublishRunEvent(ctx, step.Name(), StateCanceled, nil)
			} else {
				PublishRunEvent(ctx, step.Name(), StateFailed, failure)
			}
			next(failure, nil)
			return nil
		}
		data = update
		PublishRunEvent(ctx, step.Name(), StateSuccess, nil)
	}
	next(nil, data)
	return nil
}
