package chain

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry the step with the specified policy. The chain only ever observes
// the final outcome: intermediate failures are announced as retry events
// and the step signals once. An error marked with Permanent, or a
// canceled context, stops the retries immediately.
func Retry(policy backoff.BackOff, step Step) Step {
	return &retryStep{
		policy: policy,
		step:   step,
	}
}

type retryStep struct {
	policy backoff.BackOff
	step   Step
}

func (r *retryStep) Name() string {
	return r.step.Name()
}

func (r *retryStep) Run(ctx context.Context, data Data, next Next) error {
	policy := backoff.WithContext(r.policy, ctx)
	final := data

	op := func() error {
		update, failure := runStep(ctx, r.step, final)
		if failure == nil {
			final = update
			return nil
		}
		if failure.permanent || IsCanceled(failure) {
			return backoff.Permanent(failure)
		}
		return failure
	}
	notify := func(reason error, delay time.Duration) {
		PublishRetryEvent(ctx, r.step.Name(), reason, delay)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		next(err, nil)
		return nil
	}
	next(nil, final)
	return nil
}
