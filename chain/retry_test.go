package chain_test

import (
	"context"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jperocho/salh/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_EventuallySucceeds(t *testing.T) {
	attempts := 0
	flaky := counting("flaky", func(_ context.Context, data chain.Data, next chain.Next) error {
		attempts++
		if attempts < 3 {
			next(chain.NewError(503, "unavailable"), nil)
			return nil
		}
		data["done"] = attempts
		next(nil, data)
		return nil
	})

	envelope, err := chain.New(nil, nil).Run(context.Background(),
		chain.Retry(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 4),
			flaky,
		),
	)

	require.NoError(t, err)
	assert.Equal(t, 3, flaky.Runs())
	assert.Equal(t, 3, envelope.Data["done"])
}

func TestRetry_ExhaustsPolicy(t *testing.T) {
	failing := counting("always-down", func(_ context.Context, _ chain.Data, next chain.Next) error {
		next(chain.NewError(503, "unavailable"), nil)
		return nil
	})

	_, err := chain.New(nil, nil).Run(context.Background(),
		chain.Retry(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 2),
			failing,
		),
	)

	require.Error(t, err)
	assert.Equal(t, 3, failing.Runs())

	ce := chain.StepErr(err)
	assert.Equal(t, 503, ce.Status)
	assert.Equal(t, "always-down", ce.Func)
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	failing := counting("fatal", func(_ context.Context, _ chain.Data, next chain.Next) error {
		next(chain.Permanent(chain.NewError(400, "bad request")), nil)
		return nil
	})

	_, err := chain.New(nil, nil).Run(context.Background(),
		chain.Retry(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 5),
			failing,
		),
	)

	require.Error(t, err)
	assert.Equal(t, 1, failing.Runs())
	assert.Equal(t, 400, chain.StepErr(err).Status)
}

func TestRetry_KeepsStepName(t *testing.T) {
	st := chain.Retry(backoff.NewConstantBackOff(time.Millisecond), addKey("inner", "a", 1))
	assert.Equal(t, "inner", st.Name())
}
