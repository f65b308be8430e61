package chain_test

import (
	"context"
	"testing"

	"github.com/jperocho/salh/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_FlowsContextThrough(t *testing.T) {
	envelope, err := chain.New(nil, nil).Run(context.Background(),
		addKey("before", "a", 1),
		chain.Group("bundle",
			addKey("inner-1", "b", 2),
			addKey("inner-2", "c", 3),
		),
		addKey("after", "d", 4),
	)

	require.NoError(t, err)
	assert.Equal(t, chain.Data{"a": 1, "b": 2, "c": 3, "d": 4}, envelope.Data)
}

func TestGroup_PropagatesChildAttribution(t *testing.T) {
	failing := chain.Named("inner-2", func(_ context.Context, _ chain.Data, next chain.Next) error {
		next(chain.NewError(409, "conflict"), nil)
		return nil
	})
	after := counting("after", nil)

	_, err := chain.New(nil, nil).Run(context.Background(),
		chain.Group("bundle", addKey("inner-1", "a", 1), failing),
		after,
	)

	require.Error(t, err)
	assert.Equal(t, 0, after.Runs())

	ce := chain.StepErr(err)
	assert.Equal(t, 409, ce.Status)
	assert.Equal(t, "inner-2", ce.Func)
}

func TestGroup_StopsAtFirstChildFailure(t *testing.T) {
	failing := chain.Named("boom", func(_ context.Context, _ chain.Data, _ chain.Next) error {
		panic("child panic")
	})
	never := counting("never", nil)

	_, err := chain.New(nil, nil).Run(context.Background(),
		chain.Group("bundle", failing, never),
	)

	require.Error(t, err)
	assert.Equal(t, 0, never.Runs())
	assert.Equal(t, "boom", chain.StepErr(err).Func)
}
