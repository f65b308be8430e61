package chain_test

import (
	"context"
	"testing"

	"github.com/jperocho/salh/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepName(t *testing.T) {
	sn := chain.StepName("the name")
	assert.Equal(t, "the name", sn.Name())
}

func TestZeroStep(t *testing.T) {
	envelope, err := chain.New(nil, nil).Run(context.Background(), chain.Zero)
	require.NoError(t, err)
	assert.Equal(t, 200, envelope.Status)
	assert.Empty(t, envelope.Data)
}

func TestNamedStep_NilHandler(t *testing.T) {
	envelope, err := chain.New(nil, nil).Run(context.Background(),
		addKey("before", "a", 1),
		chain.Named("noop", nil),
	)

	require.NoError(t, err)
	assert.Equal(t, chain.Data{"a": 1}, envelope.Data)
}

func TestAnonymousStep_Name(t *testing.T) {
	st := chain.Anonymous(nil)
	assert.Equal(t, chain.AnonymousName, st.Name())
}
