package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider("expenses")

	require.NoError(t, err)
	assert.NotNil(t, provider.MeterProvider())
	assert.NotNil(t, provider.Handler())
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestAuthzRecorder_RecordAuthzDecision(t *testing.T) {
	provider, err := NewProvider("expenses")
	require.NoError(t, err)

	recorder, err := NewAuthzRecorder(provider.MeterProvider(), "expenses")
	require.NoError(t, err)

	recorder.RecordAuthzDecision("/v1/expenses/:id", true)
	recorder.RecordAuthzDecision("/v1/expenses/:id", false)
}
