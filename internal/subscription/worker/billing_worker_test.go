package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockBillingProcessor is a mock implementation of BillingProcessor
type MockBillingProcessor struct {
	mock.Mock
}

func (m *MockBillingProcessor) ProcessDue(ctx context.Context, date time.Time) (int, error) {
	args := m.Called(ctx, date)
	return args.Int(0), args.Error(1)
}

func TestBillingWorker_RunOnce(t *testing.T) {
	processor := &MockBillingProcessor{}
	worker := NewBillingWorker(processor, "0 0 * * *", createTestLogger())

	today := time.Now().UTC().Truncate(24 * time.Hour)
	processor.On("ProcessDue", mock.Anything, today).Return(2, nil)

	worker.RunOnce(context.Background())

	processor.AssertExpectations(t)
}

func TestBillingWorker_RunOnce_ProcessorError(t *testing.T) {
	processor := &MockBillingProcessor{}
	worker := NewBillingWorker(processor, "0 0 * * *", createTestLogger())

	processor.On("ProcessDue", mock.Anything, mock.Anything).Return(0, errors.New("database unavailable"))

	// Errors are logged, not propagated; the next scheduled run retries.
	worker.RunOnce(context.Background())

	processor.AssertExpectations(t)
}

func TestBillingWorker_Start_InvalidSpec(t *testing.T) {
	processor := &MockBillingProcessor{}
	worker := NewBillingWorker(processor, "not a cron spec", createTestLogger())

	err := worker.Start()

	require.Error(t, err)
}

func TestBillingWorker_StartAndStop(t *testing.T) {
	processor := &MockBillingProcessor{}
	worker := NewBillingWorker(processor, "0 0 * * *", createTestLogger())

	require.NoError(t, worker.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, worker.Stop(ctx))
}
