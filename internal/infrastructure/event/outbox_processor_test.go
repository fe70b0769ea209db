package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/microfinance/backend/internal/domain/shared"
	"github.com/microfinance/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type processorFixture struct {
	repo      *GormOutboxRepository
	bus       *InMemoryEventBus
	handler   *testutil.RecordingHandler
	processor *OutboxProcessor
}

func newProcessorFixture(t *testing.T, config OutboxProcessorConfig) *processorFixture {
	t.Helper()

	repo := NewGormOutboxRepository(newOutboxDB(t))
	bus := startedBus(t)
	handler := testutil.NewRecordingHandler(sampleEventType)
	bus.Subscribe(handler)

	return &processorFixture{
		repo:      repo,
		bus:       bus,
		handler:   handler,
		processor: NewOutboxProcessor(repo, bus, sampleSerializer(), config, zap.NewNop()),
	}
}

func TestOutboxProcessor_ProcessOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("relays pending entries and marks them sent", func(t *testing.T) {
		f := newProcessorFixture(t, DefaultOutboxProcessorConfig())
		entry := newEntry(t)
		require.NoError(t, f.repo.Save(ctx, entry))

		f.processor.ProcessOnce(ctx)

		require.Equal(t, 1, f.handler.Count())
		assert.Equal(t, entry.EventID, f.handler.Handled()[0].EventID())

		counts, err := f.repo.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[shared.OutboxStatusSent])
	})

	t.Run("handler failure schedules a retry", func(t *testing.T) {
		f := newProcessorFixture(t, DefaultOutboxProcessorConfig())
		f.handler.Fail(errors.New("consumer down"))
		require.NoError(t, f.repo.Save(ctx, newEntry(t)))

		f.processor.ProcessOnce(ctx)

		retryable, err := f.repo.FindRetryable(ctx, time.Now().Add(time.Hour), 10)
		require.NoError(t, err)
		require.Len(t, retryable, 1)
		assert.Equal(t, 1, retryable[0].RetryCount)
		assert.Contains(t, retryable[0].LastError, "consumer down")
	})

	t.Run("exhausted retries dead-letter the entry", func(t *testing.T) {
		config := DefaultOutboxProcessorConfig()
		config.MaxRetries = 1
		f := newProcessorFixture(t, config)
		f.handler.Fail(errors.New("consumer down"))
		require.NoError(t, f.repo.Save(ctx, newEntry(t)))

		f.processor.ProcessOnce(ctx)

		counts, err := f.repo.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[shared.OutboxStatusDead])
	})

	t.Run("undecodable payload fails the entry", func(t *testing.T) {
		f := newProcessorFixture(t, DefaultOutboxProcessorConfig())
		entry := newEntry(t)
		entry.EventType = "Unknown"
		require.NoError(t, f.repo.Save(ctx, entry))

		f.processor.ProcessOnce(ctx)

		assert.Equal(t, 0, f.handler.Count())
		counts, err := f.repo.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[shared.OutboxStatusFailed])
	})
}

func TestOutboxProcessor_StartStop(t *testing.T) {
	config := DefaultOutboxProcessorConfig()
	config.PollInterval = 10 * time.Millisecond
	config.CleanupInterval = 10 * time.Millisecond
	f := newProcessorFixture(t, config)

	ctx := context.Background()
	require.NoError(t, f.repo.Save(ctx, newEntry(t)))
	require.NoError(t, f.processor.Start(ctx))

	testutil.RequireEventually(t, func() bool { return f.handler.Count() == 1 }, time.Second)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	assert.NoError(t, f.processor.Stop(stopCtx))
}
