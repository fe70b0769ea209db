package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/shared"
	"github.com/microfinance/backend/internal/infrastructure/persistence/models"
	"github.com/microfinance/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const sampleEventType = "SampleHappened"

func newOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewSQLiteDB(t, &models.OutboxEntryModel{})
}

func sampleSerializer() *EventSerializer {
	s := NewRegisteredSerializer()
	s.Register(sampleEventType, &testutil.SampleEvent{})
	return s
}

func newEntry(t *testing.T) *shared.OutboxEntry {
	t.Helper()
	event := testutil.NewSampleEvent(sampleEventType, testutil.TestTenantID())
	payload, err := sampleSerializer().Serialize(event)
	require.NoError(t, err)
	return shared.NewOutboxEntry(event, payload)
}

func TestGormOutboxRepository_SaveAndFindPending(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOutboxRepository(newOutboxDB(t))

	first, second := newEntry(t), newEntry(t)
	second.CreatedAt = first.CreatedAt.Add(time.Millisecond)
	require.NoError(t, repo.Save(ctx, first, second))

	pending, err := repo.FindPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, first.Payload, pending[0].Payload)
	assert.Equal(t, sampleEventType, pending[0].EventType)

	limited, err := repo.FindPending(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGormOutboxRepository_SaveNothing(t *testing.T) {
	repo := NewGormOutboxRepository(newOutboxDB(t))
	assert.NoError(t, repo.Save(context.Background()))
}

func TestGormOutboxRepository_MarkProcessing(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOutboxRepository(newOutboxDB(t))

	entry := newEntry(t)
	require.NoError(t, repo.Save(ctx, entry))

	claimed, err := repo.MarkProcessing(ctx, []uuid.UUID{entry.ID})
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, shared.OutboxStatusProcessing, claimed[0].Status)

	again, err := repo.MarkProcessing(ctx, []uuid.UUID{entry.ID})
	require.NoError(t, err)
	assert.Empty(t, again, "an entry in flight cannot be claimed twice")

	pending, err := repo.FindPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestGormOutboxRepository_FindRetryable(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOutboxRepository(newOutboxDB(t))

	entry := newEntry(t)
	require.NoError(t, repo.Save(ctx, entry))
	entry.MarkFailed("consumer down")
	require.NoError(t, repo.Update(ctx, entry))

	none, err := repo.FindRetryable(ctx, time.Now().Add(-time.Minute), 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	due, err := repo.FindRetryable(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, 1, due[0].RetryCount)
	assert.Equal(t, "consumer down", due[0].LastError)
}

func TestGormOutboxRepository_DeleteOlderThanAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOutboxRepository(newOutboxDB(t))

	sent, pending := newEntry(t), newEntry(t)
	require.NoError(t, repo.Save(ctx, sent, pending))
	sent.MarkSent()
	require.NoError(t, repo.Update(ctx, sent))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[shared.OutboxStatusSent])
	assert.Equal(t, int64(1), counts[shared.OutboxStatusPending])

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	counts, err = repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts[shared.OutboxStatusSent])
}

func TestGormOutboxRepository_MarkProcessingSkipsLockedOnPostgres(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	id := uuid.New()
	mockDB.Mock.ExpectBegin()
	mockDB.Mock.ExpectQuery(`SELECT \* FROM "outbox_events" WHERE .* FOR UPDATE SKIP LOCKED`).
		WillReturnRows(mockDB.Mock.NewRows([]string{"id"}))
	mockDB.Mock.ExpectCommit()

	claimed, err := NewGormOutboxRepository(mockDB.DB).MarkProcessing(context.Background(), []uuid.UUID{id})
	require.NoError(t, err)
	assert.Empty(t, claimed)
	mockDB.ExpectationsWereMet(t)
}
