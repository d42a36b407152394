package kafka

import (
	"context"
	"testing"
	"time"

	"go-fleetpay/internal/shared/testdb"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T, now time.Time) (*outboxRepository, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t, &OutboxEvent{})
	return &outboxRepository{db: db, now: func() time.Time { return now }}, db
}

func TestOutboxRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	repo, db := newTestRepo(t, now)

	event, err := NewEvent(ctx, "shipment", "s-1", "shipment_completed", "fleet.shipment.completed.v1", map[string]string{"shipment_id": "s-1"})
	assert.NoError(t, err)
	assert.NoError(t, repo.Create(ctx, event))

	pending, err := repo.ListPending(ctx, 10)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.JSONEq(t, `{"shipment_id":"s-1"}`, string(pending[0].Payload))

	assert.NoError(t, repo.MarkFailed(ctx, pending[0], "broker down"))

	pending, err = repo.ListPending(ctx, 10)
	assert.NoError(t, err)
	assert.Empty(t, pending, "failed event waits for its backoff")

	var stored OutboxEvent
	assert.NoError(t, db.First(&stored, "id = ?", event.ID).Error)
	assert.Equal(t, OutboxStatusFailed, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	assert.True(t, stored.NextRetryAt.Equal(now.Add(15*time.Second)))

	repo.now = func() time.Time { return now.Add(time.Minute) }
	pending, err = repo.ListPending(ctx, 10)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)

	assert.NoError(t, repo.MarkSent(ctx, event.ID))
	pending, err = repo.ListPending(ctx, 10)
	assert.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutboxRepository_CreateRejectsInvalid(t *testing.T) {
	repo, _ := newTestRepo(t, time.Now())
	err := repo.Create(context.Background(), OutboxEvent{ID: "x", Topic: "t", Payload: []byte("{}"), Status: "weird"})
	assert.Error(t, err)
}
