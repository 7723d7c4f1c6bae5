package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/arcacommerce/arca-backend/pkg/db/dbtest"
	"github.com/arcacommerce/arca-backend/pkg/db/models"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	"github.com/arcacommerce/arca-backend/pkg/logger"
	"github.com/arcacommerce/arca-backend/pkg/outbox"
	"github.com/arcacommerce/arca-backend/pkg/outbox/payloads"
)

func TestEmitWritesEnvelopeInsideTransaction(t *testing.T) {
	conn := dbtest.Open(t)
	repo := outbox.NewRepository(conn.DB())
	svc := outbox.NewService(repo, logger.Nop())
	orderID := uuid.New()
	userID := uuid.New()

	err := conn.WithTx(context.Background(), func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: enums.UserRoleStaff},
			Data: payloads.OrderStatusChangedEvent{
				OrderID: orderID,
				From:    enums.OrderStatusPaid,
				To:      enums.OrderStatusShipped,
			},
		})
	})
	require.NoError(t, err)

	rows, err := repo.ListForAggregate(context.Background(), orderID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].PublishedAt)

	var envelope outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	assert.Equal(t, 1, envelope.Version)
	require.NotNil(t, envelope.Actor)
	assert.Equal(t, userID, envelope.Actor.UserID)

	var data payloads.OrderStatusChangedEvent
	require.NoError(t, envelope.Decode(&data))
	assert.Equal(t, enums.OrderStatusShipped, data.To)
}

func TestEmitRolledBackWithTransaction(t *testing.T) {
	conn := dbtest.Open(t)
	repo := outbox.NewRepository(conn.DB())
	svc := outbox.NewService(repo, nil)
	orderID := uuid.New()

	boom := errors.New("boom")
	err := conn.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Data:          payloads.OrderCreatedEvent{OrderID: orderID},
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	rows, err := repo.ListForAggregate(context.Background(), orderID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestEmitValidation(t *testing.T) {
	conn := dbtest.Open(t)
	svc := outbox.NewService(outbox.NewRepository(conn.DB()), nil)

	err := svc.Emit(context.Background(), nil, outbox.DomainEvent{EventType: enums.EventOrderPaid, AggregateID: uuid.New()})
	require.Error(t, err)

	err = conn.WithTx(context.Background(), func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, outbox.DomainEvent{EventType: "order_lost", AggregateID: uuid.New()})
	})
	require.Error(t, err)
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	conn := dbtest.Open(t)
	repo := outbox.NewRepository(conn.DB())
	svc := outbox.NewService(repo, nil)
	ctx := context.Background()

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	require.NoError(t, conn.WithTx(ctx, func(tx *gorm.DB) error {
		for _, id := range ids {
			if err := svc.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventPayoutPaid,
				AggregateType: enums.AggregatePayout,
				AggregateID:   id,
				Data:          payloads.PayoutPaidEvent{PayoutID: id},
			}); err != nil {
				return err
			}
		}
		return nil
	}))

	var fetched []models.OutboxEvent
	require.NoError(t, conn.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		fetched, err = repo.FetchUnpublishedForPublish(tx, 10, 3)
		if err != nil {
			return err
		}
		if err := repo.MarkPublishedTx(tx, fetched[0].ID); err != nil {
			return err
		}
		if err := repo.MarkFailedTx(tx, fetched[1].ID, errors.New("unavailable")); err != nil {
			return err
		}
		return repo.MarkTerminalTx(tx, fetched[2].ID, errors.New("bad payload"), 3)
	}))
	require.Len(t, fetched, 3)

	var remaining []models.OutboxEvent
	require.NoError(t, conn.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		remaining, err = repo.FetchUnpublishedForPublish(tx, 10, 3)
		return err
	}))
	require.Len(t, remaining, 1)
	assert.Equal(t, fetched[1].ID, remaining[0].ID)
	assert.Equal(t, 1, remaining[0].AttemptCount)
	require.NotNil(t, remaining[0].LastError)
	assert.Equal(t, "unavailable", *remaining[0].LastError)

	removed, err := repo.DeletePublishedBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestDLQRepository(t *testing.T) {
	conn := dbtest.Open(t)
	dlq := outbox.NewDLQRepository(conn.DB())
	ctx := context.Background()
	eventID := uuid.New()

	missing, err := dlq.FindByEventID(ctx, eventID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	msg := strings.Repeat("x", 2048)
	require.NoError(t, conn.WithTx(ctx, func(tx *gorm.DB) error {
		return dlq.InsertTx(tx, models.OutboxDLQ{
			EventID:       eventID,
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Payload:       []byte(`{}`),
			ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
			ErrorMessage:  &msg,
			AttemptCount:  10,
			FailedAt:      time.Now().UTC(),
		})
	}))

	found, err := dlq.FindByEventID(ctx, eventID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, enums.OutboxDLQReasonMaxAttempts, found.ErrorReason)
	require.NotNil(t, found.ErrorMessage)
	assert.Len(t, *found.ErrorMessage, 1024)
}
