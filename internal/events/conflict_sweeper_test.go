package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staynest/service-booking/pkg/domain"
	"github.com/staynest/service-booking/pkg/events"
	"github.com/staynest/service-booking/pkg/kafka"
)

type fakeResolver struct {
	calls []uuid.UUID
	err   error
}

func (f *fakeResolver) DeclineConflictingRequests(_ context.Context, id uuid.UUID) (int, error) {
	f.calls = append(f.calls, id)
	return 1, f.err
}

func message(t *testing.T, eventType string, data interface{}) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("test", eventType, data)
	require.NoError(t, err)
	raw, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Value: raw}
}

func newSweeper(r ConflictResolver) *ConflictSweeper {
	return &ConflictSweeper{resolver: r, logger: zap.NewNop()}
}

func TestConflictSweeper_AcceptedTriggersSweep(t *testing.T) {
	r := &fakeResolver{}
	id := uuid.New()

	err := newSweeper(r).HandleMessage(context.Background(),
		message(t, events.BookingAccepted, events.BookingEvent{BookingID: id.String()}))

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, r.calls)
}

func TestConflictSweeper_IgnoresOtherEvents(t *testing.T) {
	r := &fakeResolver{}

	for _, typ := range []string{events.BookingRequested, events.BookingDeclined, events.BookingCanceled} {
		err := newSweeper(r).HandleMessage(context.Background(),
			message(t, typ, events.BookingEvent{BookingID: uuid.NewString()}))
		require.NoError(t, err)
	}
	assert.Empty(t, r.calls)
}

func TestConflictSweeper_DropsMalformedMessages(t *testing.T) {
	r := &fakeResolver{}
	s := newSweeper(r)

	assert.NoError(t, s.HandleMessage(context.Background(), kafkago.Message{Value: []byte("{")}))
	assert.NoError(t, s.HandleMessage(context.Background(),
		message(t, events.BookingAccepted, events.BookingEvent{BookingID: "not-a-uuid"})))
	assert.Empty(t, r.calls)
}

func TestConflictSweeper_RetriesOnlyInfrastructureFailures(t *testing.T) {
	msg := message(t, events.BookingAccepted, events.BookingEvent{BookingID: uuid.NewString()})

	domainFailure := &fakeResolver{err: domain.NewConflictError("changed")}
	assert.NoError(t, newSweeper(domainFailure).HandleMessage(context.Background(), msg))

	infraFailure := &fakeResolver{err: errors.New("connection reset")}
	assert.Error(t, newSweeper(infraFailure).HandleMessage(context.Background(), msg))
}
