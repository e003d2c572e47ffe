package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ebrahimbeiati/inventory-management/internal/domain/model"
	"github.com/ebrahimbeiati/inventory-management/internal/usecase"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

var _ usecase.UserEventPublisher = (*AMQPPublisher)(nil)
var _ usecase.UserEventPublisher = NoopPublisher{}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := new(MockChannel)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := &AMQPPublisher{ch: ch, queue: "users.events", now: func() time.Time { return fixed }}

	ev := usecase.UserEvent{
		Type:        usecase.UserEventCreated,
		UserID:      "u1",
		ActorUserID: "a1",
		Role:        model.RoleEmployee,
		OccurredAt:  fixed,
	}

	var sent amqp.Publishing
	ch.On("PublishWithContext", mock.Anything, "", "users.events", false, false, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(5).(amqp.Publishing) }).
		Return(nil)

	assert.NoError(t, p.Publish(context.Background(), ev))

	assert.Equal(t, "application/json", sent.ContentType)
	assert.Equal(t, amqp.Persistent, sent.DeliveryMode)
	assert.Equal(t, "user.created", sent.Type)
	assert.Equal(t, fixed, sent.Timestamp)

	var decoded usecase.UserEvent
	assert.NoError(t, json.Unmarshal(sent.Body, &decoded))
	assert.Equal(t, ev.UserID, decoded.UserID)
	assert.Equal(t, ev.ActorUserID, decoded.ActorUserID)
	assert.Equal(t, ev.Type, decoded.Type)

	ch.AssertExpectations(t)
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := new(MockChannel)
	p := &AMQPPublisher{ch: ch, queue: "q", now: time.Now}

	ch.On("PublishWithContext", mock.Anything, "", "q", false, false, mock.Anything).
		Return(errors.New("channel closed"))

	err := p.Publish(context.Background(), usecase.UserEvent{Type: usecase.UserEventDeleted, UserID: "u1"})
	assert.ErrorContains(t, err, "user.deleted")
}

func TestAMQPPublisher_Close(t *testing.T) {
	ch := new(MockChannel)
	ch.On("Close").Return(nil)
	p := &AMQPPublisher{ch: ch}

	assert.NoError(t, p.Close())
	ch.AssertExpectations(t)
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.Publish(context.Background(), usecase.UserEvent{}))
}
