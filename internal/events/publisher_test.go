package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cl-scripter/learning-api/internal/models"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := new(MockChannel)
	event := models.ProgressEvent{UserID: "u1", Language: "python", TutorialID: 1, Completed: true}

	ch.On("Publish", "learning", models.EventProgressCompleted, false, false,
		mock.MatchedBy(func(p amqp.Publishing) bool {
			var got models.ProgressEvent
			return json.Unmarshal(p.Body, &got) == nil && got.UserID == "u1" && got.Completed
		})).Return(nil).Once()

	p := NewAMQPPublisher(ch, "learning")
	require.NoError(t, p.Publish(context.Background(), models.EventProgressCompleted, event))
	ch.AssertExpectations(t)
	assert.NoError(t, p.Close())
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := new(MockChannel)
	ch.On("Publish", "learning", models.EventCodeExecuted, false, false, mock.Anything).
		Return(errors.New("channel closed")).Once()

	p := NewAMQPPublisher(ch, "learning")
	err := p.Publish(context.Background(), models.EventCodeExecuted, models.ExecutionEvent{Language: "go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "events.Publish")
}

func TestAMQPPublisher_CancelledContext(t *testing.T) {
	ch := new(MockChannel)
	p := NewAMQPPublisher(ch, "learning")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, models.EventProgressSaved, models.ProgressEvent{})
	assert.ErrorIs(t, err, context.Canceled)
	ch.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAMQPPublisher_ConcurrentPublish(t *testing.T) {
	ch := new(MockChannel)
	ch.On("Publish", "learning", models.EventProgressSaved, false, false, mock.Anything).Return(nil)

	p := NewAMQPPublisher(ch, "learning")
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Publish(context.Background(), models.EventProgressSaved, models.ProgressEvent{})
		}()
	}
	wg.Wait()
	ch.AssertNumberOfCalls(t, "Publish", 20)
}

func TestAMQPPublisher_CloseRunsClosers(t *testing.T) {
	p := NewAMQPPublisher(new(MockChannel), "learning")
	var calls []string
	p.closers = []func() error{
		func() error { calls = append(calls, "channel"); return amqp.ErrClosed },
		func() error { calls = append(calls, "conn"); return errors.New("boom") },
	}

	err := p.Close()
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())
	assert.Equal(t, []string{"channel", "conn"}, calls)
	assert.NoError(t, p.Close())
}

func TestNoop_Publish(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), models.EventProgressSaved, nil))
}
