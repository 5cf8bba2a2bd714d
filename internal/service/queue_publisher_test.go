package queue_publisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	q "github.com/iliyamo/questboard/internal/queue"
)

func TestNewPublisher_Defaults(t *testing.T) {
	p := NewPublisher("", nil)
	assert.Equal(t, DefaultURL, p.url)
	assert.NotNil(t, p.logger)
}

func TestPublishQuestCompleted_DialFailure(t *testing.T) {
	p := NewPublisher("amqp://example:5672/", slog.New(slog.NewTextHandler(io.Discard, nil)))
	var dialed string
	p.dial = func(url string, _ amqp.Config) (*amqp.Connection, error) {
		dialed = url
		return nil, errors.New("connection refused")
	}

	err := p.PublishQuestCompleted(context.Background(), q.QuestCompletedEvent{EventID: "e1", QuestID: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial")
	assert.Equal(t, "amqp://example:5672/", dialed)
}
