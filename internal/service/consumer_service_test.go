package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"docchat-be/internal/constant"
	"docchat-be/internal/dto"
	"docchat-be/internal/pkg/logger"
	"docchat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frameSink struct {
	mu     sync.Mutex
	frames map[string][]dto.WsOutbound
}

func (f *frameSink) SendToSession(sessionID string, frame dto.WsOutbound) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames[sessionID] = append(f.frames[sessionID], frame)
}

func (f *frameSink) get(sessionID string) []dto.WsOutbound {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dto.WsOutbound(nil), f.frames[sessionID]...)
}

type externalSink struct {
	mu    sync.Mutex
	types []string
}

func (e *externalSink) Publish(ctx context.Context, event events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types = append(e.types, event.EventType())
	return nil
}

func (e *externalSink) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.types)
}

func TestConsumerForwardsChatEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	sink := &frameSink{frames: map[string][]dto.WsOutbound{}}
	external := &externalSink{}

	consumer := NewConsumerService(pubSub, "CHAT_TURN", sink, external, logger.NopLogger{})
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("CHAT_TURN", pubSub)
	for _, e := range []events.BaseEvent{
		events.New(constant.EventSessionCreated, map[string]interface{}{"session_id": "s1"}),
		events.New(constant.EventChatThinking, map[string]interface{}{"session_id": "s1"}),
		events.New(constant.EventChatReplied, map[string]interface{}{"session_id": "s1", "message": map[string]interface{}{"content": "X"}}),
	} {
		payload, err := events.Marshal(e)
		require.NoError(t, err)
		require.NoError(t, publisher.Publish(ctx, payload))
	}

	assert.Eventually(t, func() bool { return external.count() == 3 }, time.Second, 5*time.Millisecond)

	frames := sink.get("s1")
	require.Len(t, frames, 2)
	assert.Equal(t, constant.WsFrameThinking, frames[0].Type)
	assert.Equal(t, constant.WsFrameMessage, frames[1].Type)
	assert.Equal(t, map[string]interface{}{"content": "X"}, frames[1].Data)
}
