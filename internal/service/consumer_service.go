package service

import (
	"context"

	"docchat-be/internal/constant"
	"docchat-be/internal/dto"
	"docchat-be/internal/pkg/logger"
	"docchat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChatDelivery pushes frames to the live connections of one session.
// Implemented by the websocket hub.
type ChatDelivery interface {
	SendToSession(sessionID string, frame dto.WsOutbound)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	delivery  ChatDelivery
	external  events.Publisher
	logger    logger.ILogger
}

// NewConsumerService forwards chat turn events to live clients and, when
// external is not nil, to the external event bus.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	delivery ChatDelivery,
	external events.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		delivery:  delivery,
		external:  external,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// malformed payloads are acked so they are not redelivered forever
	defer msg.Ack()

	event, err := events.Unmarshal(msg.Payload)
	if err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal chat event", map[string]interface{}{"error": err.Error()})
		return
	}

	if frame, ok := toFrame(event); ok && cs.delivery != nil {
		cs.delivery.SendToSession(event.String("session_id"), frame)
	}

	if cs.external != nil {
		if err := cs.external.Publish(ctx, event); err != nil {
			cs.logger.Warn("Consumer", "Failed to forward event to NATS", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
	}
}

func toFrame(event events.BaseEvent) (dto.WsOutbound, bool) {
	switch event.EventType() {
	case constant.EventChatThinking:
		return dto.WsOutbound{Type: constant.WsFrameThinking}, true
	case constant.EventChatReplied:
		return dto.WsOutbound{Type: constant.WsFrameMessage, Data: event.Payload()["message"]}, true
	case constant.EventChatFailed:
		return dto.WsOutbound{Type: constant.WsFrameError, Data: map[string]interface{}{"message": event.Payload()["message"]}}, true
	default:
		return dto.WsOutbound{}, false
	}
}
