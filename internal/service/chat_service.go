package service

import (
	"context"
	"errors"

	"docchat-be/internal/config"
	"docchat-be/internal/constant"
	"docchat-be/internal/dto"
	"docchat-be/internal/mapper"
	"docchat-be/internal/pkg/logger"
	"docchat-be/internal/pkg/serverutils"
	"docchat-be/internal/repository/memory"
	"docchat-be/pkg/chat"
	"docchat-be/pkg/events"
	"docchat-be/pkg/rag/engine"
	ragmemory "docchat-be/pkg/rag/memory"

	"github.com/google/uuid"
)

type ChatEngine interface {
	Chat(ctx context.Context, mem engine.Memory, userMessage string) (*engine.Response, error)
}

type IChatService interface {
	GetPage(ctx context.Context) *dto.PageResponse
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	GetTranscript(ctx context.Context, sessionId string) (*dto.TranscriptResponse, error)
	SendChat(ctx context.Context, sessionId string, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	DeleteSession(ctx context.Context, sessionId string) error
}

type MemorySettings struct {
	TokenLimit int
	Counter    ragmemory.TokenCounter
}

type chatService struct {
	sessionRepo      *memory.SessionRepository
	engine           ChatEngine
	tokens           *serverutils.SessionTokens
	publisherService IPublisherService
	persona          config.Persona
	memory           MemorySettings
	mapper           *mapper.ChatMapper
	logger           logger.ILogger
}

func NewChatService(
	sessionRepo *memory.SessionRepository,
	chatEngine ChatEngine,
	tokens *serverutils.SessionTokens,
	publisherService IPublisherService,
	persona config.Persona,
	mem MemorySettings,
	log logger.ILogger,
) IChatService {
	return &chatService{
		sessionRepo:      sessionRepo,
		engine:           chatEngine,
		tokens:           tokens,
		publisherService: publisherService,
		persona:          persona,
		memory:           mem,
		mapper:           mapper.NewChatMapper(),
		logger:           log,
	}
}

func (c *chatService) GetPage(ctx context.Context) *dto.PageResponse {
	return &dto.PageResponse{
		Title:            c.persona.PageTitle,
		Icon:             c.persona.PageIcon,
		InputPlaceholder: c.persona.InputPlaceholder,
		IndexingNotice:   c.persona.IndexingNotice,
		ThinkingNotice:   c.persona.ThinkingNotice,
		Greeting:         c.persona.Greeting,
	}
}

func (c *chatService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	id := uuid.NewString()
	session := chat.NewSession(id, c.persona.Greeting, ragmemory.NewBuffer(c.memory.TokenLimit, c.memory.Counter))

	token, expiresAt, err := c.tokens.Issue(id)
	if err != nil {
		return nil, err
	}
	c.sessionRepo.Save(session)

	c.publish(ctx, constant.EventSessionCreated, map[string]interface{}{"session_id": id})
	c.logger.Info("ChatService", "Session created", map[string]interface{}{"session_id": id})

	return &dto.CreateSessionResponse{
		SessionId: id,
		Token:     token,
		ExpiresAt: expiresAt,
		Messages:  c.mapper.MessagesToResponse(session.Render()),
	}, nil
}

func (c *chatService) GetTranscript(ctx context.Context, sessionId string) (*dto.TranscriptResponse, error) {
	session, ok := c.sessionRepo.Get(sessionId)
	if !ok {
		return nil, ErrSessionNotFound
	}

	msgs := session.Render()
	return &dto.TranscriptResponse{
		SessionId: sessionId,
		State:     session.State(),
		Messages:  c.mapper.MessagesToResponse(msgs),
	}, nil
}

// SendChat runs one turn. On failure the pending user message is withdrawn so
// the transcript is exactly as it was before the call.
func (c *chatService) SendChat(ctx context.Context, sessionId string, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	session, ok := c.sessionRepo.Get(sessionId)
	if !ok {
		return nil, ErrSessionNotFound
	}

	if err := session.Begin(req.Content); err != nil {
		switch {
		case errors.Is(err, chat.ErrTurnInProgress):
			return nil, ErrTurnInProgress
		case errors.Is(err, chat.ErrEmptyMessage):
			return nil, ErrEmptyMessage
		default:
			return nil, err
		}
	}
	c.publish(ctx, constant.EventChatThinking, map[string]interface{}{"session_id": sessionId})

	res, err := c.engine.Chat(ctx, session.Memory, req.Content)
	if err != nil {
		if abortErr := session.Abort(); abortErr != nil {
			c.logger.Warn("ChatService", "Abort after failed turn", map[string]interface{}{"session_id": sessionId, "error": abortErr.Error()})
		}
		c.logger.Error("ChatService", "Chat turn failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		c.publish(ctx, constant.EventChatFailed, map[string]interface{}{
			"session_id": sessionId,
			"message":    constant.ChatFailedUserMessage,
		})
		return nil, ErrChatFailed.wrap(err)
	}

	if err := session.Complete(res.Answer, res.Sources); err != nil {
		return nil, err
	}

	msgs := session.Render()
	sent := c.mapper.MessageToResponse(msgs[len(msgs)-2])
	reply := c.mapper.MessageToResponse(msgs[len(msgs)-1])

	c.publish(ctx, constant.EventChatReplied, map[string]interface{}{
		"session_id": sessionId,
		"message":    reply,
	})

	return &dto.SendChatResponse{
		SessionId: sessionId,
		Sent:      &sent,
		Reply:     &reply,
	}, nil
}

func (c *chatService) DeleteSession(ctx context.Context, sessionId string) error {
	if !c.sessionRepo.Delete(sessionId) {
		return ErrSessionNotFound
	}
	c.publish(ctx, constant.EventSessionDeleted, map[string]interface{}{"session_id": sessionId})
	return nil
}

// publish is best effort. A lost notification never fails a turn.
func (c *chatService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if c.publisherService == nil {
		return
	}
	payload, err := events.Marshal(events.New(eventType, data))
	if err == nil {
		err = c.publisherService.Publish(ctx, payload)
	}
	if err != nil {
		c.logger.Warn("ChatService", "Failed to publish chat event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
