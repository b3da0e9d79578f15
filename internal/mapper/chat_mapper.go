package mapper

import (
	"docchat-be/internal/dto"
	"docchat-be/pkg/chat"
	"docchat-be/pkg/rag/engine"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) MessageToResponse(msg chat.Message) dto.ChatMessageResponse {
	return dto.ChatMessageResponse{
		Role:      msg.Role,
		Content:   msg.Content,
		Sources:   m.SourcesToResponse(msg.Sources),
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) MessagesToResponse(msgs []chat.Message) []dto.ChatMessageResponse {
	res := make([]dto.ChatMessageResponse, len(msgs))
	for i, msg := range msgs {
		res[i] = m.MessageToResponse(msg)
	}
	return res
}

func (m *ChatMapper) SourcesToResponse(sources []engine.Source) []dto.SourceResponse {
	if len(sources) == 0 {
		return nil
	}
	res := make([]dto.SourceResponse, len(sources))
	for i, s := range sources {
		res[i] = dto.SourceResponse{
			Source:     s.Source,
			Title:      s.Title,
			ChunkIndex: s.ChunkIndex,
			Score:      s.Score,
			Snippet:    s.Snippet,
		}
	}
	return res
}
