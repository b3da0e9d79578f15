package dto

import "time"

type PageResponse struct {
	Title            string `json:"title"`
	Icon             string `json:"icon"`
	InputPlaceholder string `json:"input_placeholder"`
	IndexingNotice   string `json:"indexing_notice"`
	ThinkingNotice   string `json:"thinking_notice"`
	Greeting         string `json:"greeting"`
}

type CreateSessionResponse struct {
	SessionId string                `json:"session_id"`
	Token     string                `json:"token"`
	ExpiresAt time.Time             `json:"expires_at"`
	Messages  []ChatMessageResponse `json:"messages"`
}

type ChatMessageResponse struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	Sources   []SourceResponse `json:"sources,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type SourceResponse struct {
	Source     string  `json:"source"`
	Title      string  `json:"title"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Snippet    string  `json:"snippet"`
}

type TranscriptResponse struct {
	SessionId string                `json:"session_id"`
	State     string                `json:"state"`
	Messages  []ChatMessageResponse `json:"messages"`
}

type SendChatRequest struct {
	Content string `json:"content" validate:"required"`
}

type SendChatResponse struct {
	SessionId string               `json:"session_id"`
	Sent      *ChatMessageResponse `json:"sent"`
	Reply     *ChatMessageResponse `json:"reply"`
}

type IndexStatusResponse struct {
	Ready           bool      `json:"ready"`
	Documents       int       `json:"documents"`
	Chunks          int       `json:"chunks"`
	VectorStore     string    `json:"vector_store"`
	DataDir         string    `json:"data_dir"`
	BuiltAt         time.Time `json:"built_at"`
	BuildDurationMs int64     `json:"build_duration_ms"`
}

// WsInbound is a frame sent by the browser over the chat websocket.
type WsInbound struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// WsOutbound is a frame pushed to the browser.
type WsOutbound struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}
