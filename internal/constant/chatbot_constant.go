package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	// Event types published on the chat turn topic and forwarded to NATS
	EventSessionCreated = "SESSION_CREATED"
	EventSessionDeleted = "SESSION_DELETED"
	EventChatThinking   = "CHAT_THINKING"
	EventChatReplied    = "CHAT_REPLIED"
	EventChatFailed     = "CHAT_FAILED"

	// Websocket frame types
	WsFrameAsk      = "ask"
	WsFrameThinking = "thinking"
	WsFrameMessage  = "message"
	WsFrameError    = "error"

	// Shown instead of provider error details
	ChatFailedUserMessage = "ขออภัยครับ ระบบไม่สามารถตอบคำถามได้ในขณะนี้ กรุณาลองใหม่อีกครั้ง"

	SessionTokenIssuer = "docchat-be"
	SessionLocalKey    = "session_id"
)
