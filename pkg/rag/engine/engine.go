// Package engine answers user messages with retrieved context and conversation memory.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docchat-be/internal/pkg/logger"
	"docchat-be/pkg/llm"
	"docchat-be/pkg/rag/index"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrEmptyMessage = errors.New("message is empty")

type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]index.Node, error)
}

// Memory is the conversation history a turn reads from and writes to.
type Memory interface {
	Window(reserved int) []llm.Message
	Put(msgs ...llm.Message)
	Count(text string) int
}

type Source struct {
	Source     string
	Title      string
	ChunkIndex int
	Score      float64
	Snippet    string
}

type Response struct {
	Answer  string
	Sources []Source
}

const snippetRunes = 200

type ContextChatEngine struct {
	retriever    Retriever
	llm          llm.LLMProvider
	systemPrompt string
	topK         int
	logger       logger.ILogger
}

func NewContextChatEngine(r Retriever, provider llm.LLMProvider, systemPrompt string, topK int, log logger.ILogger) *ContextChatEngine {
	if topK <= 0 {
		topK = index.DefaultTopK
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &ContextChatEngine{
		retriever:    r,
		llm:          provider,
		systemPrompt: systemPrompt,
		topK:         topK,
		logger:       log,
	}
}

func (e *ContextChatEngine) SystemPrompt() string {
	return e.systemPrompt
}

// Chat runs one turn. Memory is only written when the model answers.
func (e *ContextChatEngine) Chat(ctx context.Context, mem Memory, userMessage string) (*Response, error) {
	if userMessage == "" {
		return nil, ErrEmptyMessage
	}
	start := time.Now()

	ctx, span := otel.Tracer("docchat/engine").Start(ctx, "ContextChatEngine.Chat")
	defer span.End()

	nodes, err := e.retriever.Retrieve(ctx, userMessage, e.topK)
	if err != nil {
		span.SetStatus(codes.Error, "retrieve failed")
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	system := BuildSystemMessage(e.systemPrompt, nodes)
	history := mem.Window(mem.Count(system) + mem.Count(userMessage))

	prompt := make([]llm.Message, 0, len(history)+2)
	prompt = append(prompt, llm.Message{Role: llm.RoleSystem, Content: system})
	prompt = append(prompt, history...)
	prompt = append(prompt, llm.Message{Role: llm.RoleUser, Content: userMessage})

	e.logger.Debug("ChatEngine", "Prompt assembled", map[string]interface{}{
		"nodes":    len(nodes),
		"history":  len(history),
		"messages": len(prompt),
	})

	span.SetAttributes(
		attribute.Int("rag.nodes", len(nodes)),
		attribute.Int("rag.history_messages", len(history)),
	)

	answer, err := e.llm.Chat(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "llm call failed")
		e.logger.Error("ChatEngine", "LLM call failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	mem.Put(
		llm.Message{Role: llm.RoleUser, Content: userMessage},
		llm.Message{Role: llm.RoleAssistant, Content: answer},
	)

	e.logger.Info("ChatEngine", "Turn answered", map[string]interface{}{
		"nodes":       len(nodes),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return &Response{Answer: answer, Sources: toSources(nodes)}, nil
}

func toSources(nodes []index.Node) []Source {
	sources := make([]Source, len(nodes))
	for i, n := range nodes {
		snippet := []rune(n.Chunk.Text)
		if len(snippet) > snippetRunes {
			snippet = append(snippet[:snippetRunes], '…')
		}
		sources[i] = Source{
			Source:     n.Chunk.Source,
			Title:      n.Chunk.Title,
			ChunkIndex: n.Chunk.Index,
			Score:      n.Score,
			Snippet:    string(snippet),
		}
	}
	return sources
}
