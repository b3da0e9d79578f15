package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"docchat-be/internal/config"
	"docchat-be/internal/controller"
	"docchat-be/internal/handler"
	"docchat-be/internal/model"
	"docchat-be/internal/pkg/logger"
	"docchat-be/internal/pkg/serverutils"
	"docchat-be/internal/repository/memory"
	"docchat-be/internal/service"
	"docchat-be/internal/websocket"
	"docchat-be/pkg/database"
	"docchat-be/pkg/embedding"
	"docchat-be/pkg/events"
	"docchat-be/pkg/llm"
	"docchat-be/pkg/llm/factory"
	"docchat-be/pkg/loader"
	pktNats "docchat-be/pkg/nats"
	"docchat-be/pkg/rag/engine"
	"docchat-be/pkg/rag/index"
	ragmemory "docchat-be/pkg/rag/memory"
	"docchat-be/pkg/vectorstore"
	vsmemory "docchat-be/pkg/vectorstore/memory"
	"docchat-be/pkg/vectorstore/pgstore"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController  controller.IChatController
	IndexController controller.IIndexController
	ChatWsHandler   *handler.ChatWsHandler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	WebSocketHub    *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires every dependency and builds the document index. It
// blocks until the index is ready; any failure here is a startup failure.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	ragLogger := logger.NewIsolatedLogger("logs/llm_rag.log")
	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")

	c := &Container{Logger: sysLogger}

	policy := retryPolicy(cfg, ragLogger)

	// 2. AI Providers
	embeddingProvider, err := embedding.NewEmbeddingProvider(embedding.Settings{
		Provider: cfg.Ai.EmbeddingProvider,
		Model:    cfg.Ai.EmbeddingModel,
		APIKey:   embeddingKey(cfg),
		BaseURL:  embeddingBaseURL(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	embeddingProvider = embedding.NewResilientProvider(embeddingProvider, cfg.Ai.EmbedRPS, policy)
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	llmProvider, err := factory.NewLLMProvider(factory.Settings{
		Provider:    cfg.Ai.LLMProvider,
		Model:       cfg.Ai.LLMModel,
		APIKey:      llmKey(cfg),
		BaseURL:     llmBaseURL(cfg),
		StaticReply: cfg.Ai.StaticReply,
	})
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3. Vector Store
	store, err := c.newVectorStore(cfg)
	if err != nil {
		return nil, err
	}

	// 4. Index (built once, before the server accepts requests)
	sysLogger.Info("Bootstrap", cfg.Persona.IndexingNotice, map[string]interface{}{
		"data_dir":     cfg.Rag.DataDir,
		"vector_store": cfg.Rag.VectorStore,
	})
	builder := index.NewBuilder(
		loader.NewDirectoryLoader(cfg.Rag.DataDir, sysLogger),
		embeddingProvider,
		store,
		index.BuilderConfig{
			ChunkSize:    cfg.Rag.ChunkSize,
			ChunkOverlap: cfg.Rag.ChunkOverlap,
		},
		ragLogger,
	)
	idx, err := index.NewCache(builder.Build).Get(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("build index: %w", err)
	}
	stats := idx.Stats()
	log.Printf("[INFO] Index ready: %d documents, %d chunks in %s", stats.Documents, stats.Chunks, stats.BuildDuration)

	chatEngine := engine.NewContextChatEngine(
		idx,
		llm.NewResilientProvider(llmProvider, policy),
		cfg.Persona.SystemPrompt,
		cfg.Rag.SimilarityTopK,
		ragLogger,
	)

	// 5. Sessions
	sessionRepo := memory.NewSessionRepository(cfg.Session.TTL)
	sessionRepo.OnEvicted(func(sessionID string) {
		sysLogger.Info("Session", "Session expired", map[string]interface{}{"session_id": sessionID})
	})

	secret := cfg.Session.Secret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		log.Printf("[WARN] SESSION_SECRET is not set. Using a random secret, tokens will not survive a restart")
	}
	tokens := serverutils.NewSessionTokens(secret, cfg.Session.TTL)

	// 6. Event Bus
	// publishers block until the consumer acks so frames keep their order
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 7. Infrastructure
	var external events.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			external = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	rdb := newRedisClient(ctx, cfg.App.RedisURL)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// WebSocket Hub
	wsHub := websocket.NewHub(rdb, wsLogger)
	c.WebSocketHub = wsHub

	// 8. Services
	publisherService := service.NewPublisherService(cfg.App.ChatTurnTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.ChatTurnTopic, wsHub, external, wsLogger)

	chatService := service.NewChatService(
		sessionRepo,
		chatEngine,
		tokens,
		publisherService,
		cfg.Persona,
		service.MemorySettings{
			TokenLimit: cfg.Rag.MemoryTokenLimit,
			Counter:    ragmemory.NewTiktokenCounter(),
		},
		sysLogger,
	)
	indexService := service.NewIndexService(idx, cfg.Rag.VectorStore, cfg.Rag.DataDir)

	// 9. Controllers
	c.ChatController = controller.NewChatController(chatService, tokens)
	c.IndexController = controller.NewIndexController(indexService)
	c.ChatWsHandler = handler.NewChatWsHandler(chatService, tokens, wsHub, wsLogger)

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}

func (c *Container) newVectorStore(cfg *config.Config) (vectorstore.VectorStore, error) {
	switch cfg.Rag.VectorStore {
	case "memory", "":
		return vsmemory.NewStore(), nil
	case "pgvector":
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		c.closers = append(c.closers, closeDB(db))
		if err := database.Migrate(db, &model.DocumentChunk{}); err != nil {
			c.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		return pgstore.NewStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported vector store: %s", cfg.Rag.VectorStore)
	}
}

func closeDB(db *gorm.DB) func() {
	return func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func newRedisClient(ctx context.Context, url string) *redis.Client {
	if url == "" {
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Running without cluster fan-out", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func retryPolicy(cfg *config.Config, l logger.ILogger) llm.RetryPolicy {
	policy := llm.DefaultRetryPolicy()
	policy.Timeout = cfg.Ai.RequestTimeout
	if cfg.Ai.MaxRetries >= 0 {
		policy.MaxAttempts = uint(cfg.Ai.MaxRetries) + 1
	}
	policy.Notify = func(err error, wait time.Duration) {
		l.Warn("Provider", "Retrying provider call", map[string]interface{}{
			"error": err.Error(),
			"wait":  wait.String(),
		})
	}
	return policy
}

func embeddingKey(cfg *config.Config) string {
	if cfg.Ai.EmbeddingProvider == "openai" {
		return cfg.Keys.OpenAI
	}
	return cfg.Keys.GoogleGemini
}

func embeddingBaseURL(cfg *config.Config) string {
	if cfg.Ai.EmbeddingProvider == "openai" {
		return cfg.Ai.OpenAIBaseURL
	}
	return cfg.Ai.OllamaBaseURL
}

func llmKey(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "openai" {
		return cfg.Keys.OpenAI
	}
	return cfg.Keys.GoogleGemini
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "openai" {
		return cfg.Ai.OpenAIBaseURL
	}
	return cfg.Ai.OllamaBaseURL
}
