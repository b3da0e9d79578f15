package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"docchat-be/internal/config"
	"docchat-be/internal/pkg/logger"
	"docchat-be/pkg/chat"
	"docchat-be/pkg/embedding"
	"docchat-be/pkg/llm"
	"docchat-be/pkg/llm/factory"
	"docchat-be/pkg/loader"
	"docchat-be/pkg/rag/engine"
	"docchat-be/pkg/rag/index"
	"docchat-be/pkg/rag/memory"
	vsmemory "docchat-be/pkg/vectorstore/memory"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const dryRunReply = "(dry run) no model was called"

type askOptions struct {
	dataDir     string
	dryRun      bool
	topK        int
	interactive bool
	sources     bool
	verbose     bool
}

var (
	botColor    = color.New(color.FgCyan)
	userColor   = color.New(color.FgGreen, color.Bold)
	sourceColor = color.New(color.FgHiBlack)
	errColor    = color.New(color.FgRed)
	noticeColor = color.New(color.FgYellow)
)

func newRootCmd() *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask questions about a directory of documents",
		Long: `Indexes every document under the data directory and answers questions
using the configured chat model, grounded on the most similar passages.
Without arguments, or with --interactive, questions are read from stdin.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.dataDir, "data-dir", "d", "", "directory to index (default DATA_DIR)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "use the hashing embedder and a static reply, no API calls")
	cmd.Flags().IntVarP(&opts.topK, "top-k", "k", 0, "passages retrieved per question (default SIMILARITY_TOP_K)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "keep asking until EOF or \"exit\"")
	cmd.Flags().BoolVar(&opts.sources, "sources", true, "print the passages each answer was grounded on")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to the console and LOG_FILE_PATH")

	return cmd
}

func runAsk(cmd *cobra.Command, opts *askOptions, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	cfg := config.Load()
	if opts.dataDir != "" {
		cfg.Rag.DataDir = opts.dataDir
	}
	if opts.topK > 0 {
		cfg.Rag.SimilarityTopK = opts.topK
	}
	if !opts.dryRun {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	var log logger.ILogger = logger.NopLogger{}
	if opts.verbose {
		log = logger.NewZapLogger(cfg.App.LogFilePath, false)
		defer log.Sync()
	}

	embedder, provider, err := newProviders(cfg, opts.dryRun)
	if err != nil {
		return err
	}

	noticeColor.Fprintln(out, cfg.Persona.IndexingNotice)
	builder := index.NewBuilder(
		loader.NewDirectoryLoader(cfg.Rag.DataDir, log),
		embedder,
		vsmemory.NewStore(),
		index.BuilderConfig{ChunkSize: cfg.Rag.ChunkSize, ChunkOverlap: cfg.Rag.ChunkOverlap},
		log,
	)
	idx, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	stats := idx.Stats()
	noticeColor.Fprintf(out, "Indexed %d documents (%d chunks)\n", stats.Documents, stats.Chunks)

	chatEngine := engine.NewContextChatEngine(idx, provider, cfg.Persona.SystemPrompt, cfg.Rag.SimilarityTopK, log)
	session := chat.NewSession(
		uuid.NewString(),
		cfg.Persona.Greeting,
		memory.NewBuffer(cfg.Rag.MemoryTokenLimit, memory.NewTiktokenCounter()),
	)

	if len(args) > 0 && !opts.interactive {
		return askOnce(ctx, out, chatEngine, session, strings.Join(args, " "), opts.sources)
	}

	botColor.Fprintln(out, cfg.Persona.Greeting)
	if len(args) > 0 {
		if err := askOnce(ctx, out, chatEngine, session, strings.Join(args, " "), opts.sources); err != nil {
			errColor.Fprintln(out, err)
		}
	}
	return repl(ctx, cmd.InOrStdin(), out, chatEngine, session, opts.sources)
}

func newProviders(cfg *config.Config, dryRun bool) (embedding.EmbeddingProvider, llm.LLMProvider, error) {
	if dryRun {
		return embedding.NewHashingProvider(embedding.HashingDefaultDimension), llm.NewStaticProvider(dryRunReply), nil
	}

	policy := llm.DefaultRetryPolicy()
	policy.Timeout = cfg.Ai.RequestTimeout
	if cfg.Ai.MaxRetries >= 0 {
		policy.MaxAttempts = uint(cfg.Ai.MaxRetries) + 1
	}

	key, baseURL := cfg.Keys.GoogleGemini, cfg.Ai.OllamaBaseURL
	if cfg.Ai.EmbeddingProvider == "openai" {
		key, baseURL = cfg.Keys.OpenAI, cfg.Ai.OpenAIBaseURL
	}
	embedder, err := embedding.NewEmbeddingProvider(embedding.Settings{
		Provider: cfg.Ai.EmbeddingProvider,
		Model:    cfg.Ai.EmbeddingModel,
		APIKey:   key,
		BaseURL:  baseURL,
	})
	if err != nil {
		return nil, nil, err
	}

	key, baseURL = cfg.Keys.GoogleGemini, cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "openai" {
		key, baseURL = cfg.Keys.OpenAI, cfg.Ai.OpenAIBaseURL
	}
	provider, err := factory.NewLLMProvider(factory.Settings{
		Provider:    cfg.Ai.LLMProvider,
		Model:       cfg.Ai.LLMModel,
		APIKey:      key,
		BaseURL:     baseURL,
		StaticReply: cfg.Ai.StaticReply,
	})
	if err != nil {
		return nil, nil, err
	}

	return embedding.NewResilientProvider(embedder, cfg.Ai.EmbedRPS, policy), llm.NewResilientProvider(provider, policy), nil
}

func repl(ctx context.Context, in io.Reader, out io.Writer, chatEngine *engine.ContextChatEngine, session *chat.Session, showSources bool) error {
	scanner := bufio.NewScanner(in)
	for {
		userColor.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch question {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		if err := askOnce(ctx, out, chatEngine, session, question, showSources); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			errColor.Fprintln(out, err)
		}
	}
}

// askOnce runs one turn. A failed turn leaves the transcript as it was.
func askOnce(ctx context.Context, out io.Writer, chatEngine *engine.ContextChatEngine, session *chat.Session, question string, showSources bool) error {
	if err := session.Begin(question); err != nil {
		return err
	}

	res, err := chatEngine.Chat(ctx, session.Memory, question)
	if err != nil {
		_ = session.Abort()
		return fmt.Errorf("chat failed: %w", err)
	}
	if err := session.Complete(res.Answer, res.Sources); err != nil {
		return err
	}

	botColor.Fprintln(out, res.Answer)
	if showSources {
		for _, src := range res.Sources {
			sourceColor.Fprintf(out, "  [%s #%d] %.3f\n", src.Source, src.ChunkIndex, src.Score)
		}
	}
	return nil
}
