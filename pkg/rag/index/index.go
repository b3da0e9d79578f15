// Package index builds the process-wide retrieval index over the document directory.
package index

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docchat-be/internal/pkg/logger"
	"docchat-be/pkg/embedding"
	"docchat-be/pkg/loader"
	"docchat-be/pkg/vectorstore"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	DefaultChunkSize    = 1024
	DefaultChunkOverlap = 200
	DefaultTopK         = 2
)

var ErrNoChunks = errors.New("documents produced no indexable chunks")

type DocumentLoader interface {
	Load(ctx context.Context) ([]loader.Document, error)
}

// Node is a retrieved chunk with its similarity score.
type Node struct {
	Chunk vectorstore.Chunk
	Score float64
}

type Stats struct {
	Documents     int
	Chunks        int
	BuildDuration time.Duration
	BuiltAt       time.Time
}

// Index is read-only after Build returns and is safe for concurrent use.
type Index struct {
	embedder embedding.EmbeddingProvider
	store    vectorstore.VectorStore
	stats    Stats
}

func (i *Index) Stats() Stats {
	return i.stats
}

// Retrieve embeds query and returns the topK most similar chunks.
func (i *Index) Retrieve(ctx context.Context, query string, topK int) ([]Node, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	res, err := i.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := i.store.Search(ctx, res.Embedding.Values, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	nodes := make([]Node, len(results))
	for n, r := range results {
		nodes[n] = Node{Chunk: r.Chunk, Score: r.Score}
	}
	return nodes, nil
}

// BuilderConfig sizes are in runes. Zero values select the defaults.
type BuilderConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

type Builder struct {
	loader   DocumentLoader
	embedder embedding.EmbeddingProvider
	store    vectorstore.VectorStore
	splitter textsplitter.RecursiveCharacter
	logger   logger.ILogger
}

func NewBuilder(l DocumentLoader, e embedding.EmbeddingProvider, s vectorstore.VectorStore, cfg BuilderConfig, log logger.ILogger) *Builder {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 5
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Builder{
		loader:   l,
		embedder: e,
		store:    s,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(cfg.ChunkSize),
			textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
		),
		logger: log,
	}
}

// Build loads, splits, embeds and stores every document. Any failure aborts
// the build and no Index is returned.
func (b *Builder) Build(ctx context.Context) (*Index, error) {
	start := time.Now()
	b.logger.Info("Index", "Indexing documents", nil)

	docs, err := b.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	chunks, err := b.split(docs)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	vectors := make([][]float32, len(chunks))
	for n, c := range chunks {
		res, err := b.embedder.Generate(ctx, c.Text, embedding.TaskRetrievalDocument)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %s#%d: %w", c.Source, c.Index, err)
		}
		vectors[n] = res.Embedding.Values
	}

	if err := b.store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset store: %w", err)
	}
	if err := b.store.Upsert(ctx, chunks, vectors); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}

	stats := Stats{
		Documents:     len(docs),
		Chunks:        len(chunks),
		BuildDuration: time.Since(start),
		BuiltAt:       time.Now(),
	}
	b.logger.Info("Index", "Index built", map[string]interface{}{
		"documents":   stats.Documents,
		"chunks":      stats.Chunks,
		"duration_ms": stats.BuildDuration.Milliseconds(),
	})

	return &Index{embedder: b.embedder, store: b.store, stats: stats}, nil
}

func (b *Builder) split(docs []loader.Document) ([]vectorstore.Chunk, error) {
	var chunks []vectorstore.Chunk
	for _, doc := range docs {
		parts, err := b.splitter.SplitText(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("split %s: %w", doc.Path, err)
		}

		n := 0
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			chunks = append(chunks, vectorstore.Chunk{
				ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s#%d", doc.ID, n))).String(),
				DocumentID: doc.ID,
				Source:     doc.Path,
				Title:      doc.Title,
				Index:      n,
				Text:       p,
			})
			n++
		}
	}
	return chunks, nil
}
