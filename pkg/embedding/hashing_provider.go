package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

const HashingDefaultDimension = 768

// HashingProvider is an offline embedder: lower-cased word and rune-bigram
// features hashed into a fixed-size unit vector. Good enough for local runs
// and tests, no semantic quality.
type HashingProvider struct {
	Dimension int
}

func NewHashingProvider(dimension int) *HashingProvider {
	if dimension <= 0 {
		dimension = HashingDefaultDimension
	}
	return &HashingProvider{Dimension: dimension}
}

func (p *HashingProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, p.Dimension)
	for _, feature := range hashingFeatures(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(feature))
		vec[int(h.Sum32()%uint32(p.Dimension))] += 1
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: normalizeVector(vec)},
	}, nil
}

// Thai and similar scripts have no spaces, so rune bigrams carry most of the
// signal for them.
func hashingFeatures(text string) []string {
	var features []string
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		features = append(features, "w:"+w)
		runes := []rune(w)
		for i := 0; i+1 < len(runes); i++ {
			features = append(features, "b:"+string(runes[i:i+2]))
		}
	}
	return features
}
