package engine

import (
	"fmt"
	"strings"

	"docchat-be/pkg/rag/index"
)

const contextTemplate = "Context information is below.\n--------------------\n%s\n--------------------\n"

// BuildSystemMessage appends the retrieved context block to the fixed
// system prompt. With no nodes the context block is still emitted, empty.
func BuildSystemMessage(systemPrompt string, nodes []index.Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, fmt.Sprintf("file_path: %s\n\n%s", n.Chunk.Source, n.Chunk.Text))
	}
	block := fmt.Sprintf(contextTemplate, strings.Join(parts, "\n\n"))

	if systemPrompt == "" {
		return block
	}
	return systemPrompt + "\n" + block
}
