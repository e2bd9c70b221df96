// Package embedding defines the interface for text embedding providers.
// It allows the application to use different embedding backends (Ollama, Hugging Face, etc.)
// interchangeably, and builds corpus entries from their output.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/dora-ryukyu/word2vec3d/corpus"
)

// ErrEmptyInput is returned when there is no text to embed.
var ErrEmptyInput = errors.New("embedding: empty input")

// DefaultBatchSize is how many texts EmbedEntries sends per request.
const DefaultBatchSize = 32

// Embedder is the interface that text embedding providers must implement.
type Embedder interface {
	// Embed converts the provided text into a vector embedding.
	// It returns ErrEmptyInput if text is empty.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Progress is called after each batch with the number of texts embedded so far.
type Progress func(done, total int)

// EmbedEntries embeds texts in batches and pairs each vector with its label
// and category. categories may be nil, or must be as long as texts.
func EmbedEntries(ctx context.Context, embedder Embedder, texts, categories []string, progress Progress) ([]corpus.Entry, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	if categories != nil && len(categories) != len(texts) {
		return nil, fmt.Errorf("embedding: %d categories for %d texts", len(categories), len(texts))
	}

	entries := make([]corpus.Entry, 0, len(texts))
	for start := 0; start < len(texts); start += DefaultBatchSize {
		end := min(start+DefaultBatchSize, len(texts))

		vectors, err := embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("embed batch %d-%d: got %d vectors", start, end, len(vectors))
		}

		for offset, vector := range vectors {
			var category string
			if categories != nil {
				category = categories[start+offset]
			}
			entries = append(entries, corpus.NewEntry(texts[start+offset], category, vector))
		}

		if progress != nil {
			progress(end, len(texts))
		}
	}

	return entries, nil
}
