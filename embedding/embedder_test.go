package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lengthEmbedder embeds a text as {len(text), 1}.
type lengthEmbedder struct {
	calls int
	fail  bool
}

func (e *lengthEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *lengthEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.fail {
		return nil, errors.New("backend down")
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), 1}
	}
	return vectors, nil
}

func TestEmbedEntries_Batches(t *testing.T) {
	texts := make([]string, DefaultBatchSize*2+5)
	categories := make([]string, len(texts))
	for i := range texts {
		texts[i] = string(make([]byte, i%7))
		categories[i] = "cat"
	}

	var progressCalls []int
	embedder := &lengthEmbedder{}
	entries, err := EmbedEntries(context.Background(), embedder, texts, categories, func(done, total int) {
		assert.Equal(t, len(texts), total)
		progressCalls = append(progressCalls, done)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, embedder.calls)
	assert.Equal(t, []int{DefaultBatchSize, DefaultBatchSize * 2, len(texts)}, progressCalls)
	require.Len(t, entries, len(texts))
	for i, entry := range entries {
		assert.Equal(t, float64(i%7), entry.Vector[0])
		assert.Equal(t, "cat", entry.Category)
	}
}

func TestEmbedEntries_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := EmbedEntries(ctx, &lengthEmbedder{}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = EmbedEntries(ctx, &lengthEmbedder{}, []string{"a", "b"}, []string{"x"}, nil)
	assert.ErrorContains(t, err, "1 categories for 2 texts")

	_, err = EmbedEntries(ctx, &lengthEmbedder{fail: true}, []string{"a"}, nil, nil)
	assert.ErrorContains(t, err, "backend down")
}
