package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"hash/fnv"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/dora-ryukyu/word2vec3d/config"
	"github.com/dora-ryukyu/word2vec3d/corpus"
	"github.com/dora-ryukyu/word2vec3d/embedding"
	"github.com/dora-ryukyu/word2vec3d/huggingface"
	"github.com/dora-ryukyu/word2vec3d/preload"
	"github.com/dora-ryukyu/word2vec3d/qdrant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeDimension = 8

// hashEmbedder maps each text to a fixed pseudo-random unit-scale vector.
type hashEmbedder struct{}

func (hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, embedding.ErrEmptyInput
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := float64(h.Sum32()%10007) / 101

	vector := make([]float32, fakeDimension)
	for i := range vector {
		vector[i] = float32(math.Sin(seed * float64(i+1)))
	}
	return vector, nil
}

func (e hashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

type memoryStore struct {
	points []qdrant.Point
	saved  []corpus.Entry
}

func (m *memoryStore) GetAll(context.Context) ([]qdrant.Point, error) {
	return m.points, nil
}

func (m *memoryStore) Save(_ context.Context, entry corpus.Entry) (string, error) {
	m.saved = append(m.saved, entry)
	return "id", nil
}

type fakeDataset struct {
	texts []string
}

func (f fakeDataset) ResolveSplit(_ context.Context, dataset, config, split string) (huggingface.Split, error) {
	return huggingface.Split{Dataset: dataset, Config: "default", Split: "train"}, nil
}

func (f fakeDataset) FetchTexts(_ context.Context, _, config, split, _ string, maxRows int) ([]string, error) {
	if config != "default" || split != "train" {
		return nil, nil
	}
	return f.texts[:min(maxRows, len(f.texts))], nil
}

// useFakes swaps the backends for in-memory fakes and resets global flags.
func useFakes(t *testing.T, store entryStore) {
	t.Helper()
	savedEmbedder, savedStore, savedDataset := newEmbedder, openStore, newDatasetClient
	t.Cleanup(func() {
		newEmbedder, openStore, newDatasetClient = savedEmbedder, savedStore, savedDataset
	})

	newEmbedder = func(*config.Config) (embedding.Embedder, error) { return hashEmbedder{}, nil }
	openStore = func(context.Context, *config.Config) (entryStore, func(), error) {
		return store, func() {}, nil
	}

	for _, name := range []string{"config", "backend", "verbose", "qdrant", "import", "hf-dataset", "hf-config", "hf-split", "hf-column", "hf-max-rows", "no-presets"} {
		flag := rootCmd.PersistentFlags().Lookup(name)
		require.NoError(t, flag.Value.Set(flag.DefValue))
		flag.Changed = false
	}
	jsonFlag := projectCmd.Flags().Lookup("json")
	require.NoError(t, jsonFlag.Value.Set(jsonFlag.DefValue))
	jsonFlag.Changed = false
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestProjectJSON(t *testing.T) {
	useFakes(t, nil)

	out, err := execute(t, "project", "--json", "tiger", " ")
	require.NoError(t, err)

	var result projectOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.Equal(t, 81, result.Count)
	assert.Equal(t, fakeDimension, result.Dimension)
	require.Len(t, result.Points, 81)

	first := result.Points[0]
	assert.Equal(t, "apple", first.Label)
	assert.Equal(t, "fruit", first.Category)
	assert.Equal(t, "#ef4444", first.Color)

	last := result.Points[80]
	assert.Equal(t, "tiger", last.Label)
	assert.Equal(t, preload.UserCategory, last.Category)
	assert.Regexp(t, `^#[0-9a-f]{6}$`, last.Color)

	for _, point := range result.Points {
		for axis, value := range point.Normalized {
			assert.GreaterOrEqual(t, value, 0.0, "%s axis %d", point.Label, axis)
			assert.LessOrEqual(t, value, 1.0, "%s axis %d", point.Label, axis)
		}
	}
	assert.Greater(t, result.Eigenvalues[0], result.Eigenvalues[1])
}

func TestProjectTable(t *testing.T) {
	useFakes(t, nil)

	out, err := execute(t, "project")
	require.NoError(t, err)
	assert.Contains(t, out, "80 entries, dimension 8")
	assert.Contains(t, out, "LABEL")
	assert.Contains(t, out, "courage")
}

func TestProjectPersistsAddedWords(t *testing.T) {
	store := &memoryStore{}
	useFakes(t, store)

	_, err := execute(t, "project", "--qdrant", "tiger")
	require.NoError(t, err)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "tiger", store.saved[0].Label)
}

func TestVersion(t *testing.T) {
	useFakes(t, nil)

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestUnknownBackendRejected(t *testing.T) {
	useFakes(t, nil)

	_, err := execute(t, "project", "--backend", "openai")
	assert.ErrorContains(t, err, `unknown backend "openai"`)
}

func TestProjectNeedsTwoEntries(t *testing.T) {
	useFakes(t, nil)

	_, err := execute(t, "project", "--no-presets")
	assert.Error(t, err)
}

func TestCollectEntries_AllSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"text": "violin", "category": "music"},
		{"text": "drum"},
		{"text": "preset", "vector": [1, 0, 0, 0, 0, 0, 0, 0]}
	]`), 0o600))

	saved := newDatasetClient
	t.Cleanup(func() { newDatasetClient = saved })
	newDatasetClient = func() datasetFetcher { return fakeDataset{texts: []string{"first row", "second row", "third row"}} }

	stored, _ := hashEmbedder{}.Embed(context.Background(), "stored")
	store := &memoryStore{points: []qdrant.Point{{ID: "p1", Label: "stored", Category: "input", Vector: stored}}}

	var stages []string
	entries, err := collectEntries(context.Background(), sourceOptions{
		embedder:   hashEmbedder{},
		store:      store,
		presets:    true,
		importPath: path,
		dataset:    datasetOptions{name: "org/reviews", column: "text", maxRows: 2},
		progress: func(stage string) embedding.Progress {
			stages = append(stages, stage)
			return nil
		},
	})
	require.NoError(t, err)

	require.Len(t, entries, 80+1+3+2)
	assert.Equal(t, "stored", entries[80].Label)
	assert.Equal(t, "violin", entries[81].Label)
	assert.Equal(t, "music", entries[81].Category)
	assert.Equal(t, importCategory, entries[82].Category)
	assert.Equal(t, "preset", entries[83].Label)
	assert.Equal(t, corpus.Vector{1, 0, 0, 0, 0, 0, 0, 0}, entries[83].Vector)
	assert.Equal(t, "reviews", entries[84].Category)
	assert.Equal(t, "second row", entries[85].Label)

	assert.Equal(t, []string{"presets", "import", "dataset"}, stages)
	assert.Len(t, store.saved, 5)
}

func TestProgressPrinter(t *testing.T) {
	var out bytes.Buffer
	progress := progressPrinter(&out)("presets")
	progress(32, 80)
	progress(80, 80)

	assert.Equal(t, "\rpresets [32/80]\rpresets [80/80]\n", out.String())
}
