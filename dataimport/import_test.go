package dataimport

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dora-ryukyu/word2vec3d/corpus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRecords_CSV(t *testing.T) {
	path := writeFile(t, "words.csv", "Category,Text\nfruit,apple\n,plain\nanimals, dog \nx,\n")

	records, err := LoadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{Text: "apple", Category: "fruit"},
		{Text: "plain"},
		{Text: "dog", Category: "animals"},
	}, records)
}

func TestLoadRecords_CSVMissingHeader(t *testing.T) {
	path := writeFile(t, "words.csv", "word\napple\n")

	_, err := LoadRecords(path)
	assert.ErrorContains(t, err, "missing 'text' column")
}

func TestLoadRecords_JSONStrings(t *testing.T) {
	path := writeFile(t, "words.json", `["apple", " ", "banana"]`)

	records, err := LoadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, []Record{{Text: "apple"}, {Text: "banana"}}, records)
}

func TestLoadRecords_JSONObjects(t *testing.T) {
	path := writeFile(t, "words.json", `[
		{"text": "apple", "category": "fruit", "vector": [1, 2, 3]},
		{"text": "car"}
	]`)

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].HasVector())
	assert.False(t, records[1].HasVector())

	pending, embedded := Split(records)
	assert.Equal(t, []Record{{Text: "car"}}, pending)
	require.Len(t, embedded, 1)

	entry := embedded[0].Entry("input")
	assert.Equal(t, "fruit", entry.Category)
	assert.Equal(t, corpus.Vector{1, 2, 3}, entry.Vector)
	assert.Equal(t, "input", Record{Text: "x", Vector: []float32{1}}.Entry("input").Category)
}

func TestLoadRecords_JSONErrors(t *testing.T) {
	_, err := LoadRecords(writeFile(t, "a.json", `[{"category": "fruit"}]`))
	assert.ErrorContains(t, err, "entry 0 missing text field")

	_, err = LoadRecords(writeFile(t, "b.json", `{"text": "x"}`))
	assert.ErrorContains(t, err, "parsing JSON")

	_, err = LoadRecords(writeFile(t, "c.json", `[{"text": "a", "vector": [1, 2]}, {"text": "b", "vector": [1]}]`))
	var mismatch *corpus.DimensionMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 1, mismatch.Index)
	assert.Equal(t, 2, mismatch.Want)
}

func TestLoadRecords_Empty(t *testing.T) {
	_, err := LoadRecords(writeFile(t, "empty.json", `[]`))
	assert.ErrorIs(t, err, ErrNoRecords)

	_, err = LoadRecords(writeFile(t, "header.csv", "text\n"))
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestLoadRecords_UnsupportedExtension(t *testing.T) {
	_, err := LoadRecords(writeFile(t, "words.txt", "apple"))
	assert.ErrorContains(t, err, "unsupported file extension: .txt")
}
