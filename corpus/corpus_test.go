package corpus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_FixesDimensionFromFirstEntry(t *testing.T) {
	c := New(0)

	index, err := c.Append(Entry{Label: "dog", Category: "animals", Vector: Vector{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, 0, index)
	assert.Equal(t, 3, c.Dimension())

	_, err = c.Append(Entry{Label: "cat", Vector: Vector{1, 2}})
	var mismatch *DimensionMismatchError
	require.True(t, errors.As(err, &mismatch), "expected DimensionMismatchError, got %v", err)
	assert.Equal(t, 1, mismatch.Index)
	assert.Equal(t, 2, mismatch.Got)
	assert.Equal(t, 3, mismatch.Want)
	assert.Equal(t, 1, c.Len(), "rejected entry must not be stored")
}

func TestAppend_RejectsEmptyVector(t *testing.T) {
	c := New(4)
	_, err := c.Append(Entry{Label: "nothing"})
	assert.ErrorIs(t, err, ErrEmptyVector)
}

func TestAppend_CopiesVector(t *testing.T) {
	c := New(2)
	vector := Vector{1, 2}
	_, err := c.Append(Entry{Label: "a", Vector: vector})
	require.NoError(t, err)

	vector[0] = 99
	assert.Equal(t, 1.0, c.At(0).Vector[0])
}

func TestAppend_AllowsDuplicateLabels(t *testing.T) {
	c := New(1)
	for i := 0; i < 3; i++ {
		index, err := c.Append(Entry{Label: "same", Vector: Vector{float64(i)}})
		require.NoError(t, err)
		assert.Equal(t, i, index)
	}

	vectors := c.Vectors()
	require.Len(t, vectors, 3)
	for i, vector := range vectors {
		assert.Equal(t, float64(i), vector[0])
	}
}

func TestNewEntry_WidensFloat32(t *testing.T) {
	entry := NewEntry("word", "input", []float32{0.5, -1.25})
	assert.Equal(t, Vector{0.5, -1.25}, entry.Vector)
	assert.Equal(t, "word", entry.Label)
	assert.Equal(t, "input", entry.Category)
}

func TestCheckDimensions(t *testing.T) {
	assert.NoError(t, CheckDimensions([]Vector{{1, 2}, {3, 4}}, 2))

	err := CheckDimensions([]Vector{{1, 2}, {3, 4}, {5}}, 2)
	var mismatch *DimensionMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 2, mismatch.Index)
	assert.Contains(t, err.Error(), "vector 2 has dimension 1, want 2")
}
