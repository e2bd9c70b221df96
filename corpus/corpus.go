// Package corpus holds the embedding store: an append-only, ordered list of
// labelled embedding vectors sharing one fixed dimensionality.
//
// An entry's position in the corpus is its identity. Projections, normalized
// coordinates and UI elements are all correlated with entries by index, so the
// corpus never deletes or reorders anything.
package corpus

import (
	"errors"
	"fmt"
)

// ErrEmptyVector is returned when an entry carries a zero-length vector.
var ErrEmptyVector = errors.New("corpus: empty vector")

// DimensionMismatchError reports a vector whose length disagrees with the
// dimensionality fixed for the session.
type DimensionMismatchError struct {
	Index int // position of the offending vector in its batch or corpus
	Got   int
	Want  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("corpus: vector %d has dimension %d, want %d", e.Index, e.Got, e.Want)
}

// Vector is a dense embedding in float64 precision.
type Vector []float64

// Clone returns a copy of the vector that shares no memory with v.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	cloned := make(Vector, len(v))
	copy(cloned, v)
	return cloned
}

// Entry is a labelled embedding. Duplicate labels are allowed.
type Entry struct {
	Label    string
	Category string
	Vector   Vector
}

// NewEntry builds an entry from float32 model output, widening every
// component to float64.
func NewEntry(label, category string, embedding []float32) Entry {
	vector := make(Vector, len(embedding))
	for componentIndex, component := range embedding {
		vector[componentIndex] = float64(component)
	}
	return Entry{Label: label, Category: category, Vector: vector}
}

// Corpus is an append-only sequence of entries. It is not safe for
// concurrent mutation; callers serialize writers.
type Corpus struct {
	dimension int
	entries   []Entry
}

// New creates an empty corpus for vectors of the given dimension. A dimension
// of zero defers the choice to the first appended entry.
func New(dimension int) *Corpus {
	return &Corpus{dimension: dimension}
}

// Append copies the entry into the corpus and returns its index.
func (c *Corpus) Append(entry Entry) (int, error) {
	if len(entry.Vector) == 0 {
		return -1, ErrEmptyVector
	}
	if c.dimension == 0 {
		c.dimension = len(entry.Vector)
	}
	if len(entry.Vector) != c.dimension {
		return -1, &DimensionMismatchError{Index: len(c.entries), Got: len(entry.Vector), Want: c.dimension}
	}

	entry.Vector = entry.Vector.Clone()
	c.entries = append(c.entries, entry)
	return len(c.entries) - 1, nil
}

// Len returns the number of entries.
func (c *Corpus) Len() int { return len(c.entries) }

// Dimension returns the fixed vector width, or zero if nothing was appended
// to a corpus created without one.
func (c *Corpus) Dimension() int { return c.dimension }

// At returns the entry at index i.
func (c *Corpus) At(i int) Entry { return c.entries[i] }

// Entries returns a copy of the entry list in index order. Vectors are shared
// with the corpus and must not be modified.
func (c *Corpus) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Vectors returns every vector in index order.
func (c *Corpus) Vectors() []Vector {
	out := make([]Vector, len(c.entries))
	for entryIndex, entry := range c.entries {
		out[entryIndex] = entry.Vector
	}
	return out
}

// CheckDimensions verifies that every vector has length want. It returns the
// first mismatch as a *DimensionMismatchError.
func CheckDimensions(vectors []Vector, want int) error {
	for vectorIndex, vector := range vectors {
		if len(vector) != want {
			return &DimensionMismatchError{Index: vectorIndex, Got: len(vector), Want: want}
		}
	}
	return nil
}
