// Package session ties the embedding store, the PCA engine and the range
// scaler together for one visualization run.
//
// A session is fitted once from an initial batch. Every later entry is
// projected through the frozen basis and extends the scaler bounds, after
// which the whole point set is renormalized.
package session

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/dora-ryukyu/word2vec3d/corpus"
	"github.com/dora-ryukyu/word2vec3d/preload"
	"github.com/dora-ryukyu/word2vec3d/projection"

	"gonum.org/v1/gonum/floats"
)

// Options configures a session. The zero value uses the power-iteration
// solver, default tunables, the preset palette and a discarding logger.
type Options struct {
	Solver   projection.Solver
	Tunables projection.Tunables

	// Palette maps categories to "#rrggbb" colours. Nil means preload.Palette().
	Palette map[string]string

	Logger *slog.Logger
}

// Point is one corpus entry as the renderer consumes it.
type Point struct {
	Index      int
	Label      string
	Category   string
	Projection projection.Point3D // raw PCA coordinates
	Normalized projection.Point3D // position in [0,1]³
	Color      string
}

// Stats summarizes the fitted basis and the current bounds.
type Stats struct {
	Count             int
	Dimension         int
	Eigenvalues       [projection.Dimensions]float64
	ExplainedVariance [projection.Dimensions]float64
	Bounds            projection.ScalerState
}

// Neighbor is an entry ranked by cosine similarity to another one.
type Neighbor struct {
	Index      int
	Label      string
	Similarity float64
}

// Session is safe for concurrent use: Add takes the write lock, every reader
// takes the read lock.
type Session struct {
	mu          sync.RWMutex
	corpus      *corpus.Corpus
	basis       projection.Basis
	projections []projection.Point3D
	scaler      projection.Scaler
	bounds      projection.ScalerState
	palette     map[string]string
	logger      *slog.Logger
}

// New fits a session on entries. At least two entries are required.
func New(entries []corpus.Entry, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	palette := opts.Palette
	if palette == nil {
		palette = preload.Palette()
	}

	store := corpus.New(0)
	for _, entry := range entries {
		if _, err := store.Append(entry); err != nil {
			return nil, fmt.Errorf("add %q: %w", entry.Label, err)
		}
	}

	vectors := store.Vectors()
	basis, err := projection.FitUsing(opts.Solver, vectors, opts.Tunables)
	if err != nil {
		return nil, fmt.Errorf("fit basis: %w", err)
	}
	projections, err := projection.Project(vectors, basis)
	if err != nil {
		return nil, fmt.Errorf("project corpus: %w", err)
	}

	scaler := projection.NewScaler(opts.Tunables)
	session := &Session{
		corpus:      store,
		basis:       basis,
		projections: projections,
		scaler:      scaler,
		bounds:      scaler.Fit(projections),
		palette:     palette,
		logger:      logger,
	}

	logger.Debug("session fitted",
		"entries", store.Len(),
		"dimension", store.Dimension(),
		"solver", string(opts.Solver),
		"eigenvalues", basis.Eigenvalues,
		"explained", basis.ExplainedVariance(),
	)
	return session, nil
}

// Add projects entry through the fitted basis, appends it and widens the
// bounds. The returned point is normalized against the new bounds; every
// other point may have moved too, so callers redraw from Points.
func (s *Session) Add(entry corpus.Entry) (Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projected, err := projection.ProjectOne(entry.Vector, s.basis)
	if err != nil {
		return Point{}, fmt.Errorf("project %q: %w", entry.Label, err)
	}
	index, err := s.corpus.Append(entry)
	if err != nil {
		return Point{}, fmt.Errorf("add %q: %w", entry.Label, err)
	}

	previous := s.bounds
	s.projections = append(s.projections, projected)
	s.bounds = s.scaler.Update(projected, s.bounds)

	if s.bounds.Mins != previous.Mins || s.bounds.Maxs != previous.Maxs {
		s.logger.Debug("bounds widened", "label", entry.Label, "mins", s.bounds.Mins, "maxs", s.bounds.Maxs)
	}

	return s.pointLocked(index), nil
}

// Len returns the number of entries.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus.Len()
}

// Basis returns the frozen projection basis.
func (s *Session) Basis() projection.Basis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.basis
}

// Entry returns the entry at index i.
func (s *Session) Entry(i int) corpus.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus.At(i)
}

// Points renormalizes every entry against the current bounds.
func (s *Session) Points() []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := make([]Point, s.corpus.Len())
	for index := range points {
		points[index] = s.pointLocked(index)
	}
	return points
}

func (s *Session) pointLocked(index int) Point {
	entry := s.corpus.At(index)
	normalized := s.scaler.Normalize(s.projections[index], s.bounds)
	return Point{
		Index:      index,
		Label:      entry.Label,
		Category:   entry.Category,
		Projection: s.projections[index],
		Normalized: normalized,
		Color:      ColorFor(entry.Category, normalized, s.palette),
	}
}

// Stats reports the basis eigenvalues and current bounds.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Count:             s.corpus.Len(),
		Dimension:         s.corpus.Dimension(),
		Eigenvalues:       s.basis.Eigenvalues,
		ExplainedVariance: s.basis.ExplainedVariance(),
		Bounds:            s.bounds,
	}
}

// Categories returns the distinct categories in order of first appearance.
func (s *Session) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var categories []string
	for index := 0; index < s.corpus.Len(); index++ {
		category := s.corpus.At(index).Category
		if !seen[category] {
			seen[category] = true
			categories = append(categories, category)
		}
	}
	return categories
}

// Neighbors returns up to k entries most similar to entry index by cosine
// similarity of their embeddings, most similar first.
func (s *Session) Neighbors(index, k int) []Neighbor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= s.corpus.Len() || k <= 0 {
		return nil
	}

	selected := s.corpus.At(index).Vector
	neighbors := make([]Neighbor, 0, s.corpus.Len()-1)
	for candidateIndex := 0; candidateIndex < s.corpus.Len(); candidateIndex++ {
		if candidateIndex == index {
			continue
		}
		candidate := s.corpus.At(candidateIndex)
		neighbors = append(neighbors, Neighbor{
			Index:      candidateIndex,
			Label:      candidate.Label,
			Similarity: CosineSimilarity(selected, candidate.Vector),
		})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Similarity > neighbors[j].Similarity
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// CosineSimilarity returns a value in [-1, 1], or 0 when either vector has
// zero length or the lengths differ.
func CosineSimilarity(a, b corpus.Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}
