package projection

import (
	"errors"
	"fmt"

	"github.com/dora-ryukyu/word2vec3d/corpus"

	"gonum.org/v1/gonum/mat"
)

// Solver selects how the principal axes are computed.
type Solver string

const (
	// SolverPowerIteration is the dual-space power iteration of Fit.
	SolverPowerIteration Solver = "power"

	// SolverSVD factorizes the centered data matrix directly. It is exact up
	// to floating point, but the sign of each axis is arbitrary and the cost
	// grows with the embedding width.
	SolverSVD Solver = "svd"
)

// errSVDFailed is returned when gonum's SVD does not converge.
var errSVDFailed = errors.New("projection: SVD factorization failed")

// FitUsing dispatches to the requested solver. An empty solver means
// SolverPowerIteration.
func FitUsing(solver Solver, vectors []corpus.Vector, tunables Tunables) (Basis, error) {
	switch solver {
	case "", SolverPowerIteration:
		return FitWithTunables(vectors, tunables)
	case SolverSVD:
		return FitSVD(vectors)
	default:
		return Basis{}, fmt.Errorf("projection: unknown solver %q", solver)
	}
}

// FitSVD computes the same kind of basis as Fit using a thin singular value
// decomposition of the centered data:
//
//	X = U * Σ * V^T
//
// The first three columns of V are the principal axes and the squared
// singular values are the matching eigenvalues of X*X^T. When the data has
// fewer than three singular vectors the missing axes are zero vectors.
func FitSVD(vectors []corpus.Vector) (Basis, error) {
	numberOfVectors := len(vectors)
	if numberOfVectors < 2 {
		return Basis{}, fmt.Errorf("fit %d vectors: %w", numberOfVectors, ErrInsufficientData)
	}

	embeddingDimension := len(vectors[0])
	if embeddingDimension == 0 {
		return Basis{}, corpus.ErrEmptyVector
	}
	if err := corpus.CheckDimensions(vectors, embeddingDimension); err != nil {
		return Basis{}, err
	}

	dataMatrix := convertVectorsToMatrix(vectors, numberOfVectors, embeddingDimension)
	meanVector := calculateColumnMeans(dataMatrix, embeddingDimension)
	centerDataMatrix(dataMatrix, meanVector, numberOfVectors)

	var svdDecomposition mat.SVD
	if !svdDecomposition.Factorize(dataMatrix, mat.SVDThin) {
		return Basis{}, errSVDFailed
	}

	var rightSingularVectors mat.Dense
	svdDecomposition.VTo(&rightSingularVectors)
	singularValues := svdDecomposition.Values(nil)

	basis := Basis{Mean: meanVector}
	for _, singularValue := range singularValues {
		basis.TotalVariance += singularValue * singularValue
	}

	_, numberOfSingularVectors := rightSingularVectors.Dims()
	for componentIndex := 0; componentIndex < Dimensions; componentIndex++ {
		if componentIndex >= numberOfSingularVectors {
			basis.Components[componentIndex] = make(corpus.Vector, embeddingDimension)
			continue
		}
		basis.Components[componentIndex] = mat.Col(nil, componentIndex, &rightSingularVectors)
		basis.Eigenvalues[componentIndex] = singularValues[componentIndex] * singularValues[componentIndex]
	}

	return basis, nil
}
