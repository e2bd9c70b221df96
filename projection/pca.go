// Package projection reduces high-dimensional embedding vectors to 3D
// coordinates and rescales them into the unit cube for rendering.
//
// # Principal Component Analysis in the dual space
//
// A corpus of word embeddings usually has far fewer vectors (n, tens to low
// hundreds of words) than dimensions (d, hundreds). Forming the d×d
// covariance matrix would waste both memory and time, so Fit works on the
// n×n Gram matrix of the centered data instead:
//
//	G = X * X^T     where X is the centered (n x d) data matrix
//
// If v is a unit eigenvector of G with eigenvalue λ, then X^T*v / √λ is a unit
// eigenvector of the covariance matrix X^T*X with the same eigenvalue. That is
// the principal axis in embedding space.
//
// # Power iteration with deflation
//
// The top three eigenvectors of G are found one at a time by repeatedly
// multiplying a start vector by G and renormalizing. Before every step the
// directions already found are projected out (deflation), so each iteration
// converges to the next largest eigenvalue. Start vectors come from Seed, not
// from a random generator, which keeps Fit reproducible.
//
// # Frozen basis
//
// Fit runs once per session. Points added later go through Project with the
// same Basis, so every point lives in one coordinate frame no matter when it
// was added. There is no incremental refit.
package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/dora-ryukyu/word2vec3d/corpus"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned when fewer than two vectors are given to Fit.
var ErrInsufficientData = errors.New("projection: need at least 2 vectors to fit")

// Point3D is a coordinate in the projected space, one value per principal axis.
type Point3D [Dimensions]float64

// IsFinite reports whether no coordinate is NaN or infinite.
func (p Point3D) IsFinite() bool {
	for _, value := range p {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return false
		}
	}
	return true
}

// Basis is a fitted projection: the corpus mean and three principal axes in
// embedding space. A Basis is never modified after Fit returns it; callers
// must treat its slices as read-only.
type Basis struct {
	Mean       corpus.Vector
	Components [Dimensions]corpus.Vector

	// Eigenvalues holds the Rayleigh quotient of each dual-space eigenvector,
	// i.e. the variance captured by the matching component.
	Eigenvalues [Dimensions]float64

	// TotalVariance is the trace of the Gram matrix.
	TotalVariance float64
}

// Dimension returns the embedding width the basis was fitted on.
func (basis Basis) Dimension() int {
	return len(basis.Mean)
}

// ExplainedVariance returns each component's share of the total variance.
// All shares are zero when the fitted data had no spread.
func (basis Basis) ExplainedVariance() [Dimensions]float64 {
	var ratios [Dimensions]float64
	if basis.TotalVariance <= 0 {
		return ratios
	}
	for componentIndex, eigenvalue := range basis.Eigenvalues {
		ratios[componentIndex] = math.Abs(eigenvalue) / basis.TotalVariance
	}
	return ratios
}

// Fit computes a projection basis with DefaultTunables.
func Fit(vectors []corpus.Vector) (Basis, error) {
	return FitWithTunables(vectors, DefaultTunables())
}

// FitWithTunables computes the mean and top three principal axes of vectors.
//
// Vectors must share one dimension. With fewer than four vectors, or data of
// rank below three, the trailing components degrade to zero or near-zero
// axes instead of failing.
func FitWithTunables(vectors []corpus.Vector, tunables Tunables) (Basis, error) {
	tunables = tunables.withDefaults()

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

	// Step 1: center the data around the per-dimension mean
	dataMatrix := convertVectorsToMatrix(vectors, numberOfVectors, embeddingDimension)
	meanVector := calculateColumnMeans(dataMatrix, embeddingDimension)
	centerDataMatrix(dataMatrix, meanVector, numberOfVectors)

	// Step 2: build the n x n Gram matrix of pairwise dot products
	var gramMatrix mat.SymDense
	gramMatrix.SymOuterK(1, dataMatrix)

	// Step 3: top eigenvectors of the Gram matrix
	eigenvectors, eigenvalues := topEigenvectors(&gramMatrix, numberOfVectors, tunables)

	// Step 4: map dual-space eigenvectors back to embedding space
	basis := Basis{
		Mean:          meanVector,
		Eigenvalues:   eigenvalues,
		TotalVariance: mat.Trace(&gramMatrix),
	}
	for componentIndex := 0; componentIndex < Dimensions; componentIndex++ {
		basis.Components[componentIndex] = reconstructPrincipalAxis(
			dataMatrix,
			eigenvectors[componentIndex],
			eigenvalues[componentIndex],
			embeddingDimension,
			tunables.EigenEpsilon,
		)
	}

	return basis, nil
}

// convertVectorsToMatrix copies the vectors into an (n x d) gonum Dense
// matrix with one embedding per row.
func convertVectorsToMatrix(vectors []corpus.Vector, numberOfVectors, embeddingDimension int) *mat.Dense {
	flattenedMatrixData := make([]float64, numberOfVectors*embeddingDimension)
	for rowIndex, vector := range vectors {
		copy(flattenedMatrixData[rowIndex*embeddingDimension:], vector)
	}
	return mat.NewDense(numberOfVectors, embeddingDimension, flattenedMatrixData)
}

// calculateColumnMeans computes the arithmetic mean of each column.
func calculateColumnMeans(dataMatrix *mat.Dense, embeddingDimension int) corpus.Vector {
	numberOfRows, _ := dataMatrix.Dims()
	columnMeans := make(corpus.Vector, embeddingDimension)
	columnValues := make([]float64, numberOfRows)
	for columnIndex := 0; columnIndex < embeddingDimension; columnIndex++ {
		mat.Col(columnValues, columnIndex, dataMatrix)
		columnMeans[columnIndex] = stat.Mean(columnValues, nil)
	}
	return columnMeans
}

// centerDataMatrix subtracts the mean from every row in place. The matrix is
// private to Fit, so nothing outside observes the mutation.
func centerDataMatrix(dataMatrix *mat.Dense, meanVector corpus.Vector, numberOfVectors int) {
	for rowIndex := 0; rowIndex < numberOfVectors; rowIndex++ {
		floats.Sub(dataMatrix.RawRowView(rowIndex), meanVector)
	}
}

// topEigenvectors extracts the Dimensions largest eigenpairs of a symmetric
// positive semi-definite matrix by power iteration with deflation.
func topEigenvectors(gramMatrix *mat.SymDense, size int, tunables Tunables) ([Dimensions][]float64, [Dimensions]float64) {
	var eigenvectors [Dimensions][]float64
	var eigenvalues [Dimensions]float64

	for componentIndex := 0; componentIndex < Dimensions; componentIndex++ {
		candidate := make([]float64, size)
		for elementIndex := range candidate {
			candidate[elementIndex] = Seed(elementIndex, componentIndex, tunables)
		}
		deflate(candidate, eigenvectors[:componentIndex])

		for iteration := 0; iteration < tunables.MaxIterations; iteration++ {
			product := multiply(gramMatrix, candidate)
			deflate(product, eigenvectors[:componentIndex])

			productNorm := floats.Norm(product, 2)
			if productNorm < tunables.NormEpsilon {
				// No direction left that is orthogonal to the accepted ones.
				break
			}
			floats.Scale(1/productNorm, product)
			candidate = product
		}

		eigenvectors[componentIndex] = candidate
		eigenvalues[componentIndex] = floats.Dot(candidate, multiply(gramMatrix, candidate))
	}

	return eigenvectors, eigenvalues
}

// multiply returns matrix * vector as a new slice.
func multiply(matrix mat.Matrix, vector []float64) []float64 {
	rows, _ := matrix.Dims()
	product := mat.NewVecDense(rows, nil)
	product.MulVec(matrix, mat.NewVecDense(len(vector), vector))
	return product.RawVector().Data
}

// deflate removes from vector its projection onto each accepted unit
// eigenvector (one Gram-Schmidt pass).
func deflate(vector []float64, accepted [][]float64) {
	for _, eigenvector := range accepted {
		floats.AddScaled(vector, -floats.Dot(vector, eigenvector), eigenvector)
	}
}

// reconstructPrincipalAxis maps a dual-space eigenvector v back to embedding
// space as X^T*v / √(|λ|+ε).
func reconstructPrincipalAxis(centeredDataMatrix *mat.Dense, eigenvector []float64, eigenvalue float64, embeddingDimension int, epsilon float64) corpus.Vector {
	principalAxis := mat.NewVecDense(embeddingDimension, nil)
	principalAxis.MulVec(centeredDataMatrix.T(), mat.NewVecDense(len(eigenvector), eigenvector))
	principalAxis.ScaleVec(1/math.Sqrt(math.Abs(eigenvalue)+epsilon), principalAxis)
	return corpus.Vector(principalAxis.RawVector().Data)
}

// Project maps each vector into the 3D frame of basis: subtract the mean,
// then take the dot product with each component. It never refits, so points
// projected at different times are directly comparable.
func Project(vectors []corpus.Vector, basis Basis) ([]Point3D, error) {
	if err := corpus.CheckDimensions(vectors, basis.Dimension()); err != nil {
		return nil, err
	}

	projectedPoints := make([]Point3D, len(vectors))
	centeredVector := make([]float64, basis.Dimension())
	for vectorIndex, vector := range vectors {
		floats.SubTo(centeredVector, vector, basis.Mean)
		projectedPoints[vectorIndex] = projectCentered(centeredVector, basis)
	}
	return projectedPoints, nil
}

// ProjectOne is Project for a single vector.
func ProjectOne(vector corpus.Vector, basis Basis) (Point3D, error) {
	projectedPoints, err := Project([]corpus.Vector{vector}, basis)
	if err != nil {
		return Point3D{}, err
	}
	return projectedPoints[0], nil
}

func projectCentered(centeredVector []float64, basis Basis) Point3D {
	var point Point3D
	for componentIndex, component := range basis.Components {
		point[componentIndex] = floats.Dot(centeredVector, component)
	}
	return point
}
