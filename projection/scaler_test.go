package projection

import (
	"math"
	"testing"

	"github.com/dora-ryukyu/word2vec3d/corpus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaler_FitTracksBounds(t *testing.T) {
	scaler := NewScaler(DefaultTunables())
	state := scaler.Fit([]Point3D{
		{1, -2, 0},
		{3, 5, 0},
		{-1, 0, 0},
	})

	assert.True(t, state.Fitted())
	assert.Equal(t, 3, state.Count)
	assert.Equal(t, Point3D{-1, -2, 0}, state.Mins)
	assert.Equal(t, Point3D{3, 5, 0}, state.Maxs)
	assert.Equal(t, Point3D{4, 7, 0}, state.Span())
}

func TestScaler_NormalizeExtremes(t *testing.T) {
	scaler := NewScaler(DefaultTunables())
	points := []Point3D{
		{1, -2, 4},
		{3, 5, 4},
		{-1, 0, 4},
	}
	state := scaler.Fit(points)

	// Axis 2 has no spread and sits at the midpoint.
	assert.Equal(t, Point3D{0, 0, 0.5}, scaler.Normalize(state.Mins, state))
	assert.Equal(t, Point3D{1, 1, 0.5}, scaler.Normalize(state.Maxs, state))

	for _, normalized := range scaler.NormalizeAll(points, state) {
		for axis, value := range normalized {
			assert.GreaterOrEqual(t, value, 0.0, "axis %d", axis)
			assert.LessOrEqual(t, value, 1.0, "axis %d", axis)
		}
	}
}

func TestScaler_EmptyState(t *testing.T) {
	scaler := NewScaler(DefaultTunables())
	state := scaler.Fit(nil)

	assert.False(t, state.Fitted())
	assert.Equal(t, Point3D{0.5, 0.5, 0.5}, scaler.Normalize(Point3D{7, -3, 1}, state))

	state = scaler.Update(Point3D{7, -3, 1}, state)
	assert.True(t, state.Fitted())
	assert.Equal(t, Point3D{0.5, 0.5, 0.5}, scaler.Normalize(Point3D{7, -3, 1}, state))
}

func TestScaler_ZeroValueUsesDefaultEpsilon(t *testing.T) {
	var scaler Scaler
	state := scaler.Fit([]Point3D{{1, 1, 1}, {1, 1, 1}})

	normalized := scaler.Normalize(Point3D{1, 1, 1}, state)
	for axis, value := range normalized {
		assert.False(t, math.IsNaN(value), "axis %d", axis)
		assert.Equal(t, 0.5, value)
	}
}

func TestScaler_UpdateMatchesFullFit(t *testing.T) {
	scaler := NewScaler(DefaultTunables())
	points := []Point3D{{0, 0, 0}, {2, -1, 3}, {-4, 6, 1}, {1, 1, -9}}

	incremental := scaler.Fit(points[:1])
	for _, point := range points[1:] {
		incremental = scaler.Update(point, incremental)
	}

	assert.Equal(t, scaler.Fit(points), incremental)
}

func TestScaler_UpdateDoesNotMutateInput(t *testing.T) {
	scaler := NewScaler(DefaultTunables())
	before := scaler.Fit([]Point3D{{0, 0, 0}, {1, 1, 1}})
	snapshot := before

	after := scaler.Update(Point3D{5, 5, 5}, before)
	assert.Equal(t, snapshot, before)
	assert.Equal(t, Point3D{5, 5, 5}, after.Maxs)
}

// fittedSession projects layeredVectors(10) and returns the pieces an
// insertion needs.
func fittedSession(t *testing.T) (Basis, []Point3D, Scaler, ScalerState) {
	t.Helper()
	vectors := layeredVectors(10)

	basis, err := Fit(vectors)
	require.NoError(t, err)
	points, err := Project(vectors, basis)
	require.NoError(t, err)

	scaler := NewScaler(DefaultTunables())
	return basis, points, scaler, scaler.Fit(points)
}

func TestScaler_InsertionOutsideRangeRescalesEveryPoint(t *testing.T) {
	basis, points, scaler, state := fittedSession(t)
	before := scaler.NormalizeAll(points, state)

	// Walk twice the current maximum along every principal axis.
	outlier := basis.Mean.Clone()
	for axis, component := range basis.Components {
		for j := range outlier {
			outlier[j] += 2 * state.Maxs[axis] * component[j]
		}
	}

	newPoint, err := ProjectOne(outlier, basis)
	require.NoError(t, err)
	widened := scaler.Update(newPoint, state)

	for axis := range widened.Maxs {
		assert.Greater(t, widened.Maxs[axis], state.Maxs[axis], "axis %d must widen", axis)
		assert.Equal(t, state.Mins[axis], widened.Mins[axis], "axis %d", axis)
	}

	after := scaler.NormalizeAll(points, widened)
	for pointIndex := range points {
		if points[pointIndex] == state.Mins {
			// Only a point sitting on every minimum keeps its position.
			continue
		}
		assert.NotEqual(t, before[pointIndex], after[pointIndex], "point %d did not move", pointIndex)
	}
	assert.Equal(t, Point3D{1, 1, 1}, scaler.Normalize(newPoint, widened))
}

func TestScaler_InsertionInsideRangeKeepsPoints(t *testing.T) {
	basis, points, scaler, state := fittedSession(t)
	before := scaler.NormalizeAll(points, state)

	// The mean projects to the origin, strictly inside the centered bounds.
	inside, err := ProjectOne(corpus.Vector(basis.Mean), basis)
	require.NoError(t, err)
	for axis, value := range inside {
		require.Greater(t, value, state.Mins[axis])
		require.Less(t, value, state.Maxs[axis])
	}

	updated := scaler.Update(inside, state)
	assert.Equal(t, state.Mins, updated.Mins)
	assert.Equal(t, state.Maxs, updated.Maxs)
	assert.Equal(t, before, scaler.NormalizeAll(points, updated))
}
