package projection

import "math"

// ScalerState is the running per-axis bounds of every projected point seen
// so far. The zero value is not meaningful; start from EmptyScalerState or
// Scaler.Fit.
type ScalerState struct {
	Mins  Point3D
	Maxs  Point3D
	Count int
}

// EmptyScalerState returns bounds that contain nothing.
func EmptyScalerState() ScalerState {
	var state ScalerState
	for axis := range state.Mins {
		state.Mins[axis] = math.Inf(1)
		state.Maxs[axis] = math.Inf(-1)
	}
	return state
}

// Fitted reports whether the bounds cover at least one point.
func (state ScalerState) Fitted() bool {
	return state.Count > 0
}

// Span returns max - min for every axis. Axes of an empty state have span -Inf.
func (state ScalerState) Span() Point3D {
	var span Point3D
	for axis := range span {
		span[axis] = state.Maxs[axis] - state.Mins[axis]
	}
	return span
}

// Scaler maps projected points into the unit cube [0,1]³.
//
// Extending the bounds by one point can move every previously normalized
// point, so normalized coordinates are never cached: callers renormalize the
// whole set after each Update.
type Scaler struct {
	// Epsilon is the narrowest axis span that is divided by. Narrower axes
	// normalize to 0.5.
	Epsilon float64
}

// NewScaler builds a scaler from the range threshold in tunables.
func NewScaler(tunables Tunables) Scaler {
	return Scaler{Epsilon: tunables.withDefaults().RangeEpsilon}
}

// Fit scans points and returns their componentwise bounds.
func (scaler Scaler) Fit(points []Point3D) ScalerState {
	state := EmptyScalerState()
	for _, point := range points {
		state = scaler.Update(point, state)
	}
	return state
}

// Update returns state extended to include point. The input state is not
// modified.
func (scaler Scaler) Update(point Point3D, state ScalerState) ScalerState {
	for axis, value := range point {
		state.Mins[axis] = math.Min(state.Mins[axis], value)
		state.Maxs[axis] = math.Max(state.Maxs[axis], value)
	}
	state.Count++
	return state
}

// Normalize maps point into [0,1]³ per axis as (value-min)/(max-min).
// An axis whose span is below Epsilon, including every axis of an empty
// state, maps to the midpoint 0.5.
func (scaler Scaler) Normalize(point Point3D, state ScalerState) Point3D {
	var normalized Point3D
	span := state.Span()
	for axis, value := range point {
		axisSpan := span[axis]
		if axisSpan < scaler.epsilon() {
			normalized[axis] = 0.5
			continue
		}
		normalized[axis] = (value - state.Mins[axis]) / axisSpan
	}
	return normalized
}

func (scaler Scaler) epsilon() float64 {
	if scaler.Epsilon > 0 {
		return scaler.Epsilon
	}
	return DefaultTunables().RangeEpsilon
}

// NormalizeAll normalizes every point against the same state.
func (scaler Scaler) NormalizeAll(points []Point3D, state ScalerState) []Point3D {
	normalizedPoints := make([]Point3D, len(points))
	for pointIndex, point := range points {
		normalizedPoints[pointIndex] = scaler.Normalize(point, state)
	}
	return normalizedPoints
}
