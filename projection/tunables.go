package projection

import "math"

// Dimensions is the number of principal axes extracted by Fit and the width
// of every projected point.
const Dimensions = 3

// Tunables holds the numeric thresholds of the PCA engine and range scaler.
// The defaults were chosen for unit-normalized sentence embeddings; inputs
// with much larger or smaller magnitudes may need different epsilons.
type Tunables struct {
	// MaxIterations caps power-iteration steps per component.
	MaxIterations int `yaml:"max_iterations"`

	// NormEpsilon stops a component's iteration when the deflated
	// matrix-vector product is shorter than this. The component is then
	// accepted as degenerate.
	NormEpsilon float64 `yaml:"norm_epsilon"`

	// EigenEpsilon is added to |λ| before taking the square root when a
	// dual-space eigenvector is mapped back to embedding space.
	EigenEpsilon float64 `yaml:"eigen_epsilon"`

	// RangeEpsilon is the smallest per-axis spread the scaler divides by.
	// Narrower axes normalize to the midpoint.
	RangeEpsilon float64 `yaml:"range_epsilon"`

	// SeedFrequency and SeedPhase parameterize the deterministic start
	// vectors, see Seed.
	SeedFrequency float64 `yaml:"seed_frequency"`
	SeedPhase     float64 `yaml:"seed_phase"`
}

// DefaultTunables returns the thresholds used when none are configured.
func DefaultTunables() Tunables {
	return Tunables{
		MaxIterations: 200,
		NormEpsilon:   1e-12,
		EigenEpsilon:  1e-12,
		RangeEpsilon:  1e-12,
		SeedFrequency: 7.13,
		SeedPhase:     3.17,
	}
}

// withDefaults fills zero fields from DefaultTunables.
func (t Tunables) withDefaults() Tunables {
	defaults := DefaultTunables()
	if t.MaxIterations <= 0 {
		t.MaxIterations = defaults.MaxIterations
	}
	if t.NormEpsilon <= 0 {
		t.NormEpsilon = defaults.NormEpsilon
	}
	if t.EigenEpsilon <= 0 {
		t.EigenEpsilon = defaults.EigenEpsilon
	}
	if t.RangeEpsilon <= 0 {
		t.RangeEpsilon = defaults.RangeEpsilon
	}
	if t.SeedFrequency == 0 {
		t.SeedFrequency = defaults.SeedFrequency
	}
	if t.SeedPhase == 0 {
		t.SeedPhase = defaults.SeedPhase
	}
	return t
}

// Seed returns element i of the start vector for component k:
//
//	sin(i*SeedFrequency + k*SeedPhase)
//
// The sequence is fixed so that a fit is reproducible across runs and
// platforms. It only needs to avoid being orthogonal to the dominant
// eigenvectors, not to look random.
func Seed(i, k int, t Tunables) float64 {
	t = t.withDefaults()
	return math.Sin(float64(i)*t.SeedFrequency + float64(k)*t.SeedPhase)
}
