package lb

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lbdist/envelope"
)

// dtwDistance is a reference windowed DTW implementation used to verify the
// lower-bound property. Band constraint |i-j| <= window matches the
// Sakoe-Chiba window of the envelopes.
func dtwDistance(x, y []float64, window int, norm Norm) float64 {
	n := len(x)
	inf := math.Inf(1)
	dp := make([][]float64, n+1)
	for i := range dp {
		dp[i] = make([]float64, n+1)
		for j := range dp[i] {
			dp[i][j] = inf
		}
	}
	dp[0][0] = 0
	for i := 1; i <= n; i++ {
		for j := 1; j <= n; j++ {
			if abs(i-j) > window {
				continue
			}
			d := x[i-1] - y[j-1]
			var cost float64
			if norm == NormL2 {
				cost = d * d
			} else {
				cost = math.Abs(d)
			}
			best := dp[i-1][j-1]
			if dp[i-1][j] < best {
				best = dp[i-1][j]
			}
			if dp[i][j-1] < best {
				best = dp[i][j-1]
			}
			dp[i][j] = cost + best
		}
	}
	if norm == NormL2 {
		return math.Sqrt(dp[n][n])
	}
	return dp[n][n]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func randomSeries(rng *rand.Rand, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = rng.NormFloat64() * 5
	}
	return s
}

func TestKeoghScenarios(t *testing.T) {
	tests := []struct {
		name     string
		x, y     []float64
		window   int
		norm     Norm
		expected float64
	}{
		{"IdenticalMonotone", []float64{1, 2, 3, 4, 5}, []float64{1, 2, 3, 4, 5}, 1, NormL1, 0},
		{"ConstantOffsetL1", []float64{0, 0, 0, 0}, []float64{10, 10, 10, 10}, 0, NormL1, 40},
		{"ConstantOffsetL2", []float64{0, 0, 0, 0}, []float64{10, 10, 10, 10}, 0, NormL2, 20},
		{"InsideEnvelope", []float64{2, 2, 2}, []float64{1, 3, 2}, 2, NormL1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Keogh(tt.x, tt.y, tt.window, tt.norm)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}

func TestImprovedScenarios(t *testing.T) {
	t.Run("IdenticalMonotone", func(t *testing.T) {
		x := []float64{1, 2, 3, 4, 5}
		got, err := Improved(x, x, 1, NormL1)
		require.NoError(t, err)
		assert.Zero(t, got)
	})

	t.Run("ConstantOffsetL1", func(t *testing.T) {
		x := []float64{0, 0, 0, 0}
		y := []float64{10, 10, 10, 10}
		got, err := Improved(x, y, 0, NormL1)
		require.NoError(t, err)
		// Second pass adds nothing: y equals the clamped series exactly.
		assert.InDelta(t, 40.0, got, 1e-12)
	})

	t.Run("TightensKeogh", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		tightened := false
		for i := 0; i < 50; i++ {
			x := randomSeries(rng, 40)
			y := randomSeries(rng, 40)
			k, err := Keogh(x, y, 4, NormL1)
			require.NoError(t, err)
			imp, err := Improved(x, y, 4, NormL1)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, imp, k-1e-9)
			if imp > k+1e-9 {
				tightened = true
			}
		}
		assert.True(t, tightened, "improved bound never exceeded keogh")
	})
}

func TestLowerBoundProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, norm := range []Norm{NormL1, NormL2} {
		for _, window := range []int{0, 1, 3, 10} {
			for i := 0; i < 30; i++ {
				x := randomSeries(rng, 32)
				y := randomSeries(rng, 32)
				dtw := dtwDistance(x, y, window, norm)

				k, err := Keogh(x, y, window, norm)
				require.NoError(t, err)
				assert.LessOrEqual(t, k, dtw+1e-9, "keogh norm=%v window=%d", norm, window)

				imp, err := Improved(x, y, window, norm)
				require.NoError(t, err)
				assert.LessOrEqual(t, imp, dtw+1e-9, "improved norm=%v window=%d", norm, window)

				sym, err := Improved(x, y, window, norm, WithForceSymmetry())
				require.NoError(t, err)
				assert.LessOrEqual(t, sym, dtw+1e-9, "symmetric norm=%v window=%d", norm, window)
			}
		}
	}
}

func TestAsymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	asymmetric := false
	for i := 0; i < 20 && !asymmetric; i++ {
		x := randomSeries(rng, 24)
		y := randomSeries(rng, 24)
		fwd, err := Improved(x, y, 2, NormL1)
		require.NoError(t, err)
		rev, err := Improved(y, x, 2, NormL1)
		require.NoError(t, err)
		if math.Abs(fwd-rev) > 1e-9 {
			asymmetric = true
		}
	}
	assert.True(t, asymmetric, "bound was symmetric on every random pair")
}

func TestForceSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	x := randomSeries(rng, 30)
	y := randomSeries(rng, 30)

	fwd, err := Improved(x, y, 3, NormL2)
	require.NoError(t, err)
	rev, err := Improved(y, x, 3, NormL2)
	require.NoError(t, err)
	sym, err := Improved(x, y, 3, NormL2, WithForceSymmetry())
	require.NoError(t, err)

	assert.InDelta(t, math.Max(fwd, rev), sym, 1e-12)
}

func TestPrecomputedEnvelope(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	x := randomSeries(rng, 50)
	y := randomSeries(rng, 50)

	env, err := envelope.Compute(y, 5)
	require.NoError(t, err)

	want, err := Improved(x, y, 5, NormL1)
	require.NoError(t, err)
	got, err := Improved(x, y, 5, NormL1, WithEnvelope(env))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestValidation(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{1, 2}

	_, err := Keogh(x, y, 1, NormL1)
	var lm *ErrLengthMismatch
	require.ErrorAs(t, err, &lm)
	assert.Equal(t, 3, lm.Expected)
	assert.Equal(t, 2, lm.Actual)

	_, err = Improved(nil, nil, 1, NormL1)
	assert.ErrorIs(t, err, envelope.ErrEmptySeries)

	_, err = Improved(x, []float64{1, 2, 3}, -1, NormL1)
	assert.ErrorIs(t, err, envelope.ErrNegativeWindow)

	env := &envelope.Envelope{Lower: []float64{0}, Upper: []float64{0}}
	_, err = Keogh(x, []float64{1, 2, 3}, 1, NormL1, WithEnvelope(env))
	require.ErrorAs(t, err, &lm)

	_, err = Keogh(x, []float64{1, 2, 3}, 1, Norm(99))
	assert.Error(t, err)
}

func TestProvider(t *testing.T) {
	for _, name := range []string{"lb_keogh", "lb_improved"} {
		fn, ok := Provider(name)
		require.True(t, ok, name)
		require.NotNil(t, fn)
	}
	_, ok := Provider("dtw_basic")
	assert.False(t, ok)
}

func TestNormString(t *testing.T) {
	assert.Equal(t, "L1", NormL1.String())
	assert.Equal(t, "L2", NormL2.String())
	assert.Equal(t, "Unknown(9)", Norm(9).String())
}

func BenchmarkImproved(b *testing.B) {
	rng := rand.New(rand.NewSource(23))
	x := randomSeries(rng, 1024)
	y := randomSeries(rng, 1024)
	env, _ := envelope.Compute(y, 16)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Improved(x, y, 16, NormL1, WithEnvelope(env))
	}
}
