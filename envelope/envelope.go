// Package envelope computes sliding-window envelopes for univariate time
// series.
//
// The envelope of a series under a Sakoe-Chiba window of radius w is the
// running minimum (lower) and maximum (upper) of the series over the index
// range [i-w, i+w], truncated at the series bounds. Envelopes are the
// building block of cheap Dynamic Time Warping lower bounds: a point of one
// series that falls inside the other's envelope can align with zero cost,
// so only excursions outside the envelope contribute to the bound.
//
// Computation uses Lemire's streaming min-max: two monotonic index deques
// (non-decreasing values for the minimum, non-increasing for the maximum)
// slide over the window, giving amortized O(1) work per element and O(n)
// total.
package envelope

import "errors"

var (
	// ErrEmptySeries indicates an empty input series.
	ErrEmptySeries = errors.New("envelope: series must be non-empty")

	// ErrNegativeWindow indicates a negative window radius.
	ErrNegativeWindow = errors.New("envelope: window must be non-negative")
)

// Envelope holds the lower and upper envelope of a series.
// Lower[i] <= series[i] <= Upper[i] for every index i.
type Envelope struct {
	Lower []float64
	Upper []float64
}

// Len returns the envelope length.
func (e *Envelope) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Lower)
}

// Compute returns the lower/upper envelope of series for the given window
// radius. Indices near the series bounds use truncated windows; the series
// is never padded or wrapped.
func Compute(series []float64, window int) (*Envelope, error) {
	n := len(series)
	if n == 0 {
		return nil, ErrEmptySeries
	}
	if window < 0 {
		return nil, ErrNegativeWindow
	}

	lower := make([]float64, n)
	upper := make([]float64, n)

	// Monotonic deques of indices into series. minq holds candidates for the
	// running minimum (values non-decreasing front to back), maxq for the
	// running maximum (values non-increasing).
	span := window*2 + 1
	if span > n || span < 0 {
		span = n
	}
	minq := make([]int, 0, span)
	maxq := make([]int, 0, span)

	next := 0 // next series index to ingest
	for i := 0; i < n; i++ {
		hi := i + window
		if hi > n-1 {
			hi = n - 1
		}
		for ; next <= hi; next++ {
			v := series[next]
			for len(minq) > 0 && series[minq[len(minq)-1]] >= v {
				minq = minq[:len(minq)-1]
			}
			minq = append(minq, next)
			for len(maxq) > 0 && series[maxq[len(maxq)-1]] <= v {
				maxq = maxq[:len(maxq)-1]
			}
			maxq = append(maxq, next)
		}
		lo := i - window
		for minq[0] < lo {
			minq = minq[1:]
		}
		for maxq[0] < lo {
			maxq = maxq[1:]
		}
		lower[i] = series[minq[0]]
		upper[i] = series[maxq[0]]
	}

	return &Envelope{Lower: lower, Upper: upper}, nil
}
