// Package lb implements windowed lower bounds for the Dynamic Time Warping
// distance.
//
// Both bounds are cheap O(n) pre-filters: for any two equal-length series x
// and y and window radius w, the bound is guaranteed to be less than or equal
// to the true windowed DTW distance. Keogh is the classic one-pass bound of x
// against the envelope of y; Improved is Lemire's two-pass tightening, which
// re-bounds the points of x that already fall inside y's envelope.
//
// Results are asymmetric in general: Improved(x, y) != Improved(y, x). Use
// WithForceSymmetry to take the larger of both directions, which is a tighter
// value that remains a valid lower bound.
package lb

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/lbdist/envelope"
)

// Norm selects the per-element accumulation rule.
type Norm int

const (
	// NormL1 sums absolute contributions.
	NormL1 Norm = iota
	// NormL2 sums squared contributions and takes the square root at the end.
	NormL2
)

func (n Norm) String() string {
	switch n {
	case NormL1:
		return "L1"
	case NormL2:
		return "L2"
	default:
		return fmt.Sprintf("Unknown(%d)", int(n))
	}
}

// ErrUnknownKernel is returned by Provider for an unregistered kernel name.
var ErrUnknownKernel = errors.New("lb: unknown kernel")

// ErrLengthMismatch indicates that two series, or a series and a supplied
// envelope, disagree in length.
type ErrLengthMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("length mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Options configures a single kernel invocation.
type Options struct {
	// Envelope is a precomputed envelope of y. When nil the kernel computes
	// it on the fly.
	Envelope *envelope.Envelope

	// ForceSymmetry evaluates the bound in both directions and returns the
	// larger value.
	ForceSymmetry bool
}

// WithEnvelope supplies a precomputed envelope of y.
func WithEnvelope(env *envelope.Envelope) func(*Options) {
	return func(o *Options) {
		o.Envelope = env
	}
}

// WithForceSymmetry returns max(kernel(x,y), kernel(y,x)).
//
// The maximum of two valid lower bounds is itself a valid lower bound on the
// (symmetric) DTW distance, and is never looser than either direction alone.
func WithForceSymmetry() func(*Options) {
	return func(o *Options) {
		o.ForceSymmetry = true
	}
}

// Func is the fixed call signature shared by all lower-bound kernels.
type Func func(x, y []float64, window int, norm Norm, optFns ...func(*Options)) (float64, error)

// Provider returns a registered kernel by its stable name.
//
// Registered names are "lb_keogh" and "lb_improved". Callers resolve the
// kernel once from configuration and hold the Func; there is no ambient
// global dispatch.
func Provider(name string) (Func, bool) {
	switch name {
	case "lb_keogh":
		return Keogh, true
	case "lb_improved":
		return Improved, true
	default:
		return nil, false
	}
}

// Keogh computes the LB_Keogh lower bound of x against the envelope of y.
func Keogh(x, y []float64, window int, norm Norm, optFns ...func(*Options)) (float64, error) {
	opts := applyOptions(optFns)
	if opts.ForceSymmetry {
		return symmetric(keoghOneWay, x, y, window, norm, opts.Envelope)
	}
	return keoghOneWay(x, y, window, norm, opts.Envelope)
}

// Improved computes the LB_Improved lower bound of x against y.
//
// The first pass accumulates the excursions of x outside y's envelope, as in
// LB_Keogh. The second pass clamps x into y's envelope (leaving the points
// that contributed nothing unchanged), computes the envelope of the clamped
// series, and accumulates y's excursions outside it. The sum tightens the
// one-pass bound while remaining below the true DTW distance.
func Improved(x, y []float64, window int, norm Norm, optFns ...func(*Options)) (float64, error) {
	opts := applyOptions(optFns)
	if opts.ForceSymmetry {
		return symmetric(improvedOneWay, x, y, window, norm, opts.Envelope)
	}
	return improvedOneWay(x, y, window, norm, opts.Envelope)
}

func applyOptions(optFns []func(*Options)) Options {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

type kernelFunc func(x, y []float64, window int, norm Norm, env *envelope.Envelope) (float64, error)

// symmetric evaluates kernel in both directions and returns the larger
// bound. The supplied envelope belongs to y and only applies to the forward
// direction; the reverse direction computes the envelope of x itself.
func symmetric(kernel kernelFunc, x, y []float64, window int, norm Norm, envY *envelope.Envelope) (float64, error) {
	fwd, err := kernel(x, y, window, norm, envY)
	if err != nil {
		return 0, err
	}
	rev, err := kernel(y, x, window, norm, nil)
	if err != nil {
		return 0, err
	}
	return math.Max(fwd, rev), nil
}

func validate(x, y []float64, window int, norm Norm, env *envelope.Envelope) error {
	if len(x) == 0 || len(y) == 0 {
		return envelope.ErrEmptySeries
	}
	if len(x) != len(y) {
		return &ErrLengthMismatch{Expected: len(x), Actual: len(y)}
	}
	if window < 0 {
		return envelope.ErrNegativeWindow
	}
	if norm != NormL1 && norm != NormL2 {
		return fmt.Errorf("lb: unsupported norm: %v", norm)
	}
	if env != nil && env.Len() != len(y) {
		return &ErrLengthMismatch{Expected: len(y), Actual: env.Len()}
	}
	return nil
}

func keoghOneWay(x, y []float64, window int, norm Norm, env *envelope.Envelope) (float64, error) {
	if err := validate(x, y, window, norm, env); err != nil {
		return 0, err
	}
	if env == nil {
		var err error
		env, err = envelope.Compute(y, window)
		if err != nil {
			return 0, err
		}
	}

	var acc float64
	for i, v := range x {
		var c float64
		switch {
		case v > env.Upper[i]:
			c = v - env.Upper[i]
		case v < env.Lower[i]:
			c = env.Lower[i] - v
		}
		acc = accumulate(acc, c, norm)
	}
	return finish(acc, norm), nil
}

func improvedOneWay(x, y []float64, window int, norm Norm, env *envelope.Envelope) (float64, error) {
	if err := validate(x, y, window, norm, env); err != nil {
		return 0, err
	}
	if env == nil {
		var err error
		env, err = envelope.Compute(y, window)
		if err != nil {
			return 0, err
		}
	}

	// First pass: excursions of x outside y's envelope. The clamped series h
	// equals x exactly where the contribution is zero and snaps to the
	// violated envelope bound elsewhere.
	h := make([]float64, len(x))
	var acc float64
	for i, v := range x {
		var c float64
		switch {
		case v > env.Upper[i]:
			c = v - env.Upper[i]
			h[i] = env.Upper[i]
		case v < env.Lower[i]:
			c = env.Lower[i] - v
			h[i] = env.Lower[i]
		default:
			h[i] = v
		}
		acc = accumulate(acc, c, norm)
	}

	// Second pass: re-bound y against the envelope of the clamped series.
	envH, err := envelope.Compute(h, window)
	if err != nil {
		return 0, err
	}
	for i, v := range y {
		var c float64
		switch {
		case v > envH.Upper[i]:
			c = v - envH.Upper[i]
		case v < envH.Lower[i]:
			c = envH.Lower[i] - v
		}
		acc = accumulate(acc, c, norm)
	}

	return finish(acc, norm), nil
}

func accumulate(acc, c float64, norm Norm) float64 {
	if norm == NormL2 {
		return acc + c*c
	}
	return acc + c
}

func finish(acc float64, norm Norm) float64 {
	if norm == NormL2 {
		return math.Sqrt(acc)
	}
	return acc
}
