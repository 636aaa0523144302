package lbdist

import (
	"github.com/hupe1980/lbdist/lb"
	"github.com/hupe1980/lbdist/matrix"
)

// Options configures a Builder. Zero value plus defaults from New: window 0,
// L1 norm, "lb_improved" kernel, one outer worker, unset inner threads.
type Options struct {
	// Window is the Sakoe-Chiba band radius shared by envelope and kernel.
	Window int

	// Norm selects the per-element accumulation rule.
	Norm lb.Norm

	// KernelName selects the lower-bound kernel by its registered name
	// ("lb_keogh" or "lb_improved"). Resolved once in New.
	KernelName string

	// ForceSymmetry requests a symmetric result. Cross builds run a
	// symmetry pass over the finished square matrix; pairwise builds
	// evaluate the kernel in both directions per pair.
	ForceSymmetry bool

	// OuterWorkers is the number of independently scheduled range workers.
	// Values below 1 mean a single worker.
	OuterWorkers int

	// InnerThreads is the per-worker thread count for the kernel loop.
	// nil means unset: one thread while more than one outer worker is
	// active, otherwise all available hardware threads.
	InnerThreads *int

	// Storage decides when results spill to a memory-mapped file.
	Storage matrix.Policy

	// Progress, when non-nil, receives (done, total) pair counts during the
	// fill phase. Calls are rate limited; a final (total, total) call is
	// always delivered on success.
	Progress func(done, total int)

	Logger  *Logger
	Metrics MetricsCollector
}

// WithWindow sets the Sakoe-Chiba window radius.
func WithWindow(window int) func(*Options) {
	return func(o *Options) {
		o.Window = window
	}
}

// WithNorm sets the accumulation norm.
func WithNorm(norm lb.Norm) func(*Options) {
	return func(o *Options) {
		o.Norm = norm
	}
}

// WithKernel selects the lower-bound kernel by registered name.
func WithKernel(name string) func(*Options) {
	return func(o *Options) {
		o.KernelName = name
	}
}

// WithForceSymmetry requests a symmetric result.
func WithForceSymmetry() func(*Options) {
	return func(o *Options) {
		o.ForceSymmetry = true
	}
}

// WithOuterWorkers sets the outer worker count.
func WithOuterWorkers(n int) func(*Options) {
	return func(o *Options) {
		o.OuterWorkers = n
	}
}

// WithInnerThreads explicitly sets the per-worker inner thread count,
// opting out of the single-thread default applied under multiple outer
// workers.
func WithInnerThreads(n int) func(*Options) {
	return func(o *Options) {
		o.InnerThreads = &n
	}
}

// WithStoragePolicy sets the out-of-core spill policy.
func WithStoragePolicy(p matrix.Policy) func(*Options) {
	return func(o *Options) {
		o.Storage = p
	}
}

// WithProgress installs a progress callback.
func WithProgress(fn func(done, total int)) func(*Options) {
	return func(o *Options) {
		o.Progress = fn
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *Logger) func(*Options) {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) func(*Options) {
	return func(o *Options) {
		o.Metrics = m
	}
}
