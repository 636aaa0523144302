package lbdist

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/lbdist/envelope"
	"github.com/hupe1980/lbdist/internal/pool"
	"github.com/hupe1980/lbdist/internal/task"
	"github.com/hupe1980/lbdist/lb"
	"github.com/hupe1980/lbdist/matrix"
)

// progressBlock is the number of completed cells batched into one progress
// report, keeping the shared counter off the per-cell hot path.
const progressBlock = 1024

// Builder computes lower-bound distance matrices over lists of equal-length
// series. Configuration is fixed at construction; a Builder is safe for
// concurrent use.
type Builder struct {
	opts   Options
	kernel lb.Func
}

// New creates a Builder. The kernel name is resolved eagerly, so an unknown
// kernel or a negative window fails here rather than mid-build.
func New(optFns ...func(*Options)) (*Builder, error) {
	opts := Options{
		Norm:         lb.NormL1,
		KernelName:   "lb_improved",
		OuterWorkers: 1,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NoopMetricsCollector{}
	}
	if opts.Window < 0 {
		return nil, ErrInvalidWindow
	}
	if opts.Norm != lb.NormL1 && opts.Norm != lb.NormL2 {
		return nil, fmt.Errorf("lbdist: unsupported norm: %v", opts.Norm)
	}
	if opts.OuterWorkers < 1 {
		opts.OuterWorkers = 1
	}

	kernel, ok := lb.Provider(opts.KernelName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", lb.ErrUnknownKernel, opts.KernelName)
	}

	return &Builder{opts: opts, kernel: kernel}, nil
}

// Build computes the |x| x |y| cross-distance matrix with rows from x and
// columns from y. A nil y compares x against itself.
//
// The returned storage may be file-backed depending on the policy; callers
// own it and must Close it. A build either completes or fails as a whole:
// on any kernel error the partial result is discarded and an *ErrBuildFailed
// is returned.
func (b *Builder) Build(ctx context.Context, x, y [][]float64) (matrix.Storage, error) {
	start := time.Now()
	if y == nil {
		y = x
	}
	if err := b.validate(x, y, false); err != nil {
		return nil, err
	}
	logger := b.opts.Logger.WithWindow(b.opts.Window)

	envs, err := b.precomputeEnvelopes(y)
	if err != nil {
		return nil, translateError(err)
	}

	rows, cols := len(x), len(y)
	st, err := matrix.New(rows, cols, b.opts.Storage)
	if err != nil {
		return nil, err
	}

	total := rows * cols
	fill := func(k int) error {
		i, j := k/cols, k%cols
		d, err := b.kernel(x[i], y[j], b.opts.Window, b.opts.Norm, lb.WithEnvelope(envs[j]))
		if err != nil {
			return err
		}
		st.Set(i, j, d)
		return nil
	}

	if err := b.runWorkers(ctx, total, fill); err != nil {
		discard(st)
		failed := &ErrBuildFailed{cause: err}
		logger.LogBuild(ctx, rows, cols, b.opts.OuterWorkers, time.Since(start), failed)
		b.opts.Metrics.RecordBuild(total, time.Since(start), failed)
		return nil, failed
	}

	if b.opts.ForceSymmetry {
		symStart := time.Now()
		applied := Symmetrize(st)
		logger.LogSymmetrize(ctx, rows, cols, applied)
		if applied {
			b.opts.Metrics.RecordSymmetrize(time.Since(symStart))
		}
	}

	logger.LogBuild(ctx, rows, cols, b.opts.OuterWorkers, time.Since(start), nil)
	b.opts.Metrics.RecordBuild(total, time.Since(start), nil)
	return st, nil
}

// BuildPairwise compares x and y index by index and returns the length-|x|
// distance vector. A nil y compares x against itself. With ForceSymmetry the
// kernel is evaluated in both directions per pair.
func (b *Builder) BuildPairwise(ctx context.Context, x, y [][]float64) ([]float64, error) {
	start := time.Now()
	if y == nil {
		y = x
	}
	if err := b.validate(x, y, true); err != nil {
		return nil, err
	}
	logger := b.opts.Logger.WithWindow(b.opts.Window)

	envs, err := b.precomputeEnvelopes(y)
	if err != nil {
		return nil, translateError(err)
	}

	n := len(x)
	st, err := matrix.New(1, n, b.opts.Storage)
	if err != nil {
		return nil, err
	}

	fill := func(k int) error {
		optFns := []func(*lb.Options){lb.WithEnvelope(envs[k])}
		if b.opts.ForceSymmetry {
			optFns = append(optFns, lb.WithForceSymmetry())
		}
		d, err := b.kernel(x[k], y[k], b.opts.Window, b.opts.Norm, optFns...)
		if err != nil {
			return err
		}
		st.Set(0, k, d)
		return nil
	}

	if err := b.runWorkers(ctx, n, fill); err != nil {
		discard(st)
		failed := &ErrBuildFailed{cause: err}
		logger.LogBuild(ctx, 1, n, b.opts.OuterWorkers, time.Since(start), failed)
		b.opts.Metrics.RecordBuild(n, time.Since(start), failed)
		return nil, failed
	}

	out := make([]float64, n)
	for k := range out {
		out[k] = st.At(0, k)
	}
	discard(st)

	logger.LogBuild(ctx, 1, n, b.opts.OuterWorkers, time.Since(start), nil)
	b.opts.Metrics.RecordBuild(n, time.Since(start), nil)
	return out, nil
}

// validate checks list shapes eagerly, before any envelope or kernel work
// is spent on invalid input.
func (b *Builder) validate(x, y [][]float64, pairwise bool) error {
	if len(x) == 0 || len(y) == 0 {
		return ErrEmptySeriesList
	}
	if pairwise && len(x) != len(y) {
		return ErrPairwiseLength
	}
	n := len(x[0])
	if n == 0 {
		return envelope.ErrEmptySeries
	}
	for idx, s := range x {
		if len(s) != n {
			return &ErrSeriesLength{Index: idx, Expected: n, Actual: len(s)}
		}
	}
	for idx, s := range y {
		if len(s) != n {
			return &ErrSeriesLength{Index: idx, Expected: n, Actual: len(s)}
		}
	}
	return nil
}

// precomputeEnvelopes computes the envelope of every query series once.
// The set is shared read-only by all workers, which is what makes the
// per-pair kernel O(n) instead of recomputing envelopes per pair.
func (b *Builder) precomputeEnvelopes(y [][]float64) ([]*envelope.Envelope, error) {
	start := time.Now()
	envs := make([]*envelope.Envelope, len(y))
	for j, s := range y {
		env, err := envelope.Compute(s, b.opts.Window)
		if err != nil {
			return nil, err
		}
		envs[j] = env
	}
	b.opts.Metrics.RecordEnvelopes(len(envs), time.Since(start))
	return envs, nil
}

// runWorkers partitions [0, total) into contiguous ranges, one per outer
// worker, and fans the fill function out. Cells are disjoint between
// workers, so the fill phase needs no locks; the first error cancels the
// group and aborts the build.
func (b *Builder) runWorkers(ctx context.Context, total int, fill func(k int) error) error {
	ranges := task.Ranges(total, b.opts.OuterWorkers)
	inner := b.innerThreads(len(ranges))
	report := b.progressReporter(total)

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range ranges {
		r := r
		g.Go(func() error {
			return b.fillRange(gctx, r, inner, fill, report)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if b.opts.Progress != nil {
		b.opts.Progress(total, total)
	}
	return nil
}

// innerThreads resolves the per-worker thread count. An explicit setting is
// honored unmodified. Otherwise more than one active outer worker forces a
// single inner thread so the two parallelism layers do not oversubscribe
// the machine, and a lone worker uses all hardware threads.
func (b *Builder) innerThreads(activeWorkers int) int {
	if b.opts.InnerThreads != nil {
		n := *b.opts.InnerThreads
		if n < 1 {
			n = 1
		}
		return n
	}
	if activeWorkers > 1 {
		return 1
	}
	return runtime.GOMAXPROCS(0)
}

func (b *Builder) fillRange(ctx context.Context, r task.Range, inner int, fill func(int) error, report func(int)) error {
	if inner <= 1 {
		return fillSpan(ctx, r.Start, r.End, fill, report)
	}

	sub := task.Ranges(r.Len(), inner)
	p := pool.New(inner)
	defer p.Close()

	errs := make([]error, len(sub))
	var wg sync.WaitGroup
	for si, sr := range sub {
		start, end := r.Start+sr.Start, r.Start+sr.End
		wg.Add(1)
		submitErr := p.Submit(ctx, func() {
			defer wg.Done()
			errs[si] = fillSpan(ctx, start, end, fill, report)
		})
		if submitErr != nil {
			wg.Done()
			errs[si] = submitErr
			break
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func fillSpan(ctx context.Context, start, end int, fill func(int) error, report func(int)) error {
	pending := 0
	for k := start; k < end; k++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fill(k); err != nil {
			return err
		}
		pending++
		if pending == progressBlock {
			report(pending)
			pending = 0
		}
	}
	if pending > 0 {
		report(pending)
	}
	return nil
}

// progressReporter returns a completion sink feeding the optional progress
// callback, rate limited so callers can log from it without throttling the
// fill loop.
func (b *Builder) progressReporter(total int) func(int) {
	if b.opts.Progress == nil {
		return func(int) {}
	}
	var done atomic.Int64
	limiter := rate.NewLimiter(rate.Limit(20), 1)
	return func(n int) {
		d := done.Add(int64(n))
		if limiter.Allow() {
			b.opts.Progress(int(d), total)
		}
	}
}

// discard drops aborted or drained storage so a partially filled matrix is
// never surfaced. Spill files are deleted.
func discard(s matrix.Storage) {
	if m, ok := s.(*matrix.Mmap); ok {
		_ = m.Remove()
		return
	}
	_ = s.Close()
}
