// Package lbdist computes windowed lower bounds on the Dynamic Time Warping
// distance and fans them out into full distance matrices.
//
// DTW is expensive; its lower bounds are not. lbdist implements Lemire's
// LB_Improved (and the classic LB_Keogh) under a Sakoe-Chiba window and a
// dual-level parallel engine that computes cross or pairwise distance
// matrices over many series, spilling oversized results to memory-mapped
// files. The resulting matrices are meant to feed clustering or
// nearest-neighbor pruning layers that only fall back to exact DTW where
// the bound is not decisive.
//
// # Quick Start
//
//	b, err := lbdist.New(
//	    lbdist.WithWindow(10),
//	    lbdist.WithNorm(lb.NormL2),
//	    lbdist.WithOuterWorkers(4),
//	)
//	if err != nil { ... }
//
//	dm, err := b.Build(ctx, series, nil) // series x series cross matrix
//	if err != nil { ... }
//	defer dm.Close()
//
//	d := dm.At(i, j) // lower bound on DTW(series[i], series[j])
//
// # Parallelism
//
// Two independent layers: outer workers own disjoint contiguous ranges of
// the task space and write to disjoint matrix cells (no locking), and each
// worker can parallelize its own kernel loop over inner threads. When more
// than one outer worker is active and the inner thread count was not set
// explicitly, workers run single-threaded to avoid oversubscription.
// Configuration travels through explicit options; the builder never touches
// ambient process state.
//
// # Guarantees
//
// For equal-length series x, y and window w, every kernel result is <= the
// true windowed DTW distance. Bounds are asymmetric; force symmetry to take
// the larger direction, which stays a valid lower bound. A build either
// completes fully or fails without surfacing a partial matrix.
package lbdist
