// Package task splits a linear task index space into contiguous ranges for
// parallel workers.
package task

// Range is a half-open interval [Start, End) of task indices owned by one
// worker.
type Range struct {
	Start int
	End   int
}

// Len returns the number of tasks in the range.
func (r Range) Len() int { return r.End - r.Start }

// Ranges splits [0, total) into at most chunks contiguous, disjoint,
// collectively exhaustive ranges of near-equal size. The remainder is
// distributed one task each to the first ranges. Output is deterministic
// for a given (total, chunks), which keeps result placement reproducible
// across runs.
func Ranges(total, chunks int) []Range {
	if total <= 0 {
		return nil
	}
	if chunks < 1 {
		chunks = 1
	}
	if chunks > total {
		chunks = total
	}

	base := total / chunks
	rem := total % chunks

	out := make([]Range, 0, chunks)
	start := 0
	for w := 0; w < chunks; w++ {
		size := base
		if w < rem {
			size++
		}
		out = append(out, Range{Start: start, End: start + size})
		start += size
	}
	return out
}
