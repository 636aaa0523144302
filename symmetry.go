package lbdist

import (
	"math"

	"github.com/hupe1980/lbdist/matrix"
)

// Symmetrize reconciles the two triangles of a square cross-distance matrix
// of asymmetric lower bounds: D[i][j] and D[j][i] are both overwritten with
// their maximum. The larger of two valid lower bounds is itself a valid
// lower bound on the (symmetric) DTW distance, and is the tighter of the
// two, so the result is the tightest symmetric matrix derivable from the
// directional bounds. The diagonal is untouched.
//
// Returns false and leaves the matrix unchanged when s is not square.
func Symmetrize(s matrix.Storage) bool {
	if s == nil || s.Rows() != s.Cols() {
		return false
	}
	n := s.Rows()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := math.Max(s.At(i, j), s.At(j, i))
			s.Set(i, j, v)
			s.Set(j, i, v)
		}
	}
	return true
}
