package lbdist

import (
	"errors"
	"fmt"

	"github.com/hupe1980/lbdist/envelope"
)

var (
	// ErrInvalidWindow is returned for a negative window radius.
	ErrInvalidWindow = errors.New("lbdist: window must be non-negative")

	// ErrEmptySeriesList is returned when a build receives no series.
	ErrEmptySeriesList = errors.New("lbdist: series list must be non-empty")

	// ErrPairwiseLength is returned when a pairwise build receives lists of
	// different sizes.
	ErrPairwiseLength = errors.New("lbdist: pairwise build requires equally sized series lists")
)

// ErrSeriesLength indicates a series whose length disagrees with the series
// length of the build.
type ErrSeriesLength struct {
	Index    int
	Expected int
	Actual   int
}

func (e *ErrSeriesLength) Error() string {
	return fmt.Sprintf("lbdist: series %d has length %d, want %d", e.Index, e.Actual, e.Expected)
}

// ErrBuildFailed indicates that a worker-level fault aborted an entire
// build. No partial result is surfaced.
//
// The original kernel error can be accessed via errors.Unwrap.
type ErrBuildFailed struct {
	cause error
}

func (e *ErrBuildFailed) Error() string {
	return fmt.Sprintf("lbdist: build aborted: %v", e.cause)
}

func (e *ErrBuildFailed) Unwrap() error { return e.cause }

// translateError normalizes validation errors surfacing from the leaf
// packages into the root taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, envelope.ErrNegativeWindow) {
		return fmt.Errorf("%w: %w", ErrInvalidWindow, err)
	}
	return err
}
