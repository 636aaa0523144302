// Package matrix provides dense distance-matrix storage.
//
// Two backends implement the same row-major, write-by-index Storage
// interface: Dense keeps the whole matrix resident, Mmap backs it with a
// memory-mapped file for results too large to hold in memory. Callers that
// fill matrices stay agnostic to which backend is active; New selects one
// by cell count according to a Policy.
//
// Finished matrices can be persisted with Save/Load, with optional lz4 or
// zstd compression and CRC32 integrity verification.
package matrix

import (
	"errors"
	"fmt"
	"os"
)

// ErrInvalidShape indicates non-positive matrix dimensions.
var ErrInvalidShape = errors.New("matrix: rows and cols must be positive")

// Storage is a dense 2D float64 container addressed row-major.
//
// Implementations are safe for concurrent use as long as no two goroutines
// touch the same cell, which is how the matrix builder partitions its work.
type Storage interface {
	At(i, j int) float64
	Set(i, j int, v float64)
	Rows() int
	Cols() int

	// Close releases backing resources. Dense storage is a no-op; mapped
	// storage unmaps and closes its file. Close is idempotent.
	Close() error
}

// Dense is an in-memory Storage backed by a flat row-major slice.
type Dense struct {
	rows, cols int
	data       []float64
}

// NewDense allocates an in-memory rows x cols matrix.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidShape
	}
	return &Dense{
		rows: rows,
		cols: cols,
		data: make([]float64, rows*cols),
	}, nil
}

func (d *Dense) At(i, j int) float64     { return d.data[i*d.cols+j] }
func (d *Dense) Set(i, j int, v float64) { d.data[i*d.cols+j] = v }
func (d *Dense) Rows() int               { return d.rows }
func (d *Dense) Cols() int               { return d.cols }
func (d *Dense) Close() error            { return nil }

// Data returns the row-major backing slice. Mutating it mutates the matrix.
func (d *Dense) Data() []float64 { return d.data }

// Row returns the i-th row as a view into the backing slice.
func (d *Dense) Row(i int) []float64 {
	return d.data[i*d.cols : (i+1)*d.cols]
}

// Policy decides when a matrix spills to file-backed storage.
type Policy struct {
	// MaxInMemoryCells is the largest cell count kept fully resident.
	// Builds above it go to a memory-mapped file under Dir. Zero disables
	// spilling (everything stays in memory).
	MaxInMemoryCells int64

	// Dir is the directory for spill files. Empty means the default
	// temporary directory.
	Dir string
}

// New returns Dense or Mmap storage for a rows x cols matrix, chosen by the
// policy. Mapped storage is created in a fresh temporary file; remove it
// with (*Mmap).Remove when the matrix is no longer needed.
func New(rows, cols int, p Policy) (Storage, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidShape
	}
	cells := int64(rows) * int64(cols)
	if p.MaxInMemoryCells > 0 && cells > p.MaxInMemoryCells {
		f, err := os.CreateTemp(p.Dir, "lbdist-*.mat")
		if err != nil {
			return nil, fmt.Errorf("matrix: create spill file: %w", err)
		}
		path := f.Name()
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("matrix: close spill file: %w", err)
		}
		return Create(path, rows, cols)
	}
	return NewDense(rows, cols)
}
