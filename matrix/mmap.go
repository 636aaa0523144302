package matrix

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"
)

// Descriptor identifies a file-backed matrix so that independent processes
// can open the same buffer: path, dimensions, and the implied float64
// element type. The file holds rows*cols native-endian float64 values in
// row-major order with no header.
type Descriptor struct {
	Path string
	Rows int
	Cols int
}

// Mmap is a Storage backed by a read-write memory-mapped file.
type Mmap struct {
	desc   Descriptor
	f      *os.File
	buf    []byte
	data   []float64
	closed atomic.Bool
}

// Create creates (or truncates) the file at path, sizes it for rows*cols
// float64 cells, and maps it read-write. The initial content is all zeros.
func Create(path string, rows, cols int) (*Mmap, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidShape
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("matrix: open %s: %w", path, err)
	}
	size := int64(rows) * int64(cols) * 8
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("matrix: size %s: %w", path, err)
	}
	return mapFile(f, Descriptor{Path: path, Rows: rows, Cols: cols})
}

// OpenDescriptor maps an existing matrix file read-write. The file size must
// match the descriptor's dimensions exactly.
func OpenDescriptor(d Descriptor) (*Mmap, error) {
	if d.Rows <= 0 || d.Cols <= 0 {
		return nil, ErrInvalidShape
	}
	f, err := os.OpenFile(d.Path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("matrix: open %s: %w", d.Path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	want := int64(d.Rows) * int64(d.Cols) * 8
	if fi.Size() != want {
		f.Close()
		return nil, fmt.Errorf("matrix: %s is %d bytes, descriptor wants %d", d.Path, fi.Size(), want)
	}
	return mapFile(f, d)
}

func mapFile(f *os.File, d Descriptor) (*Mmap, error) {
	size := d.Rows * d.Cols * 8
	buf, err := mmapRW(f, size)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("matrix: mmap %s: %w", d.Path, err)
	}
	data := unsafe.Slice((*float64)(unsafe.Pointer(&buf[0])), d.Rows*d.Cols)
	return &Mmap{desc: d, f: f, buf: buf, data: data}, nil
}

func (m *Mmap) At(i, j int) float64     { return m.data[i*m.desc.Cols+j] }
func (m *Mmap) Set(i, j int, v float64) { m.data[i*m.desc.Cols+j] = v }
func (m *Mmap) Rows() int               { return m.desc.Rows }
func (m *Mmap) Cols() int               { return m.desc.Cols }

// Descriptor returns the shared handle for opening this matrix elsewhere.
func (m *Mmap) Descriptor() Descriptor { return m.desc }

// Sync flushes modified pages to the backing file.
func (m *Mmap) Sync() error {
	if m.closed.Load() {
		return nil
	}
	return msync(m.buf)
}

// Close unmaps the buffer and closes the file. The file itself remains on
// disk; use Remove to delete it. Any slices or views into the matrix become
// invalid after Close.
func (m *Mmap) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	m.data = nil
	err := munmap(m.buf)
	m.buf = nil
	if closeErr := m.f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	m.f = nil
	return err
}

// Remove closes the mapping and deletes the backing file.
func (m *Mmap) Remove() error {
	err := m.Close()
	if rmErr := os.Remove(m.desc.Path); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}
