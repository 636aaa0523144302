package matrix

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Snapshot file layout, little-endian:
//
//	magic "LBMX" (4) | version u16 | codec name len u16 | rows u64 | cols u64 |
//	payload checksum u32 | payload len u64 | codec name | payload
//
// The payload is the row-major float64 cell data, possibly compressed. The
// checksum is CRC32 (IEEE) over the stored (compressed) payload bytes; it
// detects accidental corruption, not tampering.

var snapshotMagic = [4]byte{'L', 'B', 'M', 'X'}

const (
	snapshotVersion    = 1
	snapshotHeaderSize = 4 + 2 + 2 + 8 + 8 + 4 + 8
)

// Codec compresses and decompresses snapshot payloads.
// Implementations must be safe for concurrent use.
type Codec interface {
	Name() string
	Compress(src []byte) ([]byte, error)

	// Decompress expands src; size is the exact uncompressed byte count,
	// known from the snapshot dimensions.
	Decompress(src []byte, size int) ([]byte, error)
}

// CodecByName returns a built-in snapshot codec by its stable name.
//
// Snapshots are self-describing: the codec name is stored in the header, so
// Load never needs to be told which codec wrote a file.
func CodecByName(name string) (Codec, bool) {
	switch name {
	case "none":
		return noneCodec{}, true
	case "lz4":
		return lz4Codec{}, true
	case "zstd":
		return zstdCodec{}, true
	default:
		return nil, false
	}
}

type noneCodec struct{}

func (noneCodec) Name() string                        { return "none" }
func (noneCodec) Compress(src []byte) ([]byte, error) { return src, nil }
func (noneCodec) Decompress(src []byte, _ int) ([]byte, error) {
	return src, nil
}

// lz4Codec stores payloads as a one-byte flag followed by either an lz4
// block (flag 1) or the raw bytes (flag 0, used when the block API reports
// the input as incompressible).
type lz4Codec struct{}

func (lz4Codec) Name() string { return "lz4" }

func (lz4Codec) Compress(src []byte) ([]byte, error) {
	dst := make([]byte, 1+lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, dst[1:], nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		out := make([]byte, 1+len(src))
		copy(out[1:], src)
		return out, nil
	}
	dst[0] = 1
	return dst[:1+n], nil
}

func (lz4Codec) Decompress(src []byte, size int) ([]byte, error) {
	if len(src) == 0 {
		return nil, fmt.Errorf("matrix: empty lz4 payload")
	}
	if src[0] == 0 {
		return src[1:], nil
	}
	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(src[1:], dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

type zstdCodec struct{}

func (zstdCodec) Name() string { return "zstd" }

func (zstdCodec) Compress(src []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(src, nil), nil
}

func (zstdCodec) Decompress(src []byte, size int) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(src, make([]byte, 0, size))
}

// ChecksumMismatchError is returned when snapshot checksum verification
// fails.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// Save persists s to path using the named codec ("none", "lz4" or "zstd").
func Save(s Storage, path, codecName string) error {
	c, ok := CodecByName(codecName)
	if !ok {
		return fmt.Errorf("matrix: unsupported snapshot codec %q", codecName)
	}

	rows, cols := s.Rows(), s.Cols()
	raw := make([]byte, rows*cols*8)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			off := (i*cols + j) * 8
			binary.LittleEndian.PutUint64(raw[off:], math.Float64bits(s.At(i, j)))
		}
	}

	payload, err := c.Compress(raw)
	if err != nil {
		return fmt.Errorf("matrix: compress snapshot: %w", err)
	}

	name := []byte(c.Name())
	out := make([]byte, snapshotHeaderSize+len(name)+len(payload))
	copy(out, snapshotMagic[:])
	binary.LittleEndian.PutUint16(out[4:], snapshotVersion)
	binary.LittleEndian.PutUint16(out[6:], uint16(len(name)))
	binary.LittleEndian.PutUint64(out[8:], uint64(rows))
	binary.LittleEndian.PutUint64(out[16:], uint64(cols))
	binary.LittleEndian.PutUint32(out[24:], crc32.ChecksumIEEE(payload))
	binary.LittleEndian.PutUint64(out[28:], uint64(len(payload)))
	copy(out[snapshotHeaderSize:], name)
	copy(out[snapshotHeaderSize+len(name):], payload)

	return os.WriteFile(path, out, 0o644)
}

// Load reads a snapshot written by Save into an in-memory Dense matrix.
func Load(path string) (*Dense, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < snapshotHeaderSize {
		return nil, fmt.Errorf("matrix: truncated snapshot")
	}
	if data[0] != snapshotMagic[0] || data[1] != snapshotMagic[1] ||
		data[2] != snapshotMagic[2] || data[3] != snapshotMagic[3] {
		return nil, fmt.Errorf("matrix: unsupported snapshot format: bad magic")
	}
	if ver := binary.LittleEndian.Uint16(data[4:]); ver != snapshotVersion {
		return nil, fmt.Errorf("matrix: unsupported snapshot version: %d", ver)
	}

	nameLen := int(binary.LittleEndian.Uint16(data[6:]))
	rows := int(binary.LittleEndian.Uint64(data[8:]))
	cols := int(binary.LittleEndian.Uint64(data[16:]))
	checksum := binary.LittleEndian.Uint32(data[24:])
	payloadLen := int(binary.LittleEndian.Uint64(data[28:]))
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidShape
	}
	if len(data) != snapshotHeaderSize+nameLen+payloadLen {
		return nil, fmt.Errorf("matrix: truncated snapshot payload")
	}

	codecName := string(data[snapshotHeaderSize : snapshotHeaderSize+nameLen])
	c, ok := CodecByName(codecName)
	if !ok {
		return nil, fmt.Errorf("matrix: unsupported snapshot codec %q", codecName)
	}

	payload := data[snapshotHeaderSize+nameLen:]
	if actual := crc32.ChecksumIEEE(payload); actual != checksum {
		return nil, &ChecksumMismatchError{Expected: checksum, Actual: actual}
	}

	raw, err := c.Decompress(payload, rows*cols*8)
	if err != nil {
		return nil, fmt.Errorf("matrix: decompress snapshot: %w", err)
	}
	if len(raw) != rows*cols*8 {
		return nil, fmt.Errorf("matrix: snapshot payload is %d bytes, want %d", len(raw), rows*cols*8)
	}

	d, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	for k := range d.data {
		d.data[k] = math.Float64frombits(binary.LittleEndian.Uint64(raw[k*8:]))
	}
	return d, nil
}
