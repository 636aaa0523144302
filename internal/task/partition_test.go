package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRanges(t *testing.T) {
	tests := []struct {
		name   string
		total  int
		chunks int
		want   []Range
	}{
		{"TenAcrossThree", 10, 3, []Range{{0, 4}, {4, 7}, {7, 10}}},
		{"EvenSplit", 8, 4, []Range{{0, 2}, {2, 4}, {4, 6}, {6, 8}}},
		{"SingleChunk", 5, 1, []Range{{0, 5}}},
		{"MoreChunksThanTasks", 2, 5, []Range{{0, 1}, {1, 2}}},
		{"ZeroChunksClamped", 3, 0, []Range{{0, 3}}},
		{"Empty", 0, 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ranges(tt.total, tt.chunks))
		})
	}
}

func TestRangesExhaustive(t *testing.T) {
	for total := 1; total <= 40; total++ {
		for chunks := 1; chunks <= 8; chunks++ {
			rs := Ranges(total, chunks)
			require.NotEmpty(t, rs)

			// Contiguous and exhaustive.
			assert.Equal(t, 0, rs[0].Start)
			assert.Equal(t, total, rs[len(rs)-1].End)
			for i := 1; i < len(rs); i++ {
				assert.Equal(t, rs[i-1].End, rs[i].Start)
			}

			// Sizes differ by at most one, larger ranges first.
			for i := 1; i < len(rs); i++ {
				assert.GreaterOrEqual(t, rs[i-1].Len(), rs[i].Len())
				assert.LessOrEqual(t, rs[i-1].Len()-rs[i].Len(), 1)
			}
		}
	}
}

func TestRangesDeterministic(t *testing.T) {
	assert.Equal(t, Ranges(1000, 7), Ranges(1000, 7))
}
