package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsAllTasks(t *testing.T) {
	p := New(4)
	defer p.Close()

	var sum atomic.Int64
	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		i := i
		wg.Add(1)
		err := p.Submit(context.Background(), func() {
			defer wg.Done()
			sum.Add(int64(i))
		})
		require.NoError(t, err)
	}
	wg.Wait()

	assert.Equal(t, int64(5050), sum.Load())
}

func TestSubmitAfterClose(t *testing.T) {
	p := New(1)
	p.Close()

	err := p.Submit(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCloseIdempotent(t *testing.T) {
	p := New(2)
	p.Close()
	p.Close()
}

func TestSubmitCancelledContext(t *testing.T) {
	p := New(1)
	defer p.Close()

	// Occupy the single worker and fill the queue so Submit must block.
	started := make(chan struct{})
	block := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), func() {
		close(started)
		<-block
	}))
	<-started
	require.NoError(t, p.Submit(context.Background(), func() {}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Submit(ctx, func() {})
	assert.ErrorIs(t, err, context.Canceled)

	close(block)
}
