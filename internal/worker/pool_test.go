package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunVisitsEveryIndex(t *testing.T) {
	p := NewPool(4)
	seen := make([]int32, 25)

	err := p.Run(context.Background(), len(seen), func(ctx context.Context, i int) error {
		atomic.AddInt32(&seen[i], 1)
		return nil
	})

	require.NoError(t, err)
	for i, n := range seen {
		assert.Equalf(t, int32(1), n, "index %d", i)
	}
}

func TestPool_RespectsWorkerLimit(t *testing.T) {
	p := NewPool(3)
	var running, peak atomic.Int32

	err := p.Run(context.Background(), 20, func(ctx context.Context, i int) error {
		cur := running.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		running.Add(-1)
		return nil
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestPool_FirstErrorStopsQueue(t *testing.T) {
	p := NewPool(1)
	boom := errors.New("boom")
	var calls atomic.Int32

	err := p.Run(context.Background(), 10, func(ctx context.Context, i int) error {
		calls.Add(1)
		if i == 2 {
			return boom
		}
		return nil
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPool_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPool(2).Run(ctx, 5, func(ctx context.Context, i int) error {
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestPool_ZeroJobs(t *testing.T) {
	called := false
	err := NewPool(2).Run(context.Background(), 0, func(ctx context.Context, i int) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, 1, NewPool(0).Workers())
}
