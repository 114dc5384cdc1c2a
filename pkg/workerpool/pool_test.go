package workerpool_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/salesdash/pkg/workerpool"
)

func TestPool_SubmitAndExecute(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	const n = 100
	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		err := pool.SubmitWait(context.Background(), func() {
			defer wg.Done()
			count.Add(1)
		})
		require.NoError(t, err)
	}

	wg.Wait()
	assert.Equal(t, int64(n), count.Load())
}

func TestPool_ErrPoolFull(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	blocker := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.SubmitWait(context.Background(), func() {
		close(started)
		<-blocker
	}))
	<-started

	// Queue holds twice the worker count.
	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolFull)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.SubmitWait(ctx, func() {}), context.DeadlineExceeded)

	close(blocker)
}

func TestPool_ErrPoolClosed(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()
	pool.Shutdown()

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolClosed)
	assert.ErrorIs(t, pool.SubmitWait(context.Background(), func() {}), workerpool.ErrPoolClosed)
}

func TestPool_PanicRecovery(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	require.NoError(t, pool.SubmitWait(context.Background(), func() { panic("boom") }))

	done := make(chan struct{})
	require.NoError(t, pool.SubmitWait(context.Background(), func() { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a panicking task")
	}
}

func TestGroup_RunsAll(t *testing.T) {
	pool := workerpool.New(3)
	defer pool.Shutdown()

	g, _ := pool.Group(context.Background())
	var sum atomic.Int64
	for i := 1; i <= 10; i++ {
		require.NoError(t, g.Go(func(context.Context) error {
			sum.Add(int64(i))
			return nil
		}))
	}

	require.NoError(t, g.Wait())
	assert.Equal(t, int64(55), sum.Load())
}

func TestGroup_FirstErrorCancels(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	errBatch := errors.New("batch 2 failed")
	g, ctx := pool.Group(context.Background())

	var ran atomic.Int64
	for i := 1; i <= 5; i++ {
		err := g.Go(func(context.Context) error {
			ran.Add(1)
			if i == 2 {
				return errBatch
			}
			return nil
		})
		if err != nil {
			assert.ErrorIs(t, err, errBatch)
			break
		}
	}

	assert.ErrorIs(t, g.Wait(), errBatch)
	assert.Error(t, ctx.Err())
	assert.Less(t, ran.Load(), int64(5)+1)
}

func TestGroup_PanicBecomesError(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()

	g, _ := pool.Group(context.Background())
	require.NoError(t, g.Go(func(context.Context) error { panic("bad row") }))

	err := g.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad row")
}

func TestGroup_ParentCancelled(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	parent, cancel := context.WithCancel(context.Background())
	cancel()

	g, _ := pool.Group(parent)
	assert.ErrorIs(t, g.Go(func(context.Context) error { return nil }), context.Canceled)
	assert.ErrorIs(t, g.Wait(), context.Canceled)
}
