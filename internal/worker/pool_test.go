package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPool_PreservesOrderPerKey(t *testing.T) {
	p := NewPool(4, 64, nil)

	var mu sync.Mutex
	seen := map[int64][]int{}
	for i := 0; i < 30; i++ {
		key := int64(i % 3)
		step := i
		require.NoError(t, p.Submit(Job{Key: key, Name: "record", Run: func(context.Context) {
			mu.Lock()
			seen[key] = append(seen[key], step)
			mu.Unlock()
		}}))
	}
	require.NoError(t, p.Shutdown(context.Background()))

	for key, steps := range seen {
		assert.Len(t, steps, 10, "key %d", key)
		assert.IsIncreasing(t, steps, "key %d", key)
	}
}

func TestPool_SubmitNeverBlocks(t *testing.T) {
	p := NewPool(1, 1, nil)
	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, p.Submit(Job{Key: 1, Name: "blocker", Run: func(context.Context) {
		close(started)
		<-release
	}}))
	<-started
	require.NoError(t, p.Submit(Job{Key: 1, Name: "queued", Run: func(context.Context) {}}))

	assert.ErrorIs(t, p.Submit(Job{Key: 1, Name: "dropped", Run: func(context.Context) {}}), ErrQueueFull)

	close(release)
	require.NoError(t, p.Shutdown(context.Background()))
	assert.ErrorIs(t, p.Submit(Job{Key: 1, Name: "late", Run: func(context.Context) {}}), ErrPoolClosed)
}

func TestPool_RecoversPanics(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	p := NewPool(1, 4, zap.New(core))

	ran := false
	require.NoError(t, p.Submit(Job{Key: 9, Name: "explode", Run: func(context.Context) { panic("boom") }}))
	require.NoError(t, p.Submit(Job{Key: 9, Name: "after", Run: func(context.Context) { ran = true }}))
	require.NoError(t, p.Shutdown(context.Background()))

	assert.True(t, ran)
	entries := logs.FilterMessage("job panicked").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "explode", entries[0].ContextMap()["job"])
}

func TestPool_ShutdownHonorsDeadline(t *testing.T) {
	p := NewPool(1, 1, nil)
	release := make(chan struct{})
	defer close(release)

	require.NoError(t, p.Submit(Job{Key: 0, Name: "slow", Run: func(ctx context.Context) {
		select {
		case <-release:
		case <-ctx.Done():
		}
	}}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Shutdown(ctx), context.DeadlineExceeded)
}

func TestPool_RejectsJobWithoutRun(t *testing.T) {
	p := NewPool(1, 1, nil)
	defer func() { _ = p.Shutdown(context.Background()) }()
	assert.Error(t, p.Submit(Job{Key: 1, Name: "empty"}))
}

func TestPool_NegativeKeys(t *testing.T) {
	p := NewPool(3, 1, nil)
	assert.Equal(t, 2, p.shard(-1))
	assert.Equal(t, 0, p.shard(-3))
	require.NoError(t, p.Shutdown(context.Background()))
}
