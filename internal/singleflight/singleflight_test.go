package singleflight

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestGroup_Coalesces(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	var calls atomic.Int32
	release := make(chan struct{})

	var eg errgroup.Group
	for i := 0; i < 16; i++ {
		eg.Go(func() error {
			v, _, err := g.Do(context.Background(), "k", func() (int, error) {
				calls.Add(1)
				<-release
				return 7, nil
			})
			if err == nil && v != 7 {
				return errors.New("wrong value")
			}
			return err
		})
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	require.NoError(t, eg.Wait())
	assert.LessOrEqual(t, calls.Load(), int32(16))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestGroup_WaiterContext(t *testing.T) {
	t.Parallel()

	var g Group[int, int]
	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _, _ = g.Do(context.Background(), 1, func() (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, shared, err := g.Do(ctx, 1, func() (int, error) { return 2, nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, shared)
	close(release)
}

func TestGroup_Panic(t *testing.T) {
	t.Parallel()

	var g Group[string, string]
	_, _, err := g.Do(context.Background(), "p", func() (string, error) { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	v, _, err := g.Do(context.Background(), "p", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}
