package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCache_LoadsOncePerSession(t *testing.T) {
	f := newCountingFetcher(NewFSFetcher(testCatalogFS()))
	c := NewCache(NewLoader(f), zaptest.NewLogger(t))
	ctx := context.Background()

	assert.Equal(t, StateEmpty, c.State())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := c.Summaries(ctx)
			assert.NoError(t, err)
			assert.Len(t, s, 2)
		}()
	}
	wg.Wait()

	_, err := c.SharedItems(ctx)
	require.NoError(t, err)
	_, err = c.Tools(ctx)
	require.NoError(t, err)

	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, 1, f.count(DefaultIndexPath))
	assert.Equal(t, 1, f.count("catalog/events/gold_rush.xml"))
}

func TestCache_ErrorIsCached(t *testing.T) {
	f := newCountingFetcher(NewFSFetcher(fstest.MapFS{}))
	c := NewCache(NewLoader(f), nil)
	ctx := context.Background()

	_, err1 := c.Summaries(ctx)
	_, err2 := c.Summaries(ctx)
	require.Error(t, err1)
	assert.Equal(t, err1, err2)
	assert.Equal(t, StateError, c.State())
	assert.Equal(t, 1, f.count(DefaultIndexPath))
}

func TestCache_CancellationIsNotCached(t *testing.T) {
	f := newCountingFetcher(NewFSFetcher(testCatalogFS()))
	c := NewCache(NewLoader(f), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Summaries(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateEmpty, c.State())

	s, err := c.Summaries(context.Background())
	require.NoError(t, err)
	assert.Len(t, s, 2)
}

func TestCache_ResetReloads(t *testing.T) {
	f := newCountingFetcher(NewFSFetcher(testCatalogFS()))
	c := NewCache(NewLoader(f), nil)
	ctx := context.Background()

	_, err := c.Summaries(ctx)
	require.NoError(t, err)
	gen := c.Generation()

	c.Reset()
	assert.Equal(t, StateEmpty, c.State())
	assert.Equal(t, gen+1, c.Generation())

	_, err = c.Summaries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.count(DefaultIndexPath))
}

func TestCache_Event(t *testing.T) {
	c := NewCache(NewLoader(NewFSFetcher(testCatalogFS())), nil)
	ctx := context.Background()

	ev, err := c.Event(ctx, "archero2.event.wish_festival.v2")
	require.NoError(t, err)
	assert.Equal(t, "Wish Festival", ev.Title)

	_, err = c.Event(ctx, "archero2.event.missing.v1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "unknown", State(42).String())
}
