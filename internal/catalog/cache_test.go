package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingSource struct {
	municipalityCalls atomic.Int32
	shopCalls         atomic.Int32
	release           chan struct{}
	err               error
}

func (s *countingSource) Municipalities(ctx context.Context) ([]Municipality, error) {
	s.municipalityCalls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []Municipality{{ID: "settimo", Name: "Settimo", Categories: []string{"Alimentari"}}}, nil
}

func (s *countingSource) Shops(ctx context.Context, id string) ([]Shop, error) {
	s.shopCalls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return []Shop{{ID: id + "-shop", Products: []Product{{Name: "Pane"}}}}, nil
}

func TestCachedSourceServesFromCacheUntilExpiry(t *testing.T) {
	t.Parallel()

	upstream := &countingSource{}
	cache := NewCachedSource(upstream, time.Minute)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		list, err := cache.Municipalities(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 1)
	}
	require.EqualValues(t, 1, upstream.municipalityCalls.Load())

	now = now.Add(2 * time.Minute)
	_, err := cache.Municipalities(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, upstream.municipalityCalls.Load())
}

func TestCachedSourceReturnsCopies(t *testing.T) {
	t.Parallel()

	cache := NewCachedSource(&countingSource{}, time.Minute)
	first, err := cache.Shops(context.Background(), "settimo")
	require.NoError(t, err)
	first[0].Products[0].Name = "modificato"

	second, err := cache.Shops(context.Background(), "settimo")
	require.NoError(t, err)
	require.Equal(t, "Pane", second[0].Products[0].Name)
}

func TestCachedSourceCollapsesConcurrentLoads(t *testing.T) {
	t.Parallel()

	upstream := &countingSource{release: make(chan struct{})}
	cache := NewCachedSource(upstream, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shops, err := cache.Shops(context.Background(), "settimo")
			require.NoError(t, err)
			require.Len(t, shops, 1)
		}()
	}
	require.Eventually(t, func() bool { return upstream.shopCalls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(upstream.release)
	wg.Wait()
	require.LessOrEqual(t, upstream.shopCalls.Load(), int32(5))
	_, err := cache.Shops(context.Background(), "settimo")
	require.NoError(t, err)
	calls := upstream.shopCalls.Load()
	_, err = cache.Shops(context.Background(), "settimo")
	require.NoError(t, err)
	require.Equal(t, calls, upstream.shopCalls.Load(), "cached after the collapsed load")
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	upstream := &countingSource{err: errors.New("offline")}
	cache := NewCachedSource(upstream, time.Minute)
	_, err := cache.Municipalities(context.Background())
	require.Error(t, err)
	_, err = cache.Municipalities(context.Background())
	require.Error(t, err)
	require.EqualValues(t, 2, upstream.municipalityCalls.Load())

	cache.Purge()
}

// blockingSource waits for release or for its load context to end.
type blockingSource struct {
	countingSource
	started chan struct{}
}

func (s *blockingSource) Shops(ctx context.Context, id string) ([]Shop, error) {
	if s.shopCalls.Add(1) == 1 {
		close(s.started)
	}
	select {
	case <-s.release:
		return []Shop{{ID: id + "-shop"}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCachedSourceCallerCancelDoesNotFailOthers(t *testing.T) {
	t.Parallel()

	upstream := &blockingSource{countingSource: countingSource{release: make(chan struct{})}, started: make(chan struct{})}
	cache := NewCachedSource(upstream, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.Shops(ctx, "settimo")
		firstErr <- err
	}()
	<-upstream.started
	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	type result struct {
		shops []Shop
		err   error
	}
	second := make(chan result, 1)
	go func() {
		shops, err := cache.Shops(context.Background(), "settimo")
		second <- result{shops, err}
	}()
	close(upstream.release)

	res := <-second
	require.NoError(t, res.err)
	require.Len(t, res.shops, 1)
	require.EqualValues(t, 1, upstream.shopCalls.Load(), "second caller joined the running load")
}

func TestCachedSourceBoundsSharedLoad(t *testing.T) {
	t.Parallel()

	upstream := &blockingSource{countingSource: countingSource{release: make(chan struct{})}, started: make(chan struct{})}
	cache := NewCachedSource(upstream, time.Minute)
	cache.loadLimit = 10 * time.Millisecond

	_, err := cache.Shops(context.Background(), "settimo")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
