package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/imgpipe/internal/asset"
)

func newAsset(url string) *asset.OptimizedAsset {
	return &asset.OptimizedAsset{ID: "id-" + url, OriginalURL: url}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	a := DeriveKey("https://x/i.jpg", "q=80|w=800")
	b := DeriveKey("https://x/i.jpg", "q=80|w=800")
	c := DeriveKey("https://x/i.jpg", "q=80|w=400")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGetOrCompute_HitReturnsSamePointer(t *testing.T) {
	c := New()
	key := DeriveKey("u", "")

	first, err := c.GetOrCompute(context.Background(), key, "u", func() (*asset.OptimizedAsset, error) {
		return newAsset("u"), nil
	})
	require.NoError(t, err)

	second, err := c.GetOrCompute(context.Background(), key, "u", func() (*asset.OptimizedAsset, error) {
		t.Fatal("compute ran on a resolved key")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Same(t, first, second, "cache hit must return the identical object")
}

func TestGetOrCompute_DedupsConcurrentRequests(t *testing.T) {
	c := New()
	key := DeriveKey("u", "")

	var computes atomic.Int32
	release := make(chan struct{})

	const callers = 8
	results := make([]*asset.OptimizedAsset, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			a, err := c.GetOrCompute(context.Background(), key, "u", func() (*asset.OptimizedAsset, error) {
				computes.Add(1)
				<-release
				return newAsset("u"), nil
			})
			assert.NoError(t, err)
			results[idx] = a
		}(i)
	}

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), computes.Load(), "exactly one compute for identical concurrent requests")
	for i := 1; i < callers; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestGetOrCompute_FailureRevertsToAbsent(t *testing.T) {
	c := New()
	key := DeriveKey("u", "")
	boom := errors.New("decode failed")

	_, err := c.GetOrCompute(context.Background(), key, "u", func() (*asset.OptimizedAsset, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len(), "failed keys are not cached")

	// Retry succeeds: the key reverted to absent.
	a, err := c.GetOrCompute(context.Background(), key, "u", func() (*asset.OptimizedAsset, error) {
		return newAsset("u"), nil
	})
	require.NoError(t, err)
	assert.NotNil(t, a)
	assert.Equal(t, 1, c.Len())
}

func TestGetOrCompute_FailurePropagatesToWaiters(t *testing.T) {
	c := New()
	key := DeriveKey("u", "")
	boom := errors.New("decode failed")
	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := c.GetOrCompute(context.Background(), key, "u", func() (*asset.OptimizedAsset, error) {
			close(started)
			<-release
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
	}()

	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := c.GetOrCompute(context.Background(), key, "u", func() (*asset.OptimizedAsset, error) {
			t.Error("second compute should have joined the in-flight one")
			return nil, nil
		})
		assert.ErrorIs(t, err, boom)
	}()

	close(release)
	wg.Wait()
}

func TestClear(t *testing.T) {
	c := New()
	for _, u := range []string{"a", "b", "c"} {
		_, err := c.GetOrCompute(context.Background(), DeriveKey(u, ""), u, func() (*asset.OptimizedAsset, error) {
			return newAsset(u), nil
		})
		require.NoError(t, err)
	}
	require.Equal(t, 3, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestClear_DiscardsInFlightResult(t *testing.T) {
	c := New()
	key := DeriveKey("u", "")
	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a, err := c.GetOrCompute(context.Background(), key, "u", func() (*asset.OptimizedAsset, error) {
			close(started)
			<-release
			return newAsset("u"), nil
		})
		// The abandoned computation still completes for its caller.
		assert.NoError(t, err)
		assert.NotNil(t, a)
	}()

	<-started
	c.Clear()
	close(release)
	wg.Wait()

	assert.Equal(t, 0, c.Len(), "result computed across a Clear must not be inserted")
}

func TestRemove_EvictsAllVariantsOfURL(t *testing.T) {
	c := New()
	compute := func(u string) func() (*asset.OptimizedAsset, error) {
		return func() (*asset.OptimizedAsset, error) { return newAsset(u), nil }
	}

	_, err := c.GetOrCompute(context.Background(), DeriveKey("u1", "w=320"), "u1", compute("u1"))
	require.NoError(t, err)
	_, err = c.GetOrCompute(context.Background(), DeriveKey("u1", "w=640"), "u1", compute("u1"))
	require.NoError(t, err)
	_, err = c.GetOrCompute(context.Background(), DeriveKey("u2", "w=320"), "u2", compute("u2"))
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	c.Remove("u1")
	assert.Equal(t, 1, c.Len(), "all option variants of u1 evicted, u2 kept")
}

func TestGetOrCompute_WaiterHonorsContext(t *testing.T) {
	c := New()
	key := DeriveKey("u", "")
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	go func() {
		_, _ = c.GetOrCompute(context.Background(), key, "u", func() (*asset.OptimizedAsset, error) {
			close(started)
			<-release
			return newAsset("u"), nil
		})
	}()

	<-started
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetOrCompute(ctx, key, "u", func() (*asset.OptimizedAsset, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
