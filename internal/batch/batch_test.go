package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/imgpipe/internal/asset"
)

func TestRun_PreservesOrder(t *testing.T) {
	// Later items finish first; results must still be index-ordered.
	results := Run(context.Background(), 4, 4, func(_ context.Context, i int) (*asset.OptimizedAsset, error) {
		time.Sleep(time.Duration(4-i) * 10 * time.Millisecond)
		return &asset.OptimizedAsset{ID: fmt.Sprintf("asset-%d", i)}, nil
	})

	require.Len(t, results, 4)
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, fmt.Sprintf("asset-%d", i), r.Asset.ID)
	}
}

func TestRun_ConcurrencyCeiling(t *testing.T) {
	var current, peak atomic.Int32
	var mu sync.Mutex

	Run(context.Background(), 20, 3, func(_ context.Context, i int) (*asset.OptimizedAsset, error) {
		n := current.Add(1)
		mu.Lock()
		if n > peak.Load() {
			peak.Store(n)
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		current.Add(-1)
		return &asset.OptimizedAsset{}, nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(3), "more requests in flight than the ceiling allows")
}

func TestRun_PerSlotFailure(t *testing.T) {
	boom := errors.New("item failed")
	results := Run(context.Background(), 3, 2, func(_ context.Context, i int) (*asset.OptimizedAsset, error) {
		if i == 1 {
			return nil, boom
		}
		return &asset.OptimizedAsset{ID: fmt.Sprintf("asset-%d", i)}, nil
	})

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Nil(t, results[1].Asset)
	assert.NoError(t, results[2].Err, "sibling of a failed item must still run")
	assert.NotNil(t, results[2].Asset)
}

func TestRun_ZeroConcurrencyTreatedAsOne(t *testing.T) {
	var current atomic.Int32
	results := Run(context.Background(), 5, 0, func(_ context.Context, i int) (*asset.OptimizedAsset, error) {
		if current.Add(1) > 1 {
			t.Error("concurrency 0 must serialize")
		}
		defer current.Add(-1)
		return &asset.OptimizedAsset{}, nil
	})
	assert.Len(t, results, 5)
}

func TestRun_EmptyInput(t *testing.T) {
	results := Run(context.Background(), 0, 4, func(_ context.Context, i int) (*asset.OptimizedAsset, error) {
		t.Error("fn called for empty batch")
		return nil, nil
	})
	assert.Empty(t, results)
}
