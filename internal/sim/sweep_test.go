package sim

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/pagesim/internal/frames"
	"github.com/tuannm99/pagesim/internal/page"
	"github.com/tuannm99/pagesim/internal/replacer"
)

func TestSweep_GridOrder(t *testing.T) {
	cfg := SweepConfig{
		Policies:    []string{"fifo", "clock", "lru"},
		FrameSizes:  []int{3, 5, 10},
		Accesses:    page.Reads([]uint32{1, 2, 4, 2, 1, 5, 4}),
		Parallelism: 2,
	}

	results, err := Sweep(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, results, 9)

	wantPolicies := []string{replacer.FIFOName, replacer.SecondChanceName, replacer.LRUName}
	ids := map[string]bool{}
	for i, r := range results {
		require.Equal(t, wantPolicies[i/3], r.Policy)
		require.Equal(t, cfg.FrameSizes[i%3], r.FrameSize)
		require.Equal(t, uint64(7), r.Report.Total())
		require.NotEmpty(t, r.RunID)
		ids[r.RunID] = true
	}
	require.Len(t, ids, 9)

	// 4 distinct pages fit in 5 frames: only cold faults.
	require.Equal(t, Report{Hits: 3, Faults: 4}, results[1].Report)
}

func TestSweep_NRUReproducible(t *testing.T) {
	cfg := SweepConfig{
		Policies:   []string{"nru"},
		FrameSizes: []int{2, 3},
		Accesses: []page.Access{
			{Number: 1}, {Number: 2, Write: true}, {Number: 3}, {Number: 1},
			{Number: 4}, {Number: 2}, {Number: 5, Write: true}, {Number: 3},
		},
		Seed:          42,
		ResetInterval: 3,
	}

	a, err := Sweep(context.Background(), cfg)
	require.NoError(t, err)
	b, err := Sweep(context.Background(), cfg)
	require.NoError(t, err)

	for i := range a {
		require.Equal(t, a[i].Report, b[i].Report)
	}
}

func TestSweep_Validation(t *testing.T) {
	_, err := Sweep(context.Background(), SweepConfig{FrameSizes: []int{1}})
	require.ErrorIs(t, err, ErrEmptySweep)

	_, err = Sweep(context.Background(), SweepConfig{Policies: []string{"mru"}, FrameSizes: []int{1}})
	require.ErrorIs(t, err, replacer.ErrUnknownPolicy)

	_, err = Sweep(context.Background(), SweepConfig{Policies: []string{"lru"}, FrameSizes: []int{0}})
	require.ErrorIs(t, err, frames.ErrInvalidFrameSize)
}

func TestSweep_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sweep(ctx, SweepConfig{Policies: []string{"lru"}, FrameSizes: []int{1, 2}})
	require.ErrorIs(t, err, context.Canceled)
}

type lockedObserver struct {
	mu    sync.Mutex
	count map[string]int
}

func (o *lockedObserver) Observe(policy string, _ int, _ frames.Step) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.count[policy]++
}

func TestSweep_SharedObserver(t *testing.T) {
	obs := &lockedObserver{count: map[string]int{}}

	_, err := Sweep(context.Background(), SweepConfig{
		Policies:    []string{"fifo", "lru"},
		FrameSizes:  []int{1, 2, 3},
		Accesses:    page.Reads([]uint32{1, 2, 3, 1}),
		Parallelism: 4,
		Observer:    obs,
	})
	require.NoError(t, err)
	require.Equal(t, 12, obs.count["fifo"])
	require.Equal(t, 12, obs.count["lru"])
}
