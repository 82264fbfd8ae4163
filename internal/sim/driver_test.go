package sim

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/pagesim/internal/frames"
	"github.com/tuannm99/pagesim/internal/page"
	"github.com/tuannm99/pagesim/internal/replacer"
)

func mustPolicy(t *testing.T, name string) replacer.Policy {
	t.Helper()
	p, err := replacer.New(name, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	return p
}

func TestRun_KnownReports(t *testing.T) {
	cases := []struct {
		name   string
		policy string
		refs   []uint32
		frames int
		want   Report
	}{
		{"fifo simple", "fifo", []uint32{0, 1, 2, 3}, 3, Report{Hits: 0, Faults: 4, Evictions: 1}},
		{"fifo repeats", "fifo", []uint32{0, 1, 0, 1, 1, 0, 1}, 2, Report{Hits: 5, Faults: 2, Evictions: 0}},
		{"fifo complex", "fifo", []uint32{1, 3, 0, 3, 5, 6, 3}, 3, Report{Hits: 1, Faults: 6, Evictions: 3}},
		{"lru recency", "lru", []uint32{0, 1, 2, 0, 3, 2, 1}, 3, Report{Hits: 2, Faults: 5, Evictions: 2}},
		{"lru complex", "lru", []uint32{7, 0, 1, 2, 0, 3, 0, 4, 2, 3, 0, 3, 2, 3}, 4, Report{Hits: 8, Faults: 6, Evictions: 2}},
		{"second chance", "second-chance", []uint32{0, 4, 1, 4, 2, 4, 3, 4, 2, 4, 0}, 3, Report{Hits: 5, Faults: 6, Evictions: 3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Run(mustPolicy(t, tc.policy), tc.refs, tc.frames)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestRun_EmptyInput(t *testing.T) {
	for _, name := range replacer.Names() {
		got, err := Run(mustPolicy(t, name), nil, 3)
		require.NoError(t, err)
		require.Equal(t, Report{}, got, name)
	}
}

func TestRun_ZeroFrameSize(t *testing.T) {
	_, err := Run(mustPolicy(t, "fifo"), []uint32{1}, 0)
	require.ErrorIs(t, err, frames.ErrInvalidFrameSize)
}

func TestRun_Conservation(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	accesses := make([]page.Access, 300)
	for i := range accesses {
		accesses[i] = page.Access{Number: uint32(rng.IntN(10)), Write: rng.IntN(3) == 0}
	}

	for _, name := range replacer.Names() {
		for size := 1; size <= 12; size++ {
			got, err := RunAccesses(mustPolicy(t, name), accesses, size)
			require.NoError(t, err)

			require.Equal(t, uint64(len(accesses)), got.Hits+got.Faults, "%s/%d", name, size)
			require.LessOrEqual(t, got.Evictions, got.Faults)
		}
	}
}

type brokenPolicy struct{}

func (brokenPolicy) Name() string { return "broken" }

func (brokenPolicy) Victim([]page.Page, page.Page, []uint32) (uint32, bool) {
	return 1000, true
}

func TestRun_PropagatesInvariantViolation(t *testing.T) {
	got, err := Run(brokenPolicy{}, []uint32{1, 2, 3}, 2)
	require.ErrorIs(t, err, frames.ErrInvariantViolation)
	require.Equal(t, Report{}, got)
}

type countingObserver struct {
	steps []frames.Step
}

func (c *countingObserver) Observe(_ string, _ int, step frames.Step) {
	c.steps = append(c.steps, step)
}

func TestRun_Observer(t *testing.T) {
	obs := &countingObserver{}

	_, err := Run(mustPolicy(t, "fifo"), []uint32{1, 2, 1, 3}, 2, WithObserver(obs))
	require.NoError(t, err)

	require.Len(t, obs.steps, 4)
	require.Equal(t, frames.Hit, obs.steps[2].Outcome)
	require.Equal(t, frames.FaultEvicted, obs.steps[3].Outcome)
	require.Equal(t, uint32(1), obs.steps[3].Victim)
}

func TestRunAccesses_ReferenceResetChangesSecondChance(t *testing.T) {
	refs := page.Reads([]uint32{1, 2, 1, 3, 4})

	// Without the tick, 1 is referenced and survives the first eviction.
	plain, err := RunAccesses(mustPolicy(t, "second-chance"), refs, 2)
	require.NoError(t, err)

	// With a tick every access nothing stays referenced, so it behaves like FIFO.
	ticked, err := RunAccesses(mustPolicy(t, "second-chance"), refs, 2, WithReferenceReset(1))
	require.NoError(t, err)
	fifo, err := RunAccesses(mustPolicy(t, "fifo"), refs, 2)
	require.NoError(t, err)

	require.Equal(t, fifo, ticked)
	require.Equal(t, plain.Total(), ticked.Total())
}
