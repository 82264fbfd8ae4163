package replacer

import (
	"math/rand/v2"

	"github.com/tuannm99/pagesim/internal/page"
)

// NRU evicts a random page from the lowest non-empty (referenced, modified)
// class. Pages inside a class are not ranked.
type NRU struct {
	rng *rand.Rand

	// scratch buffer reused across calls
	candidates []int
}

// NewNRU uses rng to pick within a class. A nil rng is replaced by a
// fixed-seed source so runs stay reproducible.
func NewNRU(rng *rand.Rand) *NRU {
	if rng == nil {
		rng = rand.New(rand.NewPCG(0, 0))
	}
	return &NRU{rng: rng}
}

func (*NRU) Name() string { return NRUName }

func (r *NRU) Victim(frames []page.Page, _ page.Page, _ []uint32) (uint32, bool) {
	if len(frames) == 0 {
		return 0, false
	}

	// Single pass: keep the indices of the lowest class seen so far.
	best := 4
	r.candidates = r.candidates[:0]
	for i, p := range frames {
		c := p.Class()
		switch {
		case c < best:
			best = c
			r.candidates = append(r.candidates[:0], i)
		case c == best:
			r.candidates = append(r.candidates, i)
		}
	}

	idx := r.candidates[r.rng.IntN(len(r.candidates))]
	return frames[idx].Number, true
}
