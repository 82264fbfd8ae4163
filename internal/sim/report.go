package sim

import (
	"fmt"

	"github.com/tuannm99/pagesim/internal/frames"
)

// Report accumulates the outcome of a run. Transitions return a new value.
type Report struct {
	Hits      uint64 `json:"hits"`
	Faults    uint64 `json:"faults"`
	Evictions uint64 `json:"evictions"`
}

func (r Report) Hit() Report {
	r.Hits++
	return r
}

func (r Report) Fault() Report {
	r.Faults++
	return r
}

// Evict counts an eviction. It is always paired with Fault.
func (r Report) Evict() Report {
	r.Evictions++
	return r
}

// With folds one outcome into the report.
func (r Report) With(o frames.Outcome) Report {
	switch o {
	case frames.Hit:
		return r.Hit()
	case frames.Fault:
		return r.Fault()
	case frames.FaultEvicted:
		return r.Fault().Evict()
	}
	return r
}

// Total is the number of accesses processed.
func (r Report) Total() uint64 { return r.Hits + r.Faults }

func (r Report) HitRatio() float64 {
	if r.Total() == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Total())
}

func (r Report) String() string {
	return fmt.Sprintf("hits=%d faults=%d evictions=%d", r.Hits, r.Faults, r.Evictions)
}
