package frames

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/tuannm99/pagesim/internal/page"
	"github.com/tuannm99/pagesim/internal/replacer"
)

type Option func(*Table)

// WithReferenceReset clears every resident referenced bit after each n
// processed accesses, like the periodic clock tick NRU relies on. 0 disables it.
func WithReferenceReset(n int) Option {
	return func(t *Table) {
		if n > 0 {
			t.resetEvery = n
		}
	}
}

// Table is the set of resident pages for one simulation run. It owns its
// frames and history; it is not safe for concurrent use.
type Table struct {
	size   int
	policy replacer.Policy

	frames  []page.Page    // frame order; len <= size
	index   map[uint32]int // page number -> position in frames
	history []uint32       // every access so far, oldest first

	resetEvery int
	steps      int
}

func New(size int, policy replacer.Policy, opts ...Option) (*Table, error) {
	if size < 1 {
		return nil, ErrInvalidFrameSize
	}
	if policy == nil {
		return nil, ErrNoPolicy
	}
	t := &Table{
		size:   size,
		policy: policy,
		frames: make([]page.Page, 0, size),
		index:  make(map[uint32]int, size),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Apply processes one access and classifies it.
func (t *Table) Apply(number uint32, write bool) (Step, error) {
	step := Step{Number: number, Write: write}

	// 1) HIT
	if idx, ok := t.index[number]; ok {
		p := &t.frames[idx]
		p.Referenced = true
		if write {
			p.Modified = true
		}
		step.Outcome = Hit
		t.record(number)
		return step, nil
	}

	incoming := page.New(number)
	incoming.Modified = write

	// 2) Free frame
	if len(t.frames) < t.size {
		t.index[number] = len(t.frames)
		t.frames = append(t.frames, incoming)
		step.Outcome = Fault
		t.record(number)
		return step, nil
	}

	// 3) Evict
	victim, ok := t.policy.Victim(t.frames, incoming, t.history)
	if !ok {
		return step, t.violation("no victim selected", victim)
	}

	// The policy may have rotated frames; look the victim up by position.
	pos := slices.IndexFunc(t.frames, func(p page.Page) bool { return p.Number == victim })
	if pos < 0 {
		return step, t.violation("victim not resident", victim)
	}

	t.frames = slices.Delete(t.frames, pos, pos+1)
	t.frames = append(t.frames, incoming)
	t.reindex()

	slog.Debug("frames: evict",
		"policy", t.policy.Name(),
		"victim", victim,
		"incoming", number,
	)

	step.Outcome = FaultEvicted
	step.Victim = victim
	t.record(number)
	return step, nil
}

// Restore replaces the table contents, e.g. to start from a known frame state.
// resident must fit the table, hold distinct page numbers, and every resident
// number must appear in history.
func (t *Table) Restore(resident []page.Page, history []uint32) error {
	if len(resident) > t.size {
		return fmt.Errorf("%w: %d pages for %d frames", ErrInvalidState, len(resident), t.size)
	}

	accessed := make(map[uint32]struct{}, len(history))
	for _, n := range history {
		accessed[n] = struct{}{}
	}

	seen := make(map[uint32]struct{}, len(resident))
	for _, p := range resident {
		if _, dup := seen[p.Number]; dup {
			return fmt.Errorf("%w: page %d resident twice", ErrInvalidState, p.Number)
		}
		seen[p.Number] = struct{}{}

		if _, ok := accessed[p.Number]; !ok {
			return fmt.Errorf("%w: resident page %d missing from history", ErrInvalidState, p.Number)
		}
	}

	t.frames = append(t.frames[:0], resident...)
	t.history = append(t.history[:0], history...)
	t.steps = 0
	t.reindex()
	return nil
}

// Reset empties the table.
func (t *Table) Reset() {
	t.frames = t.frames[:0]
	t.history = t.history[:0]
	t.steps = 0
	clear(t.index)
}

// Resident returns a copy of the resident pages in frame order.
func (t *Table) Resident() []page.Page { return slices.Clone(t.frames) }

// History returns a copy of the access history.
func (t *Table) History() []uint32 { return slices.Clone(t.history) }

func (t *Table) Len() int                { return len(t.frames) }
func (t *Table) Size() int               { return t.size }
func (t *Table) Policy() replacer.Policy { return t.policy }

func (t *Table) record(number uint32) {
	t.history = append(t.history, number)
	t.steps++
	if t.resetEvery > 0 && t.steps%t.resetEvery == 0 {
		for i := range t.frames {
			t.frames[i].Referenced = false
		}
	}
}

func (t *Table) reindex() {
	clear(t.index)
	for i, p := range t.frames {
		t.index[p.Number] = i
	}
}

func (t *Table) violation(op string, victim uint32) error {
	t.reindex()
	return &InvariantError{
		Policy:   t.policy.Name(),
		Op:       op,
		Victim:   victim,
		Resident: numbers(t.frames),
	}
}

func numbers(frames []page.Page) []uint32 {
	out := make([]uint32, len(frames))
	for i, p := range frames {
		out[i] = p.Number
	}
	return out
}
