package replacer

import "github.com/tuannm99/pagesim/internal/page"

// SecondChance is the CLOCK variant over the ordered frame ring: front is the
// hand. A referenced page at the front gets its bit cleared and moves to the
// back; the first unreferenced page found is the victim.
type SecondChance struct{}

func NewSecondChance() *SecondChance { return &SecondChance{} }

func (*SecondChance) Name() string { return SecondChanceName }

// Victim rotates frames in place. On return the victim sits at frames[0].
func (*SecondChance) Victim(frames []page.Page, _ page.Page, _ []uint32) (uint32, bool) {
	n := len(frames)
	if n == 0 {
		return 0, false
	}

	// After one full rotation every bit is clear, so n+1 looks always suffice.
	for range n + 1 {
		front := frames[0]
		if !front.Referenced {
			return front.Number, true
		}

		// Second chance.
		front.Referenced = false
		copy(frames, frames[1:])
		frames[n-1] = front
	}

	return 0, false
}
