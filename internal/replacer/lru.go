package replacer

import "github.com/tuannm99/pagesim/internal/page"

// LRU evicts the resident page whose latest access is the oldest. Recency is
// rebuilt from the access history, no per-page timestamps are kept.
type LRU struct{}

func NewLRU() *LRU { return &LRU{} }

func (*LRU) Name() string { return LRUName }

// Victim walks history newest to oldest collecting distinct resident numbers.
// The last one collected once every resident page has been seen is the LRU page.
// ok is false if some resident page never appears in history.
func (*LRU) Victim(frames []page.Page, _ page.Page, history []uint32) (uint32, bool) {
	if len(frames) == 0 {
		return 0, false
	}

	resident := make(map[uint32]bool, len(frames))
	for _, p := range frames {
		resident[p.Number] = false
	}

	seen := 0
	for i := len(history) - 1; i >= 0; i-- {
		n := history[i]
		done, ok := resident[n]
		if !ok || done {
			continue
		}
		resident[n] = true
		seen++
		if seen == len(resident) {
			return n, true
		}
	}

	return 0, false
}
