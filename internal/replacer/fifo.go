package replacer

import "github.com/tuannm99/pagesim/internal/page"

// FIFO evicts the page that arrived first. Frame order is arrival order, so
// the victim is always frames[0]; hits never move a page.
type FIFO struct{}

func NewFIFO() *FIFO { return &FIFO{} }

func (*FIFO) Name() string { return FIFOName }

func (*FIFO) Victim(frames []page.Page, _ page.Page, _ []uint32) (uint32, bool) {
	if len(frames) == 0 {
		return 0, false
	}
	return frames[0].Number, true
}
