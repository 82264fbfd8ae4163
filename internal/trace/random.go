package trace

import (
	"math/rand/v2"

	"github.com/tuannm99/pagesim/internal/page"
)

// Random draws n accesses over page numbers [0, pages). writeRatio is the
// probability that an access is a write.
func Random(rng *rand.Rand, n, pages int, writeRatio float64) []page.Access {
	if n <= 0 || pages <= 0 {
		return nil
	}
	out := make([]page.Access, n)
	for i := range out {
		out[i] = page.Access{
			Number: uint32(rng.IntN(pages)),
			Write:  writeRatio > 0 && rng.Float64() < writeRatio,
		}
	}
	return out
}
