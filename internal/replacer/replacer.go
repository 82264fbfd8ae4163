package replacer

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/tuannm99/pagesim/internal/page"
)

var ErrUnknownPolicy = errors.New("replacer: unknown policy")

// Policy picks the page to evict when every frame is occupied.
//
// frames is the resident set in frame order, incoming is the fresh page about
// to be loaded and history holds every page number accessed before the
// current one, oldest first. Victim returns the victim's page number, or
// ok=false when frames is empty.
//
// A policy may reorder frames and clear flags in place (Second-Chance does),
// but must not change their length or membership.
type Policy interface {
	Name() string
	Victim(frames []page.Page, incoming page.Page, history []uint32) (number uint32, ok bool)
}

const (
	FIFOName         = "fifo"
	LRUName          = "lru"
	SecondChanceName = "second-chance"
	NRUName          = "nru"
)

var aliases = map[string]string{
	"fifo":          FIFOName,
	"lru":           LRUName,
	"second-chance": SecondChanceName,
	"secondchance":  SecondChanceName,
	"clock":         SecondChanceName,
	"sc":            SecondChanceName,
	"nru":           NRUName,
}

// New creates a policy by name. rng is only used by NRU; nil gives NRU a
// fixed-seed source.
func New(name string, rng *rand.Rand) (Policy, error) {
	canonical, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}

	switch canonical {
	case FIFOName:
		return NewFIFO(), nil
	case LRUName:
		return NewLRU(), nil
	case SecondChanceName:
		return NewSecondChance(), nil
	default:
		return NewNRU(rng), nil
	}
}

// Canonical resolves an alias to its policy name.
func Canonical(name string) (string, error) {
	canonical, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	return canonical, nil
}

// Names lists the canonical policy names.
func Names() []string {
	seen := make(map[string]struct{}, len(aliases))
	out := make([]string, 0, 4)
	for _, v := range aliases {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
