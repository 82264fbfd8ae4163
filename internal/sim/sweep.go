package sim

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tuannm99/pagesim/internal/page"
	"github.com/tuannm99/pagesim/internal/replacer"
)

var ErrEmptySweep = errors.New("sim: sweep needs at least one policy and one frame size")

// SweepConfig describes a policies x frame sizes grid over one reference string.
type SweepConfig struct {
	Policies      []string
	FrameSizes    []int
	Accesses      []page.Access
	Seed          uint64
	Parallelism   int
	ResetInterval int
	Observer      Observer
}

type Result struct {
	RunID     string `json:"run_id"`
	Policy    string `json:"policy"`
	FrameSize int    `json:"frame_size"`
	Report    Report `json:"report"`
}

// Sweep runs every (policy, frame size) pair. Runs share nothing: each one
// builds its own policy, and NRU sources are seeded from cfg.Seed and the
// run's position so the grid is reproducible. Results come back in grid order.
func Sweep(ctx context.Context, cfg SweepConfig) ([]Result, error) {
	if len(cfg.Policies) == 0 || len(cfg.FrameSizes) == 0 {
		return nil, ErrEmptySweep
	}

	names := make([]string, len(cfg.Policies))
	for i, p := range cfg.Policies {
		name, err := replacer.Canonical(p)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}

	results := make([]Result, len(names)*len(cfg.FrameSizes))

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Parallelism > 0 {
		g.SetLimit(cfg.Parallelism)
	}

	for pi, name := range names {
		for si, size := range cfg.FrameSizes {
			slot := pi*len(cfg.FrameSizes) + si

			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				rng := rand.New(rand.NewPCG(cfg.Seed, uint64(slot)))
				policy, err := replacer.New(name, rng)
				if err != nil {
					return err
				}

				id := uuid.New().String()
				slog.Debug("sim: run start", "run", id, "policy", name, "frames", size)

				opts := []RunOption{WithReferenceReset(cfg.ResetInterval)}
				if cfg.Observer != nil {
					opts = append(opts, WithObserver(cfg.Observer))
				}

				report, err := RunAccesses(policy, cfg.Accesses, size, opts...)
				if err != nil {
					return err
				}

				slog.Debug("sim: run done", "run", id, "report", report.String())
				results[slot] = Result{RunID: id, Policy: name, FrameSize: size, Report: report}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
