package sim

import (
	"fmt"

	"github.com/tuannm99/pagesim/internal/frames"
	"github.com/tuannm99/pagesim/internal/page"
	"github.com/tuannm99/pagesim/internal/replacer"
)

// Observer sees every step of a run. An observer passed to Sweep is shared by
// concurrent runs and must be safe for concurrent use.
type Observer interface {
	Observe(policy string, frameSize int, step frames.Step)
}

type runOptions struct {
	tableOpts []frames.Option
	observer  Observer
}

type RunOption func(*runOptions)

// WithReferenceReset clears referenced bits every n accesses.
func WithReferenceReset(n int) RunOption {
	return func(o *runOptions) {
		o.tableOpts = append(o.tableOpts, frames.WithReferenceReset(n))
	}
}

func WithObserver(obs Observer) RunOption {
	return func(o *runOptions) { o.observer = obs }
}

// Run folds a reference string of reads through a fresh frame table.
func Run(policy replacer.Policy, refs []uint32, frameSize int, opts ...RunOption) (Report, error) {
	return RunAccesses(policy, page.Reads(refs), frameSize, opts...)
}

// RunAccesses is Run with per-access write flags. Any error aborts the run and
// no partial report is returned.
func RunAccesses(policy replacer.Policy, accesses []page.Access, frameSize int, opts ...RunOption) (Report, error) {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}

	tbl, err := frames.New(frameSize, policy, o.tableOpts...)
	if err != nil {
		return Report{}, err
	}

	var report Report
	for i, a := range accesses {
		step, err := tbl.Apply(a.Number, a.Write)
		if err != nil {
			return Report{}, fmt.Errorf("sim: access %d (page %d): %w", i, a.Number, err)
		}
		if o.observer != nil {
			o.observer.Observe(policy.Name(), frameSize, step)
		}
		report = report.With(step.Outcome)
	}

	return report, nil
}
