// Package metrics exports simulation outcomes as Prometheus counters.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tuannm99/pagesim/internal/frames"
)

const namespace = "pagesim"

// Recorder counts accesses per policy and frame size. It implements
// sim.Observer and is safe for concurrent use.
type Recorder struct {
	registry  *prometheus.Registry
	accesses  *prometheus.CounterVec
	evictions *prometheus.CounterVec
}

// NewRecorder registers the counters on a private registry.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		accesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accesses_total",
			Help:      "Page accesses by replacement policy, frame size and outcome (hit, fault).",
		}, []string{"policy", "frames", "outcome"}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evictions_total",
			Help:      "Pages evicted by replacement policy and frame size.",
		}, []string{"policy", "frames"}),
	}

	for _, c := range []prometheus.Collector{r.accesses, r.evictions} {
		if err := r.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) Observe(policy string, frameSize int, step frames.Step) {
	size := strconv.Itoa(frameSize)
	switch step.Outcome {
	case frames.Hit:
		r.accesses.WithLabelValues(policy, size, "hit").Inc()
	case frames.Fault:
		r.accesses.WithLabelValues(policy, size, "fault").Inc()
	case frames.FaultEvicted:
		r.accesses.WithLabelValues(policy, size, "fault").Inc()
		r.evictions.WithLabelValues(policy, size).Inc()
	}
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
