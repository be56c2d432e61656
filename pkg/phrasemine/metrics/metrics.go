// Package metrics exposes extraction counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects extraction metrics on its own registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	messages   *prometheus.CounterVec
	candidates prometheus.Counter
	decisions  *prometheus.CounterVec
	dropped    prometheus.Counter
	latency    prometheus.Histogram
}

// New creates a recorder with a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		messages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phrasemine",
			Name:      "messages_total",
			Help:      "Messages processed, by outcome.",
		}, []string{"outcome"}),
		candidates: f.NewCounter(prometheus.CounterOpts{
			Namespace: "phrasemine",
			Name:      "candidates_scored_total",
			Help:      "Candidate phrases scored.",
		}),
		decisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phrasemine",
			Name:      "decisions_total",
			Help:      "Decider verdicts, by result.",
		}, []string{"result"}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "phrasemine",
			Name:      "validator_dropped_total",
			Help:      "Accepted phrases removed by reverse validation.",
		}),
		latency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "phrasemine",
			Name:      "message_duration_seconds",
			Help:      "Time to process one message.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Message records a processed message and its duration.
func (r *Recorder) Message(failed bool, d time.Duration) {
	if r == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "failed"
	}
	r.messages.WithLabelValues(outcome).Inc()
	r.latency.Observe(d.Seconds())
}

// Decision records one decider verdict.
func (r *Recorder) Decision(accepted bool) {
	if r == nil {
		return
	}
	r.candidates.Inc()
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	r.decisions.WithLabelValues(result).Inc()
}

// Dropped records phrases removed by the validator.
func (r *Recorder) Dropped(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.dropped.Add(float64(n))
}
