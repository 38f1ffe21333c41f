package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the matching metrics registered on one registry
type Recorder struct {
	registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	RunsFailed         *prometheus.CounterVec
	GroupsFormed       *prometheus.CounterVec
	WaitlistSize       *prometheus.GaugeVec
	RunDuration        *prometheus.HistogramVec
	CompatibilityScore *prometheus.HistogramVec
	EmailsSent         prometheus.Counter
}

// NewRecorder registers the matching metrics on a fresh registry
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,

		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neighbourly_match_runs_total",
				Help: "Total number of completed match runs",
			},
			[]string{"source", "status"},
		),

		RunsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neighbourly_match_runs_failed_total",
				Help: "Total number of match runs that failed",
			},
			[]string{"source", "stage"},
		),

		GroupsFormed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neighbourly_groups_formed_total",
				Help: "Total number of groups formed",
			},
			[]string{"source"},
		),

		WaitlistSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "neighbourly_waitlist_size",
				Help: "Number of candidates left on the waitlist by the latest run",
			},
			[]string{"community"},
		),

		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "neighbourly_match_run_duration_seconds",
				Help:    "Duration of the group builder in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"source"},
		),

		CompatibilityScore: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "neighbourly_group_compatibility_score",
				Help:    "Compatibility score of formed groups",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
			},
			[]string{"source"},
		),

		EmailsSent: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "neighbourly_introduction_emails_sent_total",
				Help: "Total number of group introduction emails sent",
			},
		),
	}
}

// RunOutcome describes one completed run
type RunOutcome struct {
	CommunityID string
	Source      string
	Status      string
	Duration    time.Duration
	Scores      []float64
	Waitlist    int
}

// ObserveRun records a completed run
func (r *Recorder) ObserveRun(outcome RunOutcome) {
	r.RunsTotal.WithLabelValues(outcome.Source, outcome.Status).Inc()
	r.GroupsFormed.WithLabelValues(outcome.Source).Add(float64(len(outcome.Scores)))
	r.WaitlistSize.WithLabelValues(outcome.CommunityID).Set(float64(outcome.Waitlist))
	r.RunDuration.WithLabelValues(outcome.Source).Observe(outcome.Duration.Seconds())
	for _, score := range outcome.Scores {
		r.CompatibilityScore.WithLabelValues(outcome.Source).Observe(score)
	}
}

// RunFailed records a run that stopped at the given stage
func (r *Recorder) RunFailed(source, stage string) {
	r.RunsFailed.WithLabelValues(source, stage).Inc()
}

// Gatherer exposes the registry for exposition
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the current metrics in the node exporter textfile format
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
