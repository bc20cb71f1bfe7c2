package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// Service is the Prometheus-backed Metrics implementation.
type Service struct {
	SyncRuns           prometheus.Counter
	SyncFailures       prometheus.Counter
	SyncDuration       prometheus.Histogram
	ActionsReplayed    prometheus.Counter
	ActionsDropped     prometheus.Counter
	ConflictsDetected  prometheus.Counter
	ConflictsResolved  prometheus.Counter
	PendingActions     prometheus.Gauge
	StartupTimeSeconds prometheus.Gauge
	NotifSent          prometheus.Counter
	NotifFailed        prometheus.Counter
}

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		SyncRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtsync_sync_runs_total",
			Help: "The total number of sync cycles started.",
		}),
		SyncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtsync_sync_failures_total",
			Help: "The total number of sync cycles that ended in an error.",
		}),
		SyncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courtsync_sync_cycle_duration_seconds",
			Help:    "The duration of individual sync cycles.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ActionsReplayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtsync_offline_actions_replayed_total",
			Help: "The total number of offline actions successfully replayed against the remote store.",
		}),
		ActionsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtsync_offline_actions_dropped_total",
			Help: "The total number of offline actions dropped after exceeding the retry ceiling.",
		}),
		ConflictsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtsync_conflicts_detected_total",
			Help: "The total number of version conflicts detected during sync.",
		}),
		ConflictsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtsync_conflicts_resolved_total",
			Help: "The total number of conflicts resolved by an operator.",
		}),
		PendingActions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtsync_pending_actions",
			Help: "The number of offline actions currently awaiting replay.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtsync_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtsync_notifications_sent_total",
			Help: "The total number of operator notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtsync_notifications_failed_total",
			Help: "The total number of operator notifications that failed to send.",
		}),
	}

	reg.MustRegister(
		s.SyncRuns,
		s.SyncFailures,
		s.SyncDuration,
		s.ActionsReplayed,
		s.ActionsDropped,
		s.ConflictsDetected,
		s.ConflictsResolved,
		s.PendingActions,
		s.StartupTimeSeconds,
		s.NotifSent,
		s.NotifFailed,
	)

	return s
}

func (s *Service) IncSyncRuns()     { s.SyncRuns.Inc() }
func (s *Service) IncSyncFailures() { s.SyncFailures.Inc() }

func (s *Service) ObserveSyncDuration(seconds float64) { s.SyncDuration.Observe(seconds) }

func (s *Service) AddActionsReplayed(count int) { s.ActionsReplayed.Add(float64(count)) }
func (s *Service) AddActionsDropped(count int)  { s.ActionsDropped.Add(float64(count)) }

func (s *Service) IncConflictsDetected() { s.ConflictsDetected.Inc() }
func (s *Service) IncConflictsResolved() { s.ConflictsResolved.Inc() }

func (s *Service) SetPendingActions(count int) { s.PendingActions.Set(float64(count)) }

func (s *Service) SetStartupTime(seconds float64) { s.StartupTimeSeconds.Set(seconds) }

func (s *Service) IncNotifSent()   { s.NotifSent.Inc() }
func (s *Service) IncNotifFailed() { s.NotifFailed.Inc() }
