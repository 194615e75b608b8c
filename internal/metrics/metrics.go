package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ricirt/report-robot/internal/domain"
	"github.com/ricirt/report-robot/internal/queue"
)

// Metrics groups all Prometheus instruments used across the robot.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	MessagesSent   prometheus.Counter
	MessagesFailed prometheus.Counter
	SendLatency    prometheus.Histogram
	Jobs           *prometheus.CounterVec
	TabOutcomes    *prometheus.CounterVec
	TrackingEvents *prometheus.CounterVec
	QueueRemaining prometheus.Gauge
}

// New registers all instruments with the given registerer. Callers pass a
// private registry so tests never touch prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "robot_messages_sent_total",
			Help: "Telegram messages accepted by the Bot API.",
		}),
		MessagesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "robot_messages_failed_total",
			Help: "Telegram messages that failed after every attempt.",
		}),
		SendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "robot_send_seconds",
			Help:    "Time from first attempt to an accepted message, retries included.",
			Buckets: prometheus.DefBuckets,
		}),
		Jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "robot_queue_jobs_total",
			Help: "Queue jobs that reached a terminal status.",
		}, []string{"status"}),
		TabOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "robot_distribution_tabs_total",
			Help: "Report tabs processed by the distributor, by outcome.",
		}, []string{"outcome"}),
		TrackingEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "robot_tracking_events_total",
			Help: "Requests handled by the click tracking endpoint.",
		}, []string{"event"}),
		QueueRemaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "robot_queue_remaining",
			Help: "Jobs still pending in the persisted queue.",
		}),
	}

	reg.MustRegister(
		m.MessagesSent,
		m.MessagesFailed,
		m.SendLatency,
		m.Jobs,
		m.TabOutcomes,
		m.TrackingEvents,
		m.QueueRemaining,
	)

	return m
}

// ProviderHooks returns the callbacks expected by TelegramProvider.SetHooks.
func (m *Metrics) ProviderHooks() (onSent func(time.Duration), onFailed func()) {
	onSent = func(latency time.Duration) {
		m.MessagesSent.Inc()
		m.SendLatency.Observe(latency.Seconds())
	}
	onFailed = func() {
		m.MessagesFailed.Inc()
	}
	return
}

// DistributionHook returns the per-tab outcome callback for Distributor.SetHooks.
func (m *Metrics) DistributionHook() func(outcome string) {
	return func(outcome string) {
		m.TabOutcomes.WithLabelValues(outcome).Inc()
	}
}

// QueueHooks returns the progress callbacks for Runner.SetHooks.
func (m *Metrics) QueueHooks() queue.Hooks {
	return queue.Hooks{
		OnJob: func(s domain.JobStatus) {
			m.Jobs.WithLabelValues(string(s)).Inc()
		},
		OnDepth: func(remaining int) {
			m.QueueRemaining.Set(float64(remaining))
		},
	}
}

// TrackingHook returns the callback used by the tracking handler.
func (m *Metrics) TrackingHook() func(event string) {
	return func(event string) {
		m.TrackingEvents.WithLabelValues(event).Inc()
	}
}
