package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ricirt/report-robot/internal/domain"
)

// gathered returns name -> summed value across label sets. Histograms
// report their sample count.
func gathered(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				out[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[mf.GetName()] += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[mf.GetName()] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

func TestHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	onSent, onFailed := m.ProviderHooks()
	onSent(300 * time.Millisecond)
	onSent(2 * time.Second)
	onFailed()

	outcome := m.DistributionHook()
	outcome("succeeded")
	outcome("skipped")
	outcome("skipped")

	hooks := m.QueueHooks()
	hooks.OnJob(domain.JobDone)
	hooks.OnJob(domain.JobError)
	hooks.OnDepth(4)
	hooks.OnDepth(3)

	m.TrackingHook()("click")

	got := gathered(t, reg)
	want := map[string]float64{
		"robot_messages_sent_total":     2,
		"robot_messages_failed_total":   1,
		"robot_send_seconds":            2,
		"robot_distribution_tabs_total": 3,
		"robot_queue_jobs_total":        2,
		"robot_queue_remaining":         3,
		"robot_tracking_events_total":   1,
	}
	for name, v := range want {
		if got[name] != v {
			t.Errorf("%s: expected %v, got %v", name, v, got[name])
		}
	}
}

func TestNew_PanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Fatal("expected MustRegister to panic on duplicate instruments")
		}
	}()
	New(reg)
}
