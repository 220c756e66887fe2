package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerquest_events_total",
			Help: "Progression events by type",
		},
		[]string{"type"},
	)

	xpAwardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "careerquest_xp_awarded_total",
			Help: "Total XP awarded across all completions",
		},
	)
)

func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(eventsTotal, xpAwardedTotal)
}

// PromRecorder mirrors every event into Prometheus counters before passing
// it to the wrapped recorder.
type PromRecorder struct {
	next Recorder
}

func NewPromRecorder(next Recorder) *PromRecorder {
	return &PromRecorder{next: next}
}

func (p *PromRecorder) Record(t EventType, meta EventMetadata) {
	eventsTotal.WithLabelValues(string(t)).Inc()
	if t == EventTaskCompleted {
		if xp, ok := metaInt(meta, "xp"); ok && xp > 0 {
			xpAwardedTotal.Add(float64(xp))
		}
	}
	if p.next != nil {
		p.next.Record(t, meta)
	}
}
