package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every blaze collector. A private registry keeps the
// Go runtime collectors out of the notification watcher's /metrics output.
var Registry = prometheus.NewRegistry()

var (
	// FeedBuilds counts feed builds by result ("ok" or "error").
	FeedBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blaze",
			Subsystem: "feed",
			Name:      "builds_total",
			Help:      "Feed builds by result.",
		},
		[]string{"result"},
	)

	FeedBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "blaze",
			Subsystem: "feed",
			Name:      "build_duration_seconds",
			Help:      "Wall time of a feed build including all backend queries.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// InteractionEffects counts settled reaction writes.
	InteractionEffects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blaze",
			Subsystem: "interaction",
			Name:      "effects_total",
			Help:      "Reaction edge writes by kind, op and result.",
		},
		[]string{"kind", "op", "result"},
	)

	BusPublishes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blaze",
			Subsystem: "bus",
			Name:      "publishes_total",
			Help:      "Counter update events published.",
		},
	)

	OverlayEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "blaze",
			Subsystem: "overlay",
			Name:      "entries",
			Help:      "Posts currently held in the counter overlay.",
		},
	)

	NotificationsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blaze",
			Subsystem: "realtime",
			Name:      "notifications_total",
			Help:      "Realtime notification events by type.",
		},
		[]string{"type"},
	)
)

func init() {
	Registry.MustRegister(
		FeedBuilds,
		FeedBuildDuration,
		InteractionEffects,
		BusPublishes,
		OverlayEntries,
		NotificationsReceived,
	)
}

// Result maps an error to the "result" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
