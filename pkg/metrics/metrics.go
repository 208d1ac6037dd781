package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Front end metrics
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imserious_requests_total",
			Help: "Total number of HTTP notification requests by status code",
		},
		[]string{"status"},
	)

	MessagesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imserious_messages_received_total",
			Help: "Total number of well-formed messages received by event kind",
		},
		[]string{"event"},
	)

	DispatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "imserious_dispatches_total",
			Help: "Total number of slot writes to matching handlers",
		},
	)

	// Handler metrics
	HandlersActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "imserious_handlers_active",
			Help: "Number of running handler schedulers",
		},
	)

	SpawnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imserious_spawns_total",
			Help: "Total number of child spawns by outcome (ok, nonzero, failed)",
		},
		[]string{"outcome"},
	)

	SpawnDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "imserious_spawn_duration_seconds",
			Help:    "Child process wall time in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "imserious_rate_limited_total",
			Help: "Total number of event-driven spawns deferred by the rate limiter",
		},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(MessagesReceived)
	prometheus.MustRegister(DispatchesTotal)
	prometheus.MustRegister(HandlersActive)
	prometheus.MustRegister(SpawnsTotal)
	prometheus.MustRegister(SpawnDuration)
	prometheus.MustRegister(RateLimited)
}

// Handler returns the HTTP handler for the /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures elapsed time for histogram observations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer starting now
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed time in the given histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(t.Duration().Seconds())
}
