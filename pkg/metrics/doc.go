/*
Package metrics provides Prometheus instrumentation for IMSErious.

Metrics are package-level collectors registered at init time and exposed
over HTTP via Handler(). The daemon serves them on a dedicated listener
configured with metrics_listen; when unset, nothing is exported.

# Metrics

Front end:
  - imserious_requests_total{status}: notification requests by HTTP status
  - imserious_messages_received_total{event}: decoded messages by kind
  - imserious_dispatches_total: slot writes to matching handlers

Handlers:
  - imserious_handlers_active: running scheduler tasks
  - imserious_spawns_total{outcome}: child spawns (ok, nonzero, failed)
  - imserious_spawn_duration_seconds: child process wall time
  - imserious_rate_limited_total: spawns deferred by the token bucket

# Usage

	metrics.MessagesReceived.WithLabelValues(msg.Event.String()).Inc()

	timer := metrics.NewTimer()
	// ... run child ...
	timer.ObserveDuration(metrics.SpawnDuration)

	http.Handle("/metrics", metrics.Handler())
*/
package metrics
