package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the counters for the order-status poller.
type Registry struct {
	reg           *prometheus.Registry
	Polls         prometheus.Counter
	PollErrors    prometheus.Counter
	Notifications prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	polls := prometheus.NewCounter(prometheus.CounterOpts{Name: "canteen_status_polls_total"})
	pollErrors := prometheus.NewCounter(prometheus.CounterOpts{Name: "canteen_status_poll_errors_total"})
	notifications := prometheus.NewCounter(prometheus.CounterOpts{Name: "canteen_notifications_emitted_total"})

	r.MustRegister(polls, pollErrors, notifications)
	return &Registry{
		reg:           r,
		Polls:         polls,
		PollErrors:    pollErrors,
		Notifications: notifications,
	}
}

// Handler serves the registry in Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
