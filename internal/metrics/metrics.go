package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentdesk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status class.",
		},
		[]string{"endpoint", "status_class"},
	)

	availabilityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentdesk",
			Name:      "availability_checks_total",
			Help:      "Availability checks by outcome.",
		},
		[]string{"outcome"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentdesk",
			Name:      "bookings_total",
			Help:      "Booking creation attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, availabilityChecks, bookings)
	})
}

// IncHTTP counts one request against an endpoint and a status class
// ("2xx", "4xx", ...).
func IncHTTP(endpoint string, statusCode int) {
	httpRequests.WithLabelValues(endpoint, fmt.Sprintf("%dxx", statusCode/100)).Inc()
}

// IncAvailabilityCheck counts one availability check outcome:
// available, unavailable, unknown_item or cache_hit.
func IncAvailabilityCheck(outcome string) {
	availabilityChecks.WithLabelValues(outcome).Inc()
}

// IncBooking counts one booking attempt outcome: created, rejected or failed.
func IncBooking(outcome string) {
	bookings.WithLabelValues(outcome).Inc()
}
