package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the API. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	FacilityLookups *prometheus.CounterVec
	UsersCreated    prometheus.Counter
	FavoriteChanges *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "facilities_http_requests_total",
			Help: "HTTP requests handled, by method, route and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "facilities_http_request_duration_seconds",
			Help:    "HTTP request latency, by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		FacilityLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "facilities_lookups_total",
			Help: "Cross-category facility lookups, by outcome (hit, miss, error)",
		}, []string{"outcome"}),
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "facilities_users_created_total",
			Help: "Accounts created through signup",
		}),
		FavoriteChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "facilities_favorite_changes_total",
			Help: "Favorite facility changes, by action (set, cleared)",
		}, []string{"action"}),
	}
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) ObserveLookup(outcome string) {
	if m == nil {
		return
	}
	m.FacilityLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementUsersCreated() {
	if m == nil {
		return
	}
	m.UsersCreated.Inc()
}

func (m *Metrics) ObserveFavoriteChange(action string) {
	if m == nil {
		return
	}
	m.FavoriteChanges.WithLabelValues(action).Inc()
}
