package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module: mutation counts,
// list durations and postal lookup outcomes.
type Metrics struct {
	ClientsCreated prometheus.Counter
	ClientsUpdated prometheus.Counter
	ClientsDeleted prometheus.Counter
	ListDuration   prometheus.Histogram
	LookupDuration prometheus.Histogram
	LookupMisses   prometheus.Counter
}

// New creates a Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		ClientsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registry_clients_created_total",
			Help: "Total number of client records created",
		}),
		ClientsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registry_clients_updated_total",
			Help: "Total number of client records updated",
		}),
		ClientsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registry_clients_deleted_total",
			Help: "Total number of client records deleted",
		}),
		ListDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "registry_list_duration_seconds",
			Help:    "Duration of directory list operations including search",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		LookupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "registry_cep_lookup_duration_seconds",
			Help:    "Duration of postal code lookups against the external service",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		LookupMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registry_cep_lookup_misses_total",
			Help: "Postal code lookups that returned no address",
		}),
	}
}

// ObserveList records the duration of a directory list operation.
// Call with time.Now() taken at the start of the operation.
func (m *Metrics) ObserveList(start time.Time) {
	m.ListDuration.Observe(time.Since(start).Seconds())
}

// ObserveLookup records the duration of a postal lookup.
func (m *Metrics) ObserveLookup(start time.Time) {
	m.LookupDuration.Observe(time.Since(start).Seconds())
}
