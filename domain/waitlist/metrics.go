package waitlist

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is nil-safe: a nil *Metrics records nothing.
type Metrics struct {
	created     prometheus.Counter
	deleted     prometheus.Counter
	storeErrors *prometheus.CounterVec
}

// NewMetrics registers the waitlist counters on reg. A nil reg disables them.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waitlist_entries_created_total",
			Help: "Total number of waitlist entries created.",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waitlist_entries_deleted_total",
			Help: "Total number of waitlist entries deleted.",
		}),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_store_errors_total",
				Help: "Total number of failed waitlist store operations.",
			},
			[]string{"operation"},
		),
	}

	m.created = register(reg, m.created).(prometheus.Counter)
	m.deleted = register(reg, m.deleted).(prometheus.Counter)
	m.storeErrors = register(reg, m.storeErrors).(*prometheus.CounterVec)
	return m
}

// register reuses an already registered collector so building the service twice does not panic.
func register(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

func (m *Metrics) entryCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}

func (m *Metrics) entriesDeleted(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.deleted.Add(float64(n))
}

func (m *Metrics) storeError(operation string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(operation).Inc()
}
