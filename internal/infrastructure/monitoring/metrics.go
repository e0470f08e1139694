package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	CustomersRegisteredTotal prometheus.Counter
	CustomersDeletedTotal    prometheus.Counter
	LoginAttemptsTotal       *prometheus.CounterVec
	ImageNormalizeDuration   prometheus.Histogram
	ImageNormalizeFailures   prometheus.Counter
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticketing_backend_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		CustomersRegisteredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ticketing_backend_customers_registered_total",
				Help: "Total number of customers successfully registered.",
			},
		),
		CustomersDeletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ticketing_backend_customers_deleted_total",
				Help: "Total number of customers deleted.",
			},
		),
		LoginAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketing_backend_login_attempts_total",
				Help: "Total number of login attempts by outcome.",
			},
			[]string{"outcome"},
		),
		ImageNormalizeDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ticketing_backend_image_normalize_duration_seconds",
				Help:    "Histogram of student ID image normalization latencies.",
				Buckets: prometheus.DefBuckets,
			},
		),
		ImageNormalizeFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ticketing_backend_image_normalize_failures_total",
				Help: "Total number of uploads rejected as undecodable.",
			},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordCustomerRegistered() {
	Business.CustomersRegisteredTotal.Inc()
}

func RecordCustomerDeleted() {
	Business.CustomersDeletedTotal.Inc()
}

func RecordLoginAttempt(outcome string) {
	Business.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

func RecordImageNormalize(duration time.Duration, ok bool) {
	Business.ImageNormalizeDuration.Observe(duration.Seconds())
	if !ok {
		Business.ImageNormalizeFailures.Inc()
	}
}
