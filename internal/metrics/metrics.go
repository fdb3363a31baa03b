package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels queries that returned a decodable response.
	OutcomeSuccess = "success"
	// OutcomeError labels failed queries (transport, decode or InfluxDB errors).
	OutcomeError = "error"
)

var (
	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "check_bond",
			Name:      "queries_total",
			Help:      "Total number of InfluxDB queries issued, partitioned by query and outcome.",
		},
		[]string{"query", "outcome"},
	)

	queryDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "check_bond",
			Name:      "query_seconds",
			Help:      "InfluxDB query latency in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"query"},
	)

	bondSeverity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "check_bond",
			Name:      "bond_severity",
			Help:      "Severity of each evaluated bond (0 ok, 1 warning, 2 critical).",
		},
		[]string{"bond"},
	)

	runStatus = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "check_bond",
			Name:      "run_status",
			Help:      "Exit code of the last check run.",
		},
	)
)

// Register attaches check-bond collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		queriesTotal,
		queryDurationSeconds,
		bondSeverity,
		runStatus,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveQuery records a query duration and its outcome.
func ObserveQuery(query string, duration time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	queriesTotal.WithLabelValues(query, outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	queryDurationSeconds.WithLabelValues(query).Observe(duration.Seconds())
}

// SetBondSeverity publishes the severity of a bond.
func SetBondSeverity(bond string, severity int) {
	bondSeverity.WithLabelValues(bond).Set(float64(severity))
}

// SetRunStatus publishes the final exit code of the run.
func SetRunStatus(code int) {
	runStatus.Set(float64(code))
}

// WriteTextfile writes every metric gathered by g to path in the node_exporter textfile format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
