// Package health is the ambient HTTP health-probe surface: /healthz always
// reports process liveness; /readyz reports the outcome of the most recent
// pipeline run. It is an external collaborator from the pipeline's point of
// view — it only reads a shared status flag, never invokes pipeline stages.
package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status is the last-observed outcome of a pipeline run, read by /readyz.
type Status struct {
	Ready     bool      `json:"ready"`
	LastRunAt time.Time `json:"last_run_at"`
	LastError string    `json:"last_error,omitempty"`
}

// Reporter holds the shared status flag the probe handlers read. Reads and
// writes go through atomic.Value so the HTTP goroutines never race with the
// scheduler goroutine updating it after each run.
type Reporter struct {
	status atomic.Value // Status

	runsTotal    *prometheus.CounterVec
	rowsInserted prometheus.Gauge
}

// NewReporter constructs a Reporter with an initial not-yet-ready status
// and registers its metrics against registry.
func NewReporter(registry prometheus.Registerer) *Reporter {
	r := &Reporter{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "masterlist_ingestor_pipeline_runs_total",
			Help: "Total pipeline runs, partitioned by outcome.",
		}, []string{"outcome"}),
		rowsInserted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "masterlist_ingestor_rows_inserted",
			Help: "Row count inserted by the most recent successful run.",
		}),
	}
	r.status.Store(Status{})
	registry.MustRegister(r.runsTotal, r.rowsInserted)
	return r
}

// RecordSuccess marks the most recent run as successful, storing the row
// count it inserted.
func (r *Reporter) RecordSuccess(rows int) {
	r.status.Store(Status{Ready: true, LastRunAt: time.Now()})
	r.runsTotal.WithLabelValues("success").Inc()
	r.rowsInserted.Set(float64(rows))
}

// RecordFailure marks the most recent run as failed, storing err's message
// for /readyz to surface.
func (r *Reporter) RecordFailure(err error) {
	r.status.Store(Status{Ready: false, LastRunAt: time.Now(), LastError: err.Error()})
	r.runsTotal.WithLabelValues("failure").Inc()
}

// Handler builds the mux serving /healthz, /readyz, and /metrics.
func (r *Reporter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, req *http.Request) {
		status, _ := r.status.Load().(Status)
		w.Header().Set("Content-Type", "application/json")
		if !status.Ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
