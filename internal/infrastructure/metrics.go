package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "impulseradar"

// RunMetrics collects the counters of one pipeline run. The registry is
// private so repeated runs in one process never collide.
type RunMetrics struct {
	registry *prometheus.Registry

	RowsLoaded    prometheus.Gauge
	RowsDropped   *prometheus.GaugeVec
	RowsScored    prometheus.Gauge
	Cities        prometheus.Gauge
	ModelFit      *prometheus.GaugeVec
	StageDuration *prometheus.GaugeVec
	LastSuccess   prometheus.Gauge
}

// NewRunMetrics creates and registers the run metrics
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		RowsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "rows_loaded",
			Help:      "Rows read from the input workbook.",
		}),
		RowsDropped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "rows_dropped",
			Help:      "Rows removed during cleaning, by reason.",
		}, []string{"reason"}),
		RowsScored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "rows_scored",
			Help:      "Rows written to the row-level sheet.",
		}),
		Cities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "cities",
			Help:      "Distinct cities in the summary sheet.",
		}),
		ModelFit: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "model_fit",
			Help:      "In-sample fit quality of the classifier, by measure.",
		}, []string{"measure"}),
		StageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of each pipeline stage.",
		}, []string{"stage"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}

	m.registry.MustRegister(
		m.RowsLoaded,
		m.RowsDropped,
		m.RowsScored,
		m.Cities,
		m.ModelFit,
		m.StageDuration,
		m.LastSuccess,
	)
	return m
}

// ObserveStage records how long a stage took
func (m *RunMetrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// MarkSuccess stamps the run as successful
func (m *RunMetrics) MarkSuccess(now time.Time) {
	m.LastSuccess.Set(float64(now.Unix()))
}

// ObserveFit records the in-sample log loss, accuracy and ROC AUC
func (m *RunMetrics) ObserveFit(logLoss, accuracy, auc float64) {
	m.ModelFit.WithLabelValues("log_loss").Set(logLoss)
	m.ModelFit.WithLabelValues("accuracy").Set(accuracy)
	m.ModelFit.WithLabelValues("auc").Set(auc)
}

// WriteTextfile writes the metrics in the node-exporter textfile format
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
