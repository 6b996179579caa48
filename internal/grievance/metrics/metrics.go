package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the grievance module.
type Metrics struct {
	GrievancesCreated   prometheus.Counter
	DuplicatesRejected  prometheus.Counter
	StatusUpdates       *prometheus.CounterVec
	Classifications     *prometheus.CounterVec
	ClassifyDuration    prometheus.Histogram
	AnalyticsDuration   prometheus.Histogram
	AnalyticsRecordScan prometheus.Gauge
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GrievancesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "civicdesk_grievances_created_total",
			Help: "Total number of grievances created",
		}),
		DuplicatesRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "civicdesk_grievance_duplicates_rejected_total",
			Help: "Intake requests rejected because the contact already has a grievance",
		}),
		StatusUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "civicdesk_grievance_status_updates_total",
			Help: "Status updates applied, by target status",
		}, []string{"status"}),
		Classifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "civicdesk_classifier_outcomes_total",
			Help: "Classifier results by outcome and fallback reason",
		}, []string{"outcome", "reason"}),
		ClassifyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "civicdesk_classifier_duration_seconds",
			Help:    "Duration of classifier calls including fallback handling",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		AnalyticsDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "civicdesk_analytics_duration_seconds",
			Help:    "Duration of full-scan analytics computation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		AnalyticsRecordScan: f.NewGauge(prometheus.GaugeOpts{
			Name: "civicdesk_analytics_records_scanned",
			Help: "Number of records scanned by the most recent analytics request",
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.GrievancesCreated.Inc()
}

func (m *Metrics) IncrementDuplicate() {
	m.DuplicatesRejected.Inc()
}

func (m *Metrics) IncrementStatusUpdate(status string) {
	m.StatusUpdates.WithLabelValues(status).Inc()
}

// ObserveClassification records one classifier result.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveClassification(outcome, reason string, start time.Time) {
	m.Classifications.WithLabelValues(outcome, reason).Inc()
	m.ClassifyDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveAnalytics(records int, start time.Time) {
	m.AnalyticsRecordScan.Set(float64(records))
	m.AnalyticsDuration.Observe(time.Since(start).Seconds())
}
