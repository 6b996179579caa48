package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the media relay.
type Metrics struct {
	MessagesQueued prometheus.Counter
	MediaUploads   *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MessagesQueued: f.NewCounter(prometheus.CounterOpts{
			Name: "civicdesk_relay_messages_queued_total",
			Help: "Outbound messages accepted onto the delivery queue",
		}),
		MediaUploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "civicdesk_relay_media_uploads_total",
			Help: "Media upload attempts by result",
		}, []string{"result"}),
		FetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "civicdesk_relay_media_fetch_duration_seconds",
			Help:    "Time spent downloading media from the messaging provider",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementQueued() {
	if m == nil {
		return
	}
	m.MessagesQueued.Inc()
}

func (m *Metrics) IncrementUpload(result string) {
	if m == nil {
		return
	}
	m.MediaUploads.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveFetch(start time.Time) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(time.Since(start).Seconds())
}
