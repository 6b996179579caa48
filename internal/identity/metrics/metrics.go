package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for staff identity.
type Metrics struct {
	Signups      prometheus.Counter
	SigninsTotal *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Signups: f.NewCounter(prometheus.CounterOpts{
			Name: "civicdesk_identity_signups_total",
			Help: "Total number of staff accounts created",
		}),
		SigninsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "civicdesk_identity_signins_total",
			Help: "Sign-in attempts by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementSignups() {
	if m == nil {
		return
	}
	m.Signups.Inc()
}

func (m *Metrics) IncrementSignin(result string) {
	if m == nil {
		return
	}
	m.SigninsTotal.WithLabelValues(result).Inc()
}
