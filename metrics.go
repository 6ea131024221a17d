package eventchannel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	sinkListener   = "listener"
	sinkSubscriber = "subscriber"
)

// Metrics holds the Prometheus collectors shared by any number of channels.
// Series are labelled by channel identity. A nil *Metrics records nothing.
type Metrics struct {
	raises     *prometheus.CounterVec
	suppressed *prometheus.CounterVec
	failures   *prometheus.CounterVec
	listeners  *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered. Registering twice with the same
// registerer panics, as promauto does.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		raises: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventchannel",
			Name:      "raises_total",
			Help:      "Raise calls, including those with no listeners.",
		}, []string{"channel"}),
		suppressed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventchannel",
			Name:      "suppressed_raises_total",
			Help:      "Reentrant raises dropped by the recursion guard.",
		}, []string{"channel"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventchannel",
			Name:      "delivery_failures_total",
			Help:      "Recovered failures during delivery, by sink.",
		}, []string{"channel", "sink"}),
		listeners: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "eventchannel",
			Name:      "listeners",
			Help:      "Currently registered listeners.",
		}, []string{"channel"}),
	}
}

func (m *Metrics) raised(channel string) {
	if m == nil {
		return
	}
	m.raises.WithLabelValues(channel).Inc()
}

func (m *Metrics) suppress(channel string) {
	if m == nil {
		return
	}
	m.suppressed.WithLabelValues(channel).Inc()
}

func (m *Metrics) failed(channel, sink string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(channel, sink).Inc()
}

func (m *Metrics) setListeners(channel string, n int) {
	if m == nil {
		return
	}
	m.listeners.WithLabelValues(channel).Set(float64(n))
}
