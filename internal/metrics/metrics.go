// Package metrics expõe contadores Prometheus do limiter de comentários.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type LimiterMetrics struct {
	reg         *prometheus.Registry
	handler     http.Handler
	invocations *prometheus.CounterVec
	closedTotal prometheus.Counter
}

// New cria um registry próprio com os coletores padrão e os contadores do limiter.
func New() *LimiterMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &LimiterMetrics{
		reg: reg,
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "comment_invocations_total",
			Help: "Total comment invocations by result",
		}, []string{"result"}),
		closedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "comment_limiter_closed_total",
			Help: "Total number of authors whose limiter reached the closed state",
		}),
	}
	reg.MustRegister(m.invocations, m.closedTotal)

	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

func (m *LimiterMetrics) ObserveInvocation(result string) {
	m.invocations.WithLabelValues(result).Inc()
}

func (m *LimiterMetrics) ObserveClosed() {
	m.closedTotal.Inc()
}

func (m *LimiterMetrics) Handler() http.Handler {
	return m.handler
}

func (m *LimiterMetrics) Registry() *prometheus.Registry {
	return m.reg
}
