package request

import "github.com/prometheus/client_golang/prometheus"

const metricPrefix = "intelavb_"

// Metrics tracks spec §4.I's "write-count and error-count per opcode
// class" requirement, grounded the same way the pack's PerfSpect
// metrics server wires a prometheus.*Vec per measurement dimension.
type Metrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
}

// NewMetrics constructs counters and registers them against reg. Pass
// prometheus.NewRegistry() in tests to avoid collisions with any
// process-wide default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "requests_total",
			Help: "Requests handled by the control-plane multiplexer, by opcode class.",
		}, []string{"class", "opcode"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "request_errors_total",
			Help: "Requests that returned a non-Success status, by opcode class and status.",
		}, []string{"class", "opcode", "status"}),
	}
	reg.MustRegister(m.requests, m.errors)
	return m
}

func (m *Metrics) observe(op Opcode, status string, isError bool) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op.class().String(), op.String()).Inc()
	if isError {
		m.errors.WithLabelValues(op.class().String(), op.String(), status).Inc()
	}
}
