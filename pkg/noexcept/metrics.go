package noexcept

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "noexcept"

type metrics struct {
	raised  *prometheus.CounterVec
	stashed *prometheus.CounterVec
	merged  *prometheus.CounterVec
	usage   prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	return &metrics{
		raised: registerCounterVec(reg, prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "raised_total",
			Help:      "Errors raised to the caller, by primary code.",
		}),
		stashed: registerCounterVec(reg, prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stashed_total",
			Help:      "Errors stored as pending instead of raised, by primary code.",
		}),
		merged: registerCounterVec(reg, prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "merged_total",
			Help:      "Codes merged into an already pending error.",
		}),
		usage: registerCounter(reg, prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "usage_errors_total",
			Help:      "Calls rejected for unsupported arguments.",
		}),
	}
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, []string{"code"})
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return c
}

func registerCounter(reg prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
		}
	}
	return c
}

func (m *metrics) observe(outcome Outcome, code Code) {
	if m == nil {
		return
	}
	label := strconv.Itoa(int(code))
	switch outcome {
	case OutcomeRaised:
		m.raised.WithLabelValues(label).Inc()
	case OutcomeStashed:
		m.stashed.WithLabelValues(label).Inc()
	case OutcomeMerged:
		m.merged.WithLabelValues(label).Inc()
	}
}

func (m *metrics) usageError() {
	if m == nil {
		return
	}
	m.usage.Inc()
}
