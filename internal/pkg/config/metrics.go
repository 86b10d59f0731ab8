package config

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ConfigMetrics exposes <component>_config_* series describing the last load.
type ConfigMetrics struct {
	LoadTimestamp    prometheus.Gauge
	ValidationErrors *prometheus.CounterVec
	Fallbacks        *prometheus.CounterVec
	FallbackActive   prometheus.Gauge
}

// NewConfigMetrics registers with the default registry.
func NewConfigMetrics(component string) *ConfigMetrics {
	return NewConfigMetricsWith(prometheus.DefaultRegisterer, component)
}

func NewConfigMetricsWith(reg prometheus.Registerer, component string) *ConfigMetrics {
	m := &ConfigMetrics{
		LoadTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: component + "_config_load_timestamp",
			Help: "Unix time of the last configuration load",
		}),
		ValidationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: component + "_config_validation_errors_total",
			Help: "Configuration values rejected by validation",
		}, []string{"field"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: component + "_config_fallbacks_total",
			Help: "Configuration values replaced by their default",
		}, []string{"field", "type"}),
		FallbackActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: component + "_config_fallback_active",
			Help: "1 while any configuration value is running on its default",
		}),
	}
	reg.MustRegister(m.LoadTimestamp, m.ValidationErrors, m.Fallbacks, m.FallbackActive)
	return m
}

func (m *ConfigMetrics) RecordLoadTimestamp() { m.LoadTimestamp.SetToCurrentTime() }

func (m *ConfigMetrics) RecordValidationError(field string) {
	m.ValidationErrors.WithLabelValues(field).Inc()
}

func (m *ConfigMetrics) RecordFallback(field, kind string) {
	m.Fallbacks.WithLabelValues(field, kind).Inc()
}

func (m *ConfigMetrics) SetFallbackActive(active bool) {
	if active {
		m.FallbackActive.Set(1)
		return
	}
	m.FallbackActive.Set(0)
}
