// Package metrics exposes Prometheus instruments for the translation pipeline.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Outcome labels for Translations.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeFixed   = "fixed"
	OutcomeIgnored = "ignored"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	linesClassified *prometheus.CounterVec
	translations    *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	openTabs        prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		linesClassified: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "td2chat_lines_classified_total",
				Help: "Chat lines classified by sender category",
			},
			[]string{"category"},
		),
		translations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "td2chat_translations_total",
				Help: "Translation results by backend and outcome",
			},
			[]string{"backend", "outcome"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "td2chat_translation_seconds",
				Help:    "Backend translation latency",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
			[]string{"backend"},
		),
		openTabs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "td2chat_open_tabs",
			Help: "Log files currently tailed",
		}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) LineClassified(category string) {
	if m == nil {
		return
	}
	m.linesClassified.WithLabelValues(category).Inc()
}

func (m *Metrics) Translation(backend, outcome string) {
	if m == nil {
		return
	}
	m.translations.WithLabelValues(backend, outcome).Inc()
}

func (m *Metrics) ObserveLatency(backend string, d time.Duration) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(backend).Observe(d.Seconds())
}

func (m *Metrics) SetOpenTabs(n int) {
	if m == nil {
		return
	}
	m.openTabs.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled. It returns once the
// listener is bound.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics server listening", zap.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	return nil
}
