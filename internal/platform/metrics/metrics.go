// Package metrics exposes Prometheus instrumentation for the analysis
// pipeline. Ports are instrumented with decorators so the use case layer
// stays free of framework code.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/0xcro3dile/movexplainer-go/internal/domain/entities"
	"github.com/0xcro3dile/movexplainer-go/internal/domain/ports"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	AnalysesTotal       *prometheus.CounterVec
	AnalysisDuration    prometheus.Histogram
	EngineSearches      *prometheus.CounterVec
	EngineSearchSeconds prometheus.Histogram
	ExplanationCalls    *prometheus.CounterVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates and registers all metrics on the given registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "movexplainer_analyses_total",
			Help: "Completed analysis requests by outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "movexplainer_analysis_duration_seconds",
			Help:    "Wall time of one full analysis request.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		EngineSearches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "movexplainer_engine_searches_total",
			Help: "Engine searches by outcome.",
		}, []string{"outcome"}),
		EngineSearchSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "movexplainer_engine_search_duration_seconds",
			Help:    "Duration of individual engine searches.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		ExplanationCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "movexplainer_explanation_calls_total",
			Help: "Explanation-service calls by outcome.",
		}, []string{"outcome"}),
	}
}

// ObserveAnalysis records one finished analysis request.
func (m *Metrics) ObserveAnalysis(success bool, d time.Duration) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(outcome(success)).Inc()
	m.AnalysisDuration.Observe(d.Seconds())
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// InstrumentEngine wraps an engine service with search counters and timings.
func InstrumentEngine(next ports.EngineService, m *Metrics) ports.EngineService {
	if m == nil {
		return next
	}
	return &instrumentedEngine{next: next, m: m}
}

type instrumentedEngine struct {
	next ports.EngineService
	m    *Metrics
}

func (e *instrumentedEngine) EvaluateMove(ctx context.Context, pos entities.Position, move entities.Move, depth int) (entities.Evaluation, error) {
	start := time.Now()
	ev, err := e.next.EvaluateMove(ctx, pos, move, depth)
	e.observe(err, start)
	return ev, err
}

func (e *instrumentedEngine) BestMove(ctx context.Context, pos entities.Position, depth int) (entities.Move, entities.Evaluation, error) {
	start := time.Now()
	mv, ev, err := e.next.BestMove(ctx, pos, depth)
	e.observe(err, start)
	return mv, ev, err
}

func (e *instrumentedEngine) Close() error { return e.next.Close() }

func (e *instrumentedEngine) observe(err error, start time.Time) {
	e.m.EngineSearches.WithLabelValues(outcome(err == nil)).Inc()
	e.m.EngineSearchSeconds.Observe(time.Since(start).Seconds())
}

// InstrumentExplainer wraps an explanation service with call counters.
func InstrumentExplainer(next ports.ExplanationService, m *Metrics) ports.ExplanationService {
	if m == nil {
		return next
	}
	return &instrumentedExplainer{next: next, m: m}
}

type instrumentedExplainer struct {
	next ports.ExplanationService
	m    *Metrics
}

func (e *instrumentedExplainer) Explain(ctx context.Context, prompt string) (string, error) {
	text, err := e.next.Explain(ctx, prompt)
	e.m.ExplanationCalls.WithLabelValues(outcome(err == nil)).Inc()
	return text, err
}
