package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notionpub"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	assets        *prom.CounterVec
	pageRender    prom.Histogram
	buildOutcome  *prom.CounterVec
	buildDuration prom.Histogram
}

// NewPrometheusRecorder creates the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		assets: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "asset_results_total",
			Help:      "Asset cache outcomes by result",
		}, []string{"result"}),
		pageRender: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "page_render_seconds",
			Help:      "Time to fetch, cache and render one post",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
	}
	reg.MustRegister(pr.assets, pr.pageRender, pr.buildOutcome, pr.buildDuration)
	return pr
}

func (p *PrometheusRecorder) IncAsset(result string) {
	if p == nil {
		return
	}
	p.assets.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) ObservePageRender(d time.Duration) {
	if p == nil {
		return
	}
	p.pageRender.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

// Handler serves the metrics of reg.
func Handler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
