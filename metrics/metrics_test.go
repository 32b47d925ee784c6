package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncAsset(AssetWritten)
	pr.IncAsset(AssetSkipped)
	pr.ObservePageRender(20 * time.Millisecond)
	pr.IncBuildOutcome(OutcomeSuccess)
	pr.ObserveBuildDuration(time.Second)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) != 4 {
		t.Errorf("metric families = %d, want 4", len(mfs))
	}

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `notionpub_asset_results_total{result="written"} 1`) {
		t.Errorf("scrape missing asset counter:\n%s", body)
	}
}

func TestNilPrometheusRecorder(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncAsset(AssetFailed)
	pr.ObserveBuildDuration(time.Second)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncAsset(AssetFailed)
	r.IncBuildOutcome(OutcomeFailed)
}
