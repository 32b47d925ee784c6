// Package metrics defines the build observability hooks.
package metrics

import "time"

// Asset cache outcomes.
const (
	AssetWritten = "written"
	AssetSkipped = "skipped"
	AssetFailed  = "failed"
)

// Build outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// Recorder receives build and asset cache events. Implementations must be
// safe for concurrent use.
type Recorder interface {
	IncAsset(result string)
	ObservePageRender(d time.Duration)
	IncBuildOutcome(outcome string)
	ObserveBuildDuration(d time.Duration)
}

// NoopRecorder discards everything. It is the default.
type NoopRecorder struct{}

func (NoopRecorder) IncAsset(string)                    {}
func (NoopRecorder) ObservePageRender(time.Duration)    {}
func (NoopRecorder) IncBuildOutcome(string)             {}
func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
