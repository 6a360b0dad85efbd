package domain

import "time"

// FailureKind classifies why a measurement attempt produced no bitrate.
type FailureKind string

const (
	FailureNone         FailureKind = ""
	FailureRefused      FailureKind = "connection_refused"
	FailureInvalidData  FailureKind = "invalid_data"
	FailureUnauthorized FailureKind = "unauthorized"
	FailureNotFound     FailureKind = "not_found"
	FailureTimeout      FailureKind = "timeout"
	FailureUnknown      FailureKind = "unknown"
)

// SampleResult is the outcome of one measurement attempt: either a positive
// bitrate in bits per second or an explicit failure reason.
type SampleResult struct {
	BitrateBps int64
	Failure    FailureKind
}

// Ok reports whether the attempt produced a usable bitrate.
func (r SampleResult) Ok() bool {
	return r.BitrateBps > 0
}

// Bitrate builds a successful sample result.
func Bitrate(bps int64) SampleResult {
	return SampleResult{BitrateBps: bps}
}

// NoMeasurement builds a failed sample result.
func NoMeasurement(kind FailureKind) SampleResult {
	if kind == FailureNone {
		kind = FailureUnknown
	}
	return SampleResult{Failure: kind}
}

// SourceSummary aggregates one source's retained samples. Built once at the
// end of the sampling loop and immutable afterward.
type SourceSummary struct {
	ID         string    `json:"id"`
	Address    string    `json:"address"`
	Strategy   Strategy  `json:"strategy"`
	MeasuredAt time.Time `json:"measured_at"`

	// HasData is false when no sample succeeded; the statistics fields are
	// meaningless in that case.
	HasData   bool    `json:"has_data"`
	MeanBps   float64 `json:"mean_bps"`
	StddevBps float64 `json:"stddev_bps"`
	MinBps    int64   `json:"min_bps"`
	MaxBps    int64   `json:"max_bps"`

	// SampleCount is the number of samples contributing to the statistics,
	// i.e. successful samples past the warm-up window.
	SampleCount int `json:"sample_count"`

	// Series holds every successful per-sample bitrate in order, warm-up
	// samples included, for time-series rendering.
	Series []int64 `json:"series"`

	// IntervalSeconds is the nominal spacing between consecutive samples,
	// for plotting the series on a time axis.
	IntervalSeconds float64 `json:"interval_seconds"`

	// DeclaredBps is the bitrate reported by the stream's own metadata,
	// zero when unavailable or when the lookup was skipped.
	DeclaredBps int64 `json:"declared_bps,omitempty"`
}
