package measure

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"streamgauge/internal/core/domain"
	"streamgauge/pkg/retry"
	"streamgauge/pkg/stats"
	"streamgauge/pkg/tracing"
	"streamgauge/pkg/utils"
)

// declaredDeviationLimit flags measured means that stray more than 10%
// from the bitrate the stream's metadata declares. Advisory only.
const declaredDeviationLimit = 0.10

// DeclaredLookup fetches the metadata-declared bitrate of a source.
// Implemented by probe.Diagnostician.
type DeclaredLookup interface {
	DeclaredBitrate(ctx context.Context, src *domain.Source, timeout time.Duration) (int64, error)
}

// SamplerConfig controls the sampling loop and aggregation.
type SamplerConfig struct {
	Samples         int
	DiscardFraction float64
	RetryAttempts   int
	// RetryBackoff is the fixed pause between failed attempts of one
	// sample; none is taken after the final attempt.
	RetryBackoff time.Duration
	// SamplePause is the fixed pause between consecutive samples.
	SamplePause time.Duration
	// SegmentDuration is carried into the summary's sample interval.
	SegmentDuration time.Duration
	// MetadataTimeout bounds the declared-bitrate lookup.
	MetadataTimeout time.Duration
}

// Sampler repeats measurement across the configured number of samples,
// applies per-sample retry, and aggregates the outcome.
type Sampler struct {
	selector *Selector
	meta     DeclaredLookup
	cfg      SamplerConfig
	log      *zap.SugaredLogger
}

func NewSampler(selector *Selector, meta DeclaredLookup, cfg SamplerConfig, log *zap.SugaredLogger) *Sampler {
	return &Sampler{selector: selector, meta: meta, cfg: cfg, log: log}
}

// Run measures one source. The returned summary always exists; HasData is
// false when no sample past the warm-up window succeeded.
func (s *Sampler) Run(ctx context.Context, src *domain.Source, strategy domain.Strategy) *domain.SourceSummary {
	type sample struct {
		index      int
		bitrateBps int64
	}

	retryCfg := retry.Config{Attempts: s.cfg.RetryAttempts, Delay: s.cfg.RetryBackoff}

	var successes []sample
	for i := 0; i < s.cfg.Samples; i++ {
		sampleCtx, span := tracing.TraceSample(ctx, i+1)
		res, err := retry.DoWithResult(sampleCtx, retryCfg, func() (domain.SampleResult, error) {
			r := s.selector.Measure(sampleCtx, src, strategy)
			if !r.Ok() {
				return domain.SampleResult{}, domain.ErrNoMeasurement
			}
			return r, nil
		})
		if err != nil {
			tracing.RecordError(sampleCtx, err)
		} else {
			tracing.AddSpanAttributes(sampleCtx, tracing.BitrateKey.Int64(res.BitrateBps))
		}
		span.End()
		if s.selector.observer != nil {
			s.selector.observer.RecordSample(err == nil)
		}
		if err != nil {
			s.log.Warnw("sample skipped, all attempts exhausted",
				"source", src.Redacted(), "sample", i+1, "of", s.cfg.Samples)
		} else {
			s.log.Infow("sample measured",
				"source", src.Redacted(), "sample", i+1, "of", s.cfg.Samples,
				"bitrate_bps", res.BitrateBps)
			successes = append(successes, sample{index: i, bitrateBps: res.BitrateBps})
		}

		if i < s.cfg.Samples-1 {
			sleepCtx(ctx, s.cfg.SamplePause)
		}
	}

	summary := &domain.SourceSummary{
		ID:              utils.GenerateSummaryID(),
		Address:         src.Redacted(),
		Strategy:        strategy,
		MeasuredAt:      time.Now().UTC(),
		IntervalSeconds: (s.cfg.SegmentDuration + s.cfg.SamplePause).Seconds(),
	}

	series := make([]int64, 0, len(successes))
	discard := stats.DiscardIndex(s.cfg.Samples, s.cfg.DiscardFraction)
	var retained []int64
	for _, smp := range successes {
		series = append(series, smp.bitrateBps)
		if smp.index >= discard {
			retained = append(retained, smp.bitrateBps)
		}
	}

	if len(retained) == 0 {
		// Either nothing succeeded, or every success fell inside the
		// warm-up window; no statistics can be reported.
		return summary
	}

	summary.HasData = true
	summary.Series = series
	summary.SampleCount = len(retained)
	summary.MeanBps = stats.Mean(retained)
	summary.StddevBps = stats.StdDev(retained)
	summary.MinBps = stats.Min(retained)
	summary.MaxBps = stats.Max(retained)

	s.attachDeclared(ctx, src, strategy, summary)
	return summary
}

// attachDeclared fetches the declared bitrate and logs a non-fatal
// advisory when the measured mean deviates from it by more than 10%. The
// lookup is skipped entirely for the filesize strategy, which tolerates
// malformed metadata by design of its cascade position.
func (s *Sampler) attachDeclared(ctx context.Context, src *domain.Source, strategy domain.Strategy, summary *domain.SourceSummary) {
	if s.meta == nil || strategy == domain.StrategyFileSize {
		return
	}

	declared, err := s.meta.DeclaredBitrate(ctx, src, s.cfg.MetadataTimeout)
	if err != nil {
		s.log.Debugw("declared bitrate lookup failed", "source", src.Redacted(), "error", err)
		return
	}
	if declared <= 0 {
		return
	}

	summary.DeclaredBps = declared
	deviation := math.Abs(summary.MeanBps-float64(declared)) / float64(declared)
	if deviation > declaredDeviationLimit {
		s.log.Warnw("measured bitrate deviates from declared",
			"source", src.Redacted(),
			"measured_bps", summary.MeanBps,
			"declared_bps", declared,
			"deviation_pct", deviation*100)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
