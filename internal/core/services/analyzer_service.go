package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"streamgauge/internal/core/domain"
	"streamgauge/internal/core/ports"
	"streamgauge/pkg/logger"
	"streamgauge/pkg/tracing"
	"streamgauge/pkg/utils"
)

// ConnectivityProber gates measurement on a transport-level handshake.
type ConnectivityProber interface {
	Probe(src *domain.Source, timeout time.Duration) bool
}

// StreamDiagnostician confirms the stream is reachable and well formed.
type StreamDiagnostician interface {
	Diagnose(ctx context.Context, src *domain.Source, timeout time.Duration) (bool, domain.FailureKind)
}

// SampleRunner executes the sampling loop for one source.
type SampleRunner interface {
	Run(ctx context.Context, src *domain.Source, strategy domain.Strategy) *domain.SourceSummary
}

// Preflighter verifies external-tool availability before the run starts.
type Preflighter interface {
	Preflight() error
}

// SummaryObserver receives finished summaries for metrics export.
type SummaryObserver interface {
	RecordSummary(summary *domain.SourceSummary)
}

// AnalyzerConfig carries the per-run settings the orchestration needs.
type AnalyzerConfig struct {
	Strategy domain.Strategy
	// ConnectionTimeout bounds the connectivity probe and the diagnosis.
	ConnectionTimeout time.Duration
	// SegmentDuration and SamplePause define the nominal sample interval
	// reported on no-data summaries.
	SegmentDuration time.Duration
	SamplePause     time.Duration
}

// AnalyzerService processes sources one at a time: connectivity gate,
// stream diagnosis, sampling, aggregation and storage. Per-source
// failures never abort the run.
type AnalyzerService struct {
	prober    ConnectivityProber
	diag      StreamDiagnostician
	sampler   SampleRunner
	preflight Preflighter
	repo      ports.SummaryRepository
	observer  SummaryObserver
	cfg       AnalyzerConfig
	log       *zap.SugaredLogger
}

func NewAnalyzerService(
	prober ConnectivityProber,
	diag StreamDiagnostician,
	sampler SampleRunner,
	preflight Preflighter,
	repo ports.SummaryRepository,
	observer SummaryObserver,
	cfg AnalyzerConfig,
	log *zap.SugaredLogger,
) *AnalyzerService {
	return &AnalyzerService{
		prober:    prober,
		diag:      diag,
		sampler:   sampler,
		preflight: preflight,
		repo:      repo,
		observer:  observer,
		cfg:       cfg,
		log:       log,
	}
}

// Run measures every source in order and returns their summaries. The
// only error it returns is an unmet tool prerequisite, raised before any
// source is touched.
func (s *AnalyzerService) Run(ctx context.Context, sources []*domain.Source) ([]*domain.SourceSummary, error) {
	if s.preflight != nil {
		if err := s.preflight.Preflight(); err != nil {
			return nil, fmt.Errorf("preflight failed: %w", err)
		}
	}

	started := time.Now()
	runID := utils.GenerateRunID()
	log := logger.WithRun(s.log, runID)
	log.Infow("starting measurement run",
		"sources", len(sources), "strategy", s.cfg.Strategy)

	summaries := make([]*domain.SourceSummary, 0, len(sources))
	for i, src := range sources {
		log.Infow("processing source",
			"source", src.Redacted(), "position", i+1, "of", len(sources))

		summary := s.measureSource(ctx, src, log)
		summaries = append(summaries, summary)

		if err := s.repo.Save(ctx, summary); err != nil {
			log.Errorw("failed to store summary", "source", src.Redacted(), "error", err)
		}
		if s.observer != nil {
			s.observer.RecordSummary(summary)
		}

		if summary.HasData {
			log.Infow("source measured",
				"source", src.Redacted(),
				"mean_kbps", summary.MeanBps/1000,
				"samples", summary.SampleCount)
		} else {
			log.Warnw("no bitrate data collected", "source", src.Redacted())
		}
	}

	log.Infow("measurement run finished",
		"sources", len(sources), "elapsed", utils.FormatDuration(time.Since(started)))
	return summaries, nil
}

func (s *AnalyzerService) measureSource(ctx context.Context, src *domain.Source, log *zap.SugaredLogger) *domain.SourceSummary {
	ctx, span := tracing.TraceSourceMeasurement(ctx, src.Redacted(), string(s.cfg.Strategy))
	defer span.End()

	if !s.prober.Probe(src, s.cfg.ConnectionTimeout) {
		tracing.RecordError(ctx, domain.ErrSourceUnreachable)
		return s.emptySummary(src)
	}

	if ok, kind := s.diag.Diagnose(ctx, src, s.cfg.ConnectionTimeout); !ok {
		if requiresCleanDiagnosis(s.cfg.Strategy) {
			log.Warnw("aborting source, stream diagnosis failed",
				"source", src.Redacted(), "reason", kind)
			tracing.RecordError(ctx, domain.ErrStreamUndiagnosed)
			return s.emptySummary(src)
		}
		// The file-size method tolerates malformed metadata, and auto
		// ends in it; proceed and let the capture decide.
		log.Infow("stream diagnosis failed, proceeding anyway",
			"source", src.Redacted(), "reason", kind, "strategy", s.cfg.Strategy)
	}

	summary := s.sampler.Run(ctx, src, s.cfg.Strategy)
	if summary.HasData {
		tracing.AddSpanAttributes(ctx, tracing.BitrateKey.Int64(int64(summary.MeanBps)))
	}
	return summary
}

// requiresCleanDiagnosis reports whether a failed diagnosis aborts
// measurement for the strategy.
func requiresCleanDiagnosis(strategy domain.Strategy) bool {
	switch strategy {
	case domain.StrategyTCP, domain.StrategyUDP, domain.StrategySimple:
		return true
	}
	return false
}

func (s *AnalyzerService) emptySummary(src *domain.Source) *domain.SourceSummary {
	return &domain.SourceSummary{
		ID:              utils.GenerateSummaryID(),
		Address:         src.Redacted(),
		Strategy:        s.cfg.Strategy,
		MeasuredAt:      time.Now().UTC(),
		IntervalSeconds: (s.cfg.SegmentDuration + s.cfg.SamplePause).Seconds(),
	}
}
