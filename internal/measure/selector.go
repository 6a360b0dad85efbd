// Package measure contains the strategy selection and sampling loop that
// turn repeated captures into a per-source summary.
package measure

import (
	"context"
	"time"

	"go.uber.org/zap"

	"streamgauge/internal/core/domain"
)

// Observer receives measurement events for metrics export. Implemented by
// monitoring.PrometheusCollector; nil disables observation.
type Observer interface {
	RecordCapture(strategy domain.Strategy, ok bool, duration time.Duration)
	RecordSample(ok bool)
}

// Backend executes one capture per call. Implemented by capture.Capturer;
// faked in tests.
type Backend interface {
	Preflight() error
	CaptureTCP(ctx context.Context, src *domain.Source) domain.SampleResult
	CaptureUDP(ctx context.Context, src *domain.Source) domain.SampleResult
	CaptureSimple(ctx context.Context, src *domain.Source) domain.SampleResult
	CaptureFileSize(ctx context.Context, src *domain.Source) domain.SampleResult
}

// Selector executes a chosen strategy, or cascades through the fixed
// fallback order when the strategy is auto.
type Selector struct {
	backend          Backend
	allowUDPFallback bool
	observer         Observer
	log              *zap.SugaredLogger
}

func NewSelector(backend Backend, allowUDPFallback bool, observer Observer, log *zap.SugaredLogger) *Selector {
	return &Selector{backend: backend, allowUDPFallback: allowUDPFallback, observer: observer, log: log}
}

// capture runs one concrete strategy and reports it to the observer.
func (s *Selector) capture(ctx context.Context, strategy domain.Strategy, src *domain.Source,
	run func(context.Context, *domain.Source) domain.SampleResult) domain.SampleResult {

	start := time.Now()
	res := run(ctx, src)
	if s.observer != nil {
		s.observer.RecordCapture(strategy, res.Ok(), time.Since(start))
	}
	return res
}

// Measure produces one bitrate sample. A concrete strategy is invoked
// exactly once with no internal fallback. Auto cascades
// tcp -> udp (when UDP fallback is allowed) -> simple -> filesize and
// returns the first positive result: reliable transports first, the
// least-reliable-but-most-tolerant method last.
func (s *Selector) Measure(ctx context.Context, src *domain.Source, strategy domain.Strategy) domain.SampleResult {
	switch strategy {
	case domain.StrategyTCP:
		return s.capture(ctx, strategy, src, s.backend.CaptureTCP)
	case domain.StrategyUDP:
		return s.capture(ctx, strategy, src, s.backend.CaptureUDP)
	case domain.StrategySimple:
		return s.capture(ctx, strategy, src, s.backend.CaptureSimple)
	case domain.StrategyFileSize:
		return s.capture(ctx, strategy, src, s.backend.CaptureFileSize)
	}

	cascade := []struct {
		name domain.Strategy
		run  func(context.Context, *domain.Source) domain.SampleResult
	}{
		{domain.StrategyTCP, s.backend.CaptureTCP},
		{domain.StrategyUDP, s.backend.CaptureUDP},
		{domain.StrategySimple, s.backend.CaptureSimple},
		{domain.StrategyFileSize, s.backend.CaptureFileSize},
	}

	last := domain.NoMeasurement(domain.FailureUnknown)
	for _, step := range cascade {
		if step.name == domain.StrategyUDP && !s.allowUDPFallback {
			continue
		}
		res := s.capture(ctx, step.name, src, step.run)
		if res.Ok() {
			return res
		}
		s.log.Debugw("strategy produced no measurement",
			"source", src.Redacted(), "strategy", step.name, "reason", res.Failure)
		last = res
	}
	return last
}
