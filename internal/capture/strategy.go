package capture

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"streamgauge/internal/core/domain"
)

// Config bounds a single capture invocation.
type Config struct {
	// SegmentDuration is the fixed observation window of one capture.
	SegmentDuration time.Duration
	// CaptureTimeout is the hard bound on the capture process; it must
	// exceed SegmentDuration.
	CaptureTimeout time.Duration
	// ConnectionTimeout bounds RTSP connection establishment for the TCP
	// strategy.
	ConnectionTimeout time.Duration

	FFmpegPath  string
	FFprobePath string
}

// Capturer runs the external capture tool and produces one bitrate sample
// per invocation.
type Capturer struct {
	runner ToolRunner
	cfg    Config
	log    *zap.SugaredLogger
}

func NewCapturer(runner ToolRunner, cfg Config, log *zap.SugaredLogger) *Capturer {
	return &Capturer{runner: runner, cfg: cfg, log: log}
}

// Preflight verifies the external tools exist before any source is touched.
func (c *Capturer) Preflight() error {
	return LookupTools(c.cfg.FFmpegPath, c.cfg.FFprobePath)
}

// CaptureTCP captures over RTSP interleaved TCP with an explicit
// connection-establishment timeout. A derived size/elapsed estimate is
// accepted when no explicit bitrate token appears.
func (c *Capturer) CaptureTCP(ctx context.Context, src *domain.Source) domain.SampleResult {
	transport := []string{
		"-rtsp_transport", "tcp",
		"-stimeout", strconv.FormatInt(c.cfg.ConnectionTimeout.Microseconds(), 10),
	}
	return c.captureOnce(ctx, src, transport, true)
}

// CaptureUDP captures over RTSP UDP. Only the explicit bitrate token is
// accepted: UDP loss makes the byte counter untrustworthy.
func (c *Capturer) CaptureUDP(ctx context.Context, src *domain.Source) domain.SampleResult {
	return c.captureOnce(ctx, src, []string{"-rtsp_transport", "udp"}, false)
}

// CaptureSimple captures without a transport preference, letting the tool
// auto-negotiate. A derived estimate is accepted like for TCP.
func (c *Capturer) CaptureSimple(ctx context.Context, src *domain.Source) domain.SampleResult {
	return c.captureOnce(ctx, src, nil, true)
}

func (c *Capturer) captureOnce(ctx context.Context, src *domain.Source, transport []string, allowDerived bool) domain.SampleResult {
	args := []string{"-hide_banner", "-nostdin"}
	args = append(args, transport...)
	args = append(args,
		"-i", src.URL,
		"-t", formatSeconds(c.cfg.SegmentDuration),
		"-f", "null", "-",
	)

	runCtx, cancel := context.WithTimeout(ctx, c.cfg.CaptureTimeout)
	defer cancel()

	out, runErr := c.runner.Run(runCtx, c.cfg.FFmpegPath, args...)

	// Scan the diagnostics even when the tool failed: the output usually
	// names the reason, and a truncated capture may still carry a bitrate.
	res := ScanCaptureOutput(out, allowDerived, c.cfg.SegmentDuration)
	switch res.Outcome {
	case ScanBitrate:
		return domain.Bitrate(res.BitrateBps)
	case ScanKnownError:
		c.log.Debugw("capture failed with known error",
			"source", src.Redacted(), "reason", res.Error)
		return domain.NoMeasurement(res.Error)
	}

	if runErr != nil {
		kind := domain.FailureUnknown
		if errors.Is(runErr, context.DeadlineExceeded) {
			kind = domain.FailureTimeout
		}
		c.log.Debugw("capture tool failed", "source", src.Redacted(), "error", runErr)
		return domain.NoMeasurement(kind)
	}
	return domain.NoMeasurement(domain.FailureUnknown)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
