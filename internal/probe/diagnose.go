package probe

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"streamgauge/internal/capture"
	"streamgauge/internal/core/domain"
)

// diagnoseGrace is added on top of the requested probe timeout to form the
// hard process bound; the tool gets strictly more time than the probe it
// performs.
const diagnoseGrace = 2 * time.Second

// Diagnostician runs a lightweight protocol probe against the source to
// confirm it is reachable, well formed and not behind unmet
// authentication.
type Diagnostician struct {
	runner      capture.ToolRunner
	ffprobePath string
	log         *zap.SugaredLogger
}

func NewDiagnostician(runner capture.ToolRunner, ffprobePath string, log *zap.SugaredLogger) *Diagnostician {
	return &Diagnostician{runner: runner, ffprobePath: ffprobePath, log: log}
}

// Diagnose returns true iff the probe tool exits successfully and reports
// at least one stream. On failure the second return value classifies the
// cause for user-facing reporting.
func (d *Diagnostician) Diagnose(ctx context.Context, src *domain.Source, timeout time.Duration) (bool, domain.FailureKind) {
	args := []string{
		"-v", "error",
		"-rtsp_transport", "tcp",
		"-timeout", strconv.FormatInt(timeout.Microseconds(), 10),
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		src.URL,
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout+diagnoseGrace)
	defer cancel()

	out, err := d.runner.Run(runCtx, d.ffprobePath, args...)
	if err != nil {
		kind := capture.ClassifyError(out)
		if kind == domain.FailureUnknown && errors.Is(err, context.DeadlineExceeded) {
			kind = domain.FailureTimeout
		}
		d.log.Infow("stream diagnosis failed",
			"source", src.Redacted(), "reason", kind, "error", err)
		return false, kind
	}

	if strings.TrimSpace(out) == "" {
		d.log.Infow("stream diagnosis found no streams", "source", src.Redacted())
		return false, domain.FailureInvalidData
	}
	return true, domain.FailureNone
}

// DeclaredBitrate fetches the bitrate the stream's own metadata reports,
// in bits per second. Zero with a nil error means the stream does not
// declare one.
func (d *Diagnostician) DeclaredBitrate(ctx context.Context, src *domain.Source, timeout time.Duration) (int64, error) {
	args := []string{
		"-v", "error",
		"-rtsp_transport", "tcp",
		"-select_streams", "v:0",
		"-show_entries", "stream=bit_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		src.URL,
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout+diagnoseGrace)
	defer cancel()

	out, err := d.runner.Run(runCtx, d.ffprobePath, args...)
	if err != nil {
		return 0, err
	}

	value := strings.TrimSpace(out)
	if value == "" || strings.EqualFold(value, "N/A") {
		return 0, nil
	}
	bps, err := strconv.ParseInt(value, 10, 64)
	if err != nil || bps < 0 {
		return 0, nil
	}
	return bps, nil
}
