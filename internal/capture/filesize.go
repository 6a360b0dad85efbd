package capture

import (
	"context"
	"errors"
	"os"
	"time"

	"streamgauge/internal/core/domain"
)

// CaptureFileSize downloads a segment of exactly the configured duration
// into a temporary container file (codec copy, no re-encode) and computes
// bitrate = bytes * 8 / duration. It depends only on bytes transferred,
// not on the tool's self-reported telemetry, which makes it the
// ground-truth fallback when progress-line scraping fails.
//
// The temporary file is removed on every exit path.
func (c *Capturer) CaptureFileSize(ctx context.Context, src *domain.Source) domain.SampleResult {
	tmp, err := os.CreateTemp("", "streamgauge-segment-*.mkv")
	if err != nil {
		c.log.Warnw("cannot create temp segment file", "error", err)
		return domain.NoMeasurement(domain.FailureUnknown)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", src.URL,
		"-t", formatSeconds(c.cfg.SegmentDuration),
		"-c", "copy",
		"-f", "matroska",
		tmpPath,
	}

	runCtx, cancel := context.WithTimeout(ctx, c.cfg.CaptureTimeout)
	defer cancel()

	out, runErr := c.runner.Run(runCtx, c.cfg.FFmpegPath, args...)
	if runErr != nil {
		kind := ClassifyError(out)
		if kind == domain.FailureUnknown && errors.Is(runErr, context.DeadlineExceeded) {
			kind = domain.FailureTimeout
		}
		c.log.Debugw("segment download failed", "source", src.Redacted(), "error", runErr)
		return domain.NoMeasurement(kind)
	}

	info, err := os.Stat(tmpPath)
	if err != nil || info.Size() <= 0 {
		c.log.Debugw("segment file empty or missing", "source", src.Redacted())
		return domain.NoMeasurement(domain.FailureUnknown)
	}

	return domain.Bitrate(FileSizeBitrate(info.Size(), c.cfg.SegmentDuration))
}

// FileSizeBitrate converts a downloaded segment size into bits per second:
// size_in_bytes * 8 / duration.
func FileSizeBitrate(sizeBytes int64, duration time.Duration) int64 {
	if sizeBytes <= 0 || duration <= 0 {
		return 0
	}
	return int64(float64(sizeBytes*8) / duration.Seconds())
}
