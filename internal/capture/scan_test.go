package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"streamgauge/internal/core/domain"
)

func TestScanCaptureOutputExplicitBitrate(t *testing.T) {
	out := "frame=  250 fps= 25 q=-1.0 size=     512kB time=00:00:09.97 bitrate= 420.1kbits/s speed=1x\n"

	res := ScanCaptureOutput(out, true, 10*time.Second)
	assert.Equal(t, ScanBitrate, res.Outcome)
	assert.Equal(t, int64(420100), res.BitrateBps)
}

func TestScanCaptureOutputRoundsKilobits(t *testing.T) {
	tests := []struct {
		line string
		want int64
	}{
		// Values whose kbit*1000 product lands just below the integer in
		// float64 must not truncate downward.
		{line: "bitrate= 467.3kbits/s", want: 467300},
		{line: "bitrate= 123.4kbits/s", want: 123400},
		{line: "bitrate= 0.1kbits/s", want: 100},
	}

	for _, tt := range tests {
		res := ScanCaptureOutput(tt.line+"\n", false, 10*time.Second)
		assert.Equal(t, ScanBitrate, res.Outcome)
		assert.Equal(t, tt.want, res.BitrateBps)
	}
}

func TestScanCaptureOutputFirstTokenWins(t *testing.T) {
	out := "size= 100kB time=00:00:01.00 bitrate= 800.0kbits/s\n" +
		"size= 900kB time=00:00:09.00 bitrate= 820.0kbits/s\n"

	res := ScanCaptureOutput(out, true, 10*time.Second)
	assert.Equal(t, ScanBitrate, res.Outcome)
	assert.Equal(t, int64(800000), res.BitrateBps)
}

func TestScanCaptureOutputDerivedEstimate(t *testing.T) {
	// bitrate=N/A never matches the token pattern; the byte counter and
	// elapsed stream time yield the estimate instead.
	out := "frame= 250 fps=25 Lsize=    1000kB time=00:00:10.00 bitrate=N/A speed=1x\n"

	res := ScanCaptureOutput(out, true, 10*time.Second)
	assert.Equal(t, ScanBitrate, res.Outcome)
	assert.Equal(t, int64(800000), res.BitrateBps)
}

func TestScanCaptureOutputDerivedFallsBackToSegmentDuration(t *testing.T) {
	out := "Lsize=     500kB bitrate=N/A\n"

	res := ScanCaptureOutput(out, true, 10*time.Second)
	assert.Equal(t, ScanBitrate, res.Outcome)
	assert.Equal(t, int64(400000), res.BitrateBps)
}

func TestScanCaptureOutputDerivedDisallowed(t *testing.T) {
	out := "Lsize=    1000kB time=00:00:10.00 bitrate=N/A\n"

	res := ScanCaptureOutput(out, false, 10*time.Second)
	assert.Equal(t, ScanUnparsed, res.Outcome)
}

func TestScanCaptureOutputErrorShortCircuits(t *testing.T) {
	// The bitrate line after the error must not be picked up.
	out := "[tcp @ 0x5596] Connection refused\n" +
		"size= 100kB time=00:00:01.00 bitrate= 800.0kbits/s\n"

	res := ScanCaptureOutput(out, true, 10*time.Second)
	assert.Equal(t, ScanKnownError, res.Outcome)
	assert.Equal(t, domain.FailureRefused, res.Error)
}

func TestScanCaptureOutputErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		line string
		want domain.FailureKind
	}{
		{name: "refused", line: "Connection refused", want: domain.FailureRefused},
		{name: "invalid data", line: "Invalid data found when processing input", want: domain.FailureInvalidData},
		{name: "unauthorized", line: "method DESCRIBE failed: 401 Unauthorized", want: domain.FailureUnauthorized},
		{name: "not found", line: "method DESCRIBE failed: 404 Not Found", want: domain.FailureNotFound},
		{name: "timed out", line: "Connection timed out", want: domain.FailureTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScanCaptureOutput(tt.line+"\n", true, 10*time.Second)
			assert.Equal(t, ScanKnownError, res.Outcome)
			assert.Equal(t, tt.want, res.Error)
		})
	}
}

func TestScanCaptureOutputEmpty(t *testing.T) {
	res := ScanCaptureOutput("", true, 10*time.Second)
	assert.Equal(t, ScanUnparsed, res.Outcome)
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, domain.FailureRefused, ClassifyError("ECONNREFUSED: Connection refused"))
	assert.Equal(t, domain.FailureUnknown, ClassifyError("something else entirely"))
}

func TestFileSizeBitrate(t *testing.T) {
	// 1 MB over 10 seconds is 800 kbit/s.
	assert.Equal(t, int64(800000), FileSizeBitrate(1_000_000, 10*time.Second))
	assert.Equal(t, int64(0), FileSizeBitrate(0, 10*time.Second))
	assert.Equal(t, int64(0), FileSizeBitrate(1000, 0))
}
