package capture

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"streamgauge/internal/core/domain"
)

// fakeRunner records the invocation and plays back a canned response. The
// run function, when set, runs before the response is returned.
type fakeRunner struct {
	name   string
	args   []string
	output string
	err    error
	run    func(args []string)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.name = name
	f.args = args
	if f.run != nil {
		f.run(args)
	}
	return f.output, f.err
}

func testConfig() Config {
	return Config{
		SegmentDuration:   10 * time.Second,
		CaptureTimeout:    30 * time.Second,
		ConnectionTimeout: 5 * time.Second,
		FFmpegPath:        "ffmpeg",
		FFprobePath:       "ffprobe",
	}
}

func testSource(t *testing.T) *domain.Source {
	t.Helper()
	src, err := domain.ParseSource("rtsp://camera.local:554/stream")
	require.NoError(t, err)
	return src
}

func TestCaptureTCP(t *testing.T) {
	runner := &fakeRunner{
		output: "size= 512kB time=00:00:09.97 bitrate= 420.1kbits/s\n",
	}
	c := NewCapturer(runner, testConfig(), zaptest.NewLogger(t).Sugar())

	res := c.CaptureTCP(context.Background(), testSource(t))

	require.True(t, res.Ok())
	assert.Equal(t, int64(420100), res.BitrateBps)
	assert.Equal(t, "ffmpeg", runner.name)
	assert.Contains(t, runner.args, "-rtsp_transport")
	assert.Contains(t, runner.args, "tcp")
	assert.Contains(t, runner.args, "-stimeout")
	assert.Contains(t, runner.args, "5000000") // microseconds
	assert.Contains(t, runner.args, "-t")
	assert.Contains(t, runner.args, "10")
}

func TestCaptureUDPIgnoresByteCounter(t *testing.T) {
	// Only the explicit token is trusted over UDP; a bare byte counter
	// yields no measurement.
	runner := &fakeRunner{
		output: "Lsize= 1000kB time=00:00:10.00 bitrate=N/A\n",
	}
	c := NewCapturer(runner, testConfig(), zaptest.NewLogger(t).Sugar())

	res := c.CaptureUDP(context.Background(), testSource(t))

	assert.False(t, res.Ok())
	assert.Contains(t, runner.args, "udp")
}

func TestCaptureSimpleAcceptsDerivedEstimate(t *testing.T) {
	runner := &fakeRunner{
		output: "Lsize= 1000kB time=00:00:10.00 bitrate=N/A\n",
	}
	c := NewCapturer(runner, testConfig(), zaptest.NewLogger(t).Sugar())

	res := c.CaptureSimple(context.Background(), testSource(t))

	require.True(t, res.Ok())
	assert.Equal(t, int64(800000), res.BitrateBps)
	assert.NotContains(t, runner.args, "-rtsp_transport")
}

func TestCaptureClassifiesKnownError(t *testing.T) {
	runner := &fakeRunner{
		output: "[tcp @ 0x1] Connection refused\n",
		err:    errors.New("ffmpeg: exit status 1"),
	}
	c := NewCapturer(runner, testConfig(), zaptest.NewLogger(t).Sugar())

	res := c.CaptureTCP(context.Background(), testSource(t))

	assert.False(t, res.Ok())
	assert.Equal(t, domain.FailureRefused, res.Failure)
}

func TestCaptureSalvagesBitrateFromFailedRun(t *testing.T) {
	// A non-zero exit after useful progress lines still yields a sample.
	runner := &fakeRunner{
		output: "size= 100kB time=00:00:05.00 bitrate= 820.0kbits/s\nmuxing overhead unknown\n",
		err:    errors.New("ffmpeg: exit status 1"),
	}
	c := NewCapturer(runner, testConfig(), zaptest.NewLogger(t).Sugar())

	res := c.CaptureTCP(context.Background(), testSource(t))

	require.True(t, res.Ok())
	assert.Equal(t, int64(820000), res.BitrateBps)
}

func TestCaptureDeadlineMapsToTimeout(t *testing.T) {
	runner := &fakeRunner{
		output: "",
		err:    context.DeadlineExceeded,
	}
	c := NewCapturer(runner, testConfig(), zaptest.NewLogger(t).Sugar())

	res := c.CaptureTCP(context.Background(), testSource(t))

	assert.False(t, res.Ok())
	assert.Equal(t, domain.FailureTimeout, res.Failure)
}

func TestCaptureFileSize(t *testing.T) {
	runner := &fakeRunner{
		run: func(args []string) {
			// The segment path is the final argument; simulate a download.
			path := args[len(args)-1]
			require.NoError(t, os.WriteFile(path, make([]byte, 1_000_000), 0o644))
		},
	}
	c := NewCapturer(runner, testConfig(), zaptest.NewLogger(t).Sugar())

	res := c.CaptureFileSize(context.Background(), testSource(t))

	require.True(t, res.Ok())
	assert.Equal(t, int64(800000), res.BitrateBps)
	assert.Contains(t, runner.args, "copy")
	assert.Contains(t, runner.args, "matroska")

	// The temporary segment is removed after the capture.
	_, err := os.Stat(runner.args[len(runner.args)-1])
	assert.True(t, os.IsNotExist(err))
}

func TestCaptureFileSizeEmptySegment(t *testing.T) {
	runner := &fakeRunner{}
	c := NewCapturer(runner, testConfig(), zaptest.NewLogger(t).Sugar())

	res := c.CaptureFileSize(context.Background(), testSource(t))

	assert.False(t, res.Ok())
	assert.Equal(t, domain.FailureUnknown, res.Failure)
}

func TestCaptureFileSizeClassifiesError(t *testing.T) {
	runner := &fakeRunner{
		output: "method DESCRIBE failed: 401 Unauthorized\n",
		err:    errors.New("ffmpeg: exit status 1"),
	}
	c := NewCapturer(runner, testConfig(), zaptest.NewLogger(t).Sugar())

	res := c.CaptureFileSize(context.Background(), testSource(t))

	assert.False(t, res.Ok())
	assert.Equal(t, domain.FailureUnauthorized, res.Failure)
}
