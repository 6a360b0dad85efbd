package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"streamgauge/internal/core/domain"
)

type fakeRunner struct {
	name   string
	args   []string
	output string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.name = name
	f.args = args
	return f.output, f.err
}

func TestDiagnoseHealthyStream(t *testing.T) {
	runner := &fakeRunner{output: "video\naudio\n"}
	d := NewDiagnostician(runner, "ffprobe", zaptest.NewLogger(t).Sugar())

	ok, kind := d.Diagnose(context.Background(), testSource(t), 5*time.Second)

	assert.True(t, ok)
	assert.Equal(t, domain.FailureNone, kind)
	assert.Equal(t, "ffprobe", runner.name)
	assert.Contains(t, runner.args, "-show_entries")
	assert.Contains(t, runner.args, "stream=codec_type")
}

func TestDiagnoseNoStreams(t *testing.T) {
	runner := &fakeRunner{output: "  \n"}
	d := NewDiagnostician(runner, "ffprobe", zaptest.NewLogger(t).Sugar())

	ok, kind := d.Diagnose(context.Background(), testSource(t), 5*time.Second)

	assert.False(t, ok)
	assert.Equal(t, domain.FailureInvalidData, kind)
}

func TestDiagnoseClassifiesToolError(t *testing.T) {
	runner := &fakeRunner{
		output: "method DESCRIBE failed: 401 Unauthorized\n",
		err:    errors.New("ffprobe: exit status 1"),
	}
	d := NewDiagnostician(runner, "ffprobe", zaptest.NewLogger(t).Sugar())

	ok, kind := d.Diagnose(context.Background(), testSource(t), 5*time.Second)

	assert.False(t, ok)
	assert.Equal(t, domain.FailureUnauthorized, kind)
}

func TestDiagnoseDeadlineMapsToTimeout(t *testing.T) {
	runner := &fakeRunner{output: "", err: context.DeadlineExceeded}
	d := NewDiagnostician(runner, "ffprobe", zaptest.NewLogger(t).Sugar())

	ok, kind := d.Diagnose(context.Background(), testSource(t), 5*time.Second)

	assert.False(t, ok)
	assert.Equal(t, domain.FailureTimeout, kind)
}

func TestDeclaredBitrate(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    int64
		wantErr bool
		err     error
	}{
		{name: "declared", output: "800000\n", want: 800000},
		{name: "not declared", output: "N/A\n", want: 0},
		{name: "empty", output: "", want: 0},
		{name: "garbage", output: "banana\n", want: 0},
		{name: "tool failure", output: "", err: errors.New("exit status 1"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{output: tt.output, err: tt.err}
			d := NewDiagnostician(runner, "ffprobe", zaptest.NewLogger(t).Sugar())

			got, err := d.DeclaredBitrate(context.Background(), testSource(t), 5*time.Second)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
