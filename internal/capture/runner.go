// Package capture invokes the external transport-capture and probing tools
// and turns their diagnostic output into bitrate samples.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"streamgauge/internal/core/domain"
)

// ToolRunner executes an external tool and returns its combined
// stdout+stderr text. The returned output is valid even when err is
// non-nil: capture tools routinely exit non-zero after printing the
// diagnostics we need.
type ToolRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type execRunner struct{}

// NewExecRunner returns a ToolRunner backed by os/exec. The caller bounds
// each invocation with a context deadline; an expired deadline kills the
// process.
func NewExecRunner() ToolRunner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	out := buf.String()

	if ctx.Err() != nil {
		return out, fmt.Errorf("%s timed out: %w", name, ctx.Err())
	}
	if err != nil {
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// LookupTools verifies that the capture and probe tools are resolvable.
// Failure here is fatal to the whole run, before any source is processed.
func LookupTools(ffmpegPath, ffprobePath string) error {
	for _, tool := range []string{ffmpegPath, ffprobePath} {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%w: %s", domain.ErrToolUnavailable, tool)
		}
	}
	return nil
}
