package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"yt-subtitles-loader/domain/subtitles"
)

// CommandRunner defines the interface for running external commands
// This allows mocking exec.Command in tests
type CommandRunner interface {
	// Run executes a command to completion. A non-zero exit is reported in
	// the returned output, not as an error.
	Run(ctx context.Context, name string, args ...string) (*subtitles.ProcessOutput, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecCommandRunner is the production implementation using os/exec
type ExecCommandRunner struct{}

// Run executes a command and captures its exit code, stdout and stderr
func (r *ExecCommandRunner) Run(ctx context.Context, name string, args ...string) (*subtitles.ProcessOutput, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	out := &subtitles.ProcessOutput{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		out.ExitCode = exitErr.ExitCode()
	}
	return out, nil
}

// Output executes a command and returns its output
func (r *ExecCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}
