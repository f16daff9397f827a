// Package shell implements the action-tier command execution tool. Calls
// reach it only after explicit user approval.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const DefaultTimeout = 30 * time.Second

type Runner struct {
	timeout time.Duration
}

func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{timeout: timeout}
}

// Run executes the command through `bash -c`. On timeout the process is
// killed and the failure is reported through the normal error channel. On
// success stderr output is appended after the stdout text; on failure both
// streams fold into the error message.
func (r *Runner) Run(ctx context.Context, command string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "bash", "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	stdoutText := stdout.String()
	stderrText := stderr.String()

	if runCtx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("command timed out after %s", r.timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := fmt.Sprintf("command failed with exit code %d", exitErr.ExitCode())
			if stderrText != "" {
				msg += "\n" + stderrText
			}
			if stdoutText != "" {
				msg += "\n[stdout]: " + stdoutText
			}
			return "", errors.New(msg)
		}
		return "", fmt.Errorf("execute command: %w", err)
	}

	output := stdoutText
	if output == "" {
		output = "(no output)"
	}
	if strings.TrimSpace(stderrText) != "" {
		output += "\n[stderr]: " + stderrText
	}
	return output, nil
}
