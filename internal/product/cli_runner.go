package product

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"gitlab.apk-group.net/siem/qa/discovery-harness/config"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/logger"
)

const defaultCLIBinary = "dsc"

// CLIResult captures one finished CLI invocation.
type CLIResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CLIRunner invokes the product's command line binary. Stateless per call.
type CLIRunner struct {
	binary  string
	timeout time.Duration
}

func NewCLIRunner(cfg config.CLIConfig) *CLIRunner {
	binary := cfg.Binary
	if binary == "" {
		binary = defaultCLIBinary
	}
	return &CLIRunner{
		binary:  binary,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// Run executes the binary with the given arguments, capturing exit code,
// stdout and stderr. A non-zero exit is returned as ExternalCallError along
// with the captured result; context cancellation kills the process.
func (r *CLIRunner) Run(ctx context.Context, args ...string) (CLIResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	logger.DebugContext(ctx, "CLI runner: %s %s", r.binary, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, r.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CLIResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	op := "cli " + r.binary
	if len(args) > 0 {
		op = op + " " + args[0]
	}

	if err == nil {
		return result, nil
	}

	// A process killed on context expiry still surfaces as an ExitError, so
	// the context is checked first.
	if ctx.Err() != nil {
		result.ExitCode = -1
		return result, &ExternalCallError{Op: op, Code: result.ExitCode, Err: ctx.Err()}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, &ExternalCallError{
			Op:     op,
			Code:   result.ExitCode,
			Detail: snippet(stderr.Bytes()),
			Err:    err,
		}
	}

	// Did not run at all, e.g. binary missing.
	result.ExitCode = -1
	return result, &ExternalCallError{Op: op, Code: result.ExitCode, Err: err}
}
