package product_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.apk-group.net/siem/qa/discovery-harness/config"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/product"
)

func TestCLIRunner_Run(t *testing.T) {
	runner := product.NewCLIRunner(config.CLIConfig{Binary: "sh"})
	ctx := context.Background()

	t.Run("captures stdout on success", func(t *testing.T) {
		result, err := runner.Run(ctx, "-c", "echo scanned 2 hosts")
		require.NoError(t, err)
		assert.Equal(t, 0, result.ExitCode)
		assert.Equal(t, "scanned 2 hosts\n", result.Stdout)
		assert.Empty(t, result.Stderr)
	})

	t.Run("non-zero exit becomes external call error", func(t *testing.T) {
		result, err := runner.Run(ctx, "-c", "echo broken >&2; exit 3")

		var callErr *product.ExternalCallError
		require.ErrorAs(t, err, &callErr)
		assert.Equal(t, 3, callErr.Code)
		assert.Equal(t, 3, result.ExitCode)
		assert.Equal(t, "broken\n", result.Stderr)
		assert.Contains(t, callErr.Detail, "broken")
	})

	t.Run("missing binary", func(t *testing.T) {
		missing := product.NewCLIRunner(config.CLIConfig{Binary: "definitely-not-installed-binary"})
		result, err := missing.Run(ctx, "scan", "list")

		var callErr *product.ExternalCallError
		require.ErrorAs(t, err, &callErr)
		assert.Equal(t, -1, result.ExitCode)
	})

	t.Run("context cancellation kills the process", func(t *testing.T) {
		cancelCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := runner.Run(cancelCtx, "-c", "sleep 30")

		var callErr *product.ExternalCallError
		require.ErrorAs(t, err, &callErr)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("configured timeout applies", func(t *testing.T) {
		timed := product.NewCLIRunner(config.CLIConfig{Binary: "sh", TimeoutSeconds: 1})
		_, err := timed.Run(ctx, "-c", "sleep 30")

		var callErr *product.ExternalCallError
		require.ErrorAs(t, err, &callErr)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
