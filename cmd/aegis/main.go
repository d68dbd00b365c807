// File: cmd/aegis/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/vexred/aegis-cli/cmd"
	"github.com/vexred/aegis-cli/internal/observability"
)

func main() {
	// Listen for interrupt signals so a running assessment can drain and
	// still emit its partial report.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
