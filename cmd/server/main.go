// Command server runs the knowledge base as a long-lived process: fx
// wires storage, caching, and the outbound provider clients, then the
// ingestion pipeline and retrieval engine sit ready for an embedding
// caller (a CLI, a queue consumer, a future HTTP surface) to invoke.
package main

import (
	"context"
	"os"

	"go.uber.org/fx"

	"github.com/secondbrain/core/internal/app"
	"github.com/secondbrain/core/pkg/logger"
)

func main() {
	fxApp := fx.New(
		app.Module,
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()

	if err := fxApp.Start(startCtx); err != nil {
		logger.Get().Error("application startup failed", "error", err)
		os.Exit(1)
	}

	<-fxApp.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer stopCancel()

	if err := fxApp.Stop(stopCtx); err != nil {
		logger.Get().Error("application shutdown failed", "error", err)
	}
}
