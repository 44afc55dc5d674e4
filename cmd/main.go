package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/scorecard-dashboard/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		a.Log.Error("Failed to start background workers", "error", err)
		a.Close()
		os.Exit(1)
	}
	if err := a.Run(ctx); err != nil {
		a.Log.Error("Server exited", "error", err)
		a.Close()
		os.Exit(1)
	}
	a.Log.Info("Server stopped")
}
