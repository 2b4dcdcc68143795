package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the backend and show client health",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve health and metrics endpoints while probing the backend",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(statusCmd, serveCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app.Probe(ctx)
	report := app.Health(ctx)
	if asJSON {
		return printJSON(cmd, report)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Status:   %s\n", report.SystemStatus)
	_, _ = fmt.Fprintf(out, "Backend:  %s\n", report.BaseURL)
	if report.LoggedIn {
		_, _ = fmt.Fprintf(out, "Session:  %s\n", report.Username)
	} else {
		_, _ = fmt.Fprintln(out, "Session:  not logged in")
	}
	_, _ = fmt.Fprintf(out, "Cache:    %d entries\n", report.CacheEntries)
	retry := app.RetryPolicy()
	_, _ = fmt.Fprintf(out, "Retry:    max %d attempts, %s backoff per strategy\n", retry.MaxAttempts, retry.MaxWait())
	if p := report.LastProbe; p != nil {
		line := fmt.Sprintf("%s via %s in %s", p.Provenance, p.Strategy, p.Duration.Round(time.Millisecond))
		if p.Error != "" {
			line = p.Error
		}
		_, _ = fmt.Fprintf(out, "Probe:    %s\n", line)
	}

	if len(report.Endpoints) == 0 {
		return nil
	}
	w := table(out)
	_, _ = fmt.Fprintln(w, "\nENDPOINT\tSTATUS\tREQUESTS\tFAILURES\tAVG LATENCY")
	for _, e := range report.Endpoints {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", e.Endpoint, e.Status, e.Requests, e.Failures, e.AverageLatency.Round(time.Millisecond))
	}
	return w.Flush()
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start", "error", err)
		return err
	}
	slog.Info("Study client serving health endpoints", "config", cfgPath)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		return err
	}
	return nil
}
