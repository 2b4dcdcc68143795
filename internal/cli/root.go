package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/studyclient/internal/control"
	"github.com/vietddude/studyclient/internal/core/config"
	"github.com/vietddude/studyclient/internal/resolve"
)

var (
	cfgPath string
	isDebug bool
	asJSON  bool

	app *control.App
)

var rootCmd = &cobra.Command{
	Use:   "studyclient",
	Short: "Study platform client",
	Long: `studyclient talks to the study platform backend. Reads fall back to alternate
endpoints, the local cache and finally generated content, so commands keep working offline.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() {
	if err := execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// execute runs one command and releases the application afterwards.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	defer teardown()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", resolve.UserMessage(err))
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (defaults and environment only when empty)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print results as JSON")
}

func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		return err
	}
	initLogging(cfg.Logging, cmd.ErrOrStderr())

	stderr := cmd.ErrOrStderr()
	app, err = control.New(cmd.Context(), cfg,
		control.WithUnauthorizedHook(func(context.Context) {
			_, _ = fmt.Fprintln(stderr, "session expired, please login")
		}),
	)
	if err != nil {
		slog.Error("Failed to initialize client", "error", err)
		return err
	}
	return nil
}

func teardown() {
	if app == nil {
		return
	}
	if err := app.Close(); err != nil {
		slog.Warn("Failed to close stores", "error", err)
	}
	app = nil
}

func initLogging(cfg config.LoggingConfig, w io.Writer) {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if isDebug {
		level = slog.LevelDebug
	}

	if cfg.Format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
		return
	}
	stylelog.InitDefault(&tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	})
}
