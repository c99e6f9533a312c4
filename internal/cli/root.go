package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/wallet-exporter/internal/control"
	"github.com/vietddude/wallet-exporter/internal/core/config"
)

var (
	cfgPath  string
	profile  string
	envFile  string
	isDebug  bool
	shutdown = 15 * time.Second
)

var rootCmd = &cobra.Command{
	Use:   "wallet-exporter",
	Short: "Wallet balance exporter",
	Long:  `wallet-exporter polls native-token wallet balances across EVM, Bitcoin and Solana networks and serves them as Prometheus metrics.`,
	Run:   runExporter,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file for the file profile")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", string(config.ProfileFile), "configuration profile: file or env")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file for the env profile")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// loadConfig loads the selected profile and initializes logging. Config
// errors are fatal.
func loadConfig() *config.AppConfig {
	var (
		cfg *config.AppConfig
		err error
	)
	switch config.Profile(profile) {
	case config.ProfileFile:
		cfg, err = config.Load(cfgPath)
	case config.ProfileEnv:
		cfg, err = config.LoadEnv(envFile)
	default:
		err = fmt.Errorf("unknown profile %q", profile)
	}
	if err != nil {
		os.Exit(reportConfigError(os.Stdout, err))
	}

	setupLogging(cfg.Logging)
	return cfg
}

// reportConfigError logs a config load failure to w and returns the exit code.
func reportConfigError(w io.Writer, err error) int {
	logger := slog.New(newLogHandler(w, "text", slog.LevelInfo))
	var missing *config.MissingNetworksError
	if errors.As(err, &missing) {
		logger.Error("Missing RPC URLs for networks", "networks", strings.Join(missing.Networks, ", "))
	} else {
		logger.Error("Failed to load config", "profile", profile, "error", err)
	}
	return 1
}

func setupLogging(cfg config.LoggingConfig) {
	level := parseLevel(cfg.Level)
	if isDebug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(newLogHandler(os.Stdout, cfg.Format, level)))
}

// newLogHandler builds the process log handler writing to w. Text output
// splits errors onto a handler that also prints the source location.
func newLogHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return &stylelog.LevelBasedHandler{
		LowLevelHandler: tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
		}),
		ErrorHandler: tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
			AddSource:  true,
		}),
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func runExporter(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	app, err := control.NewExporter(cfg)
	if err != nil {
		slog.Error("Failed to initialize exporter", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start exporter", "error", err)
		os.Exit(1)
	}
	slog.Info("Exporter started",
		"port", cfg.Server.Port,
		"metrics_path", cfg.Server.MetricsPath,
		"interval", cfg.Poller.Interval,
	)

	runErr := app.Wait(ctx)
	if runErr != nil {
		slog.Error("Exporter failed", "error", runErr)
	} else {
		slog.Info("Received signal, shutting down...")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdown)
	defer cancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
	if runErr != nil {
		os.Exit(1)
	}
	slog.Info("Exporter stopped gracefully")
}
