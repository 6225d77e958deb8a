// Package main provides the castdl CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"castdl/internal/core"
	"castdl/internal/source"
	"castdl/internal/spotify"
	"castdl/internal/store"
	"castdl/internal/ytdlp"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "castdl <url>",
	Short: "castdl - playlist and show media downloader",
	Long: `castdl resolves a Spotify playlist/show or YouTube playlist into downloadable
media items, skips everything already downloaded in earlier runs, and drives
yt-dlp per item with a browser-cookie fallback when the standard attempt fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runCastdl,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("output", "o", ".", "output directory")
	rootCmd.PersistentFlags().StringP("format", "f", "audio", "download format (audio, video)")
	rootCmd.PersistentFlags().String("tool-path", "yt-dlp", "path to the yt-dlp executable")
	rootCmd.PersistentFlags().String("cookies-browser", "firefox", "browser used for fallback cookie authentication")
	rootCmd.PersistentFlags().String("spotify-client-id", "", "Spotify client ID")
	rootCmd.PersistentFlags().String("spotify-client-secret", "", "Spotify client secret")
	rootCmd.PersistentFlags().Int("download-timeout-mins", 30, "per-item download timeout in minutes")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	// Load .env explicitly so credentials can live next to the binary.
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix("CASTDL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")

	cfg.Downloader.ToolPath = viper.GetString("tool-path")
	if cfg.Downloader.ToolPath == "" {
		cfg.Downloader.ToolPath = "yt-dlp"
	}
	cfg.Downloader.CookiesBrowser = viper.GetString("cookies-browser")
	if cfg.Downloader.CookiesBrowser == "" {
		cfg.Downloader.CookiesBrowser = "firefox"
	}
	if mins := viper.GetInt("download-timeout-mins"); mins > 0 {
		cfg.Downloader.Timeout = time.Duration(mins) * time.Minute
	}

	cfg.Output.Dir = viper.GetString("output")
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}

	cfg.Log.Level = viper.GetString("log-level")

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runCastdl(_ *cobra.Command, args []string) error {
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	format, err := core.ParseMediaFormat(viper.GetString("format"))
	if err != nil {
		return err
	}
	config.Output.Format = format

	// Classification is pure URL work and happens before any network call.
	ref, err := source.Classify(args[0])
	if err != nil {
		return err
	}

	logger.Info("Source classified",
		zap.String("kind", ref.Kind.String()),
		zap.String("id", ref.ID),
		zap.String("format", config.Output.Format.String()))

	runner := ytdlp.NewRunner(&config.Downloader, logger.Named("ytdlp"))
	if err := runner.Installed(ctx); err != nil {
		logger.Warn("Downloader executable not found, downloads will fail per item",
			zap.Error(err))
	}

	// Credentials are only required for Spotify-backed sources and are
	// checked before any network call.
	var episodes core.EpisodeLister
	if ref.Kind.IsSpotify() {
		if !config.Spotify.HasCredentials() {
			return core.ErrMissingCredentials
		}
		client, err := spotify.NewClient(ctx, &config.Spotify, logger.Named("spotify"))
		if err != nil {
			return err
		}
		episodes = client
	}

	resolver := source.NewResolver(episodes, runner, logger.Named("resolver"))
	items, err := resolver.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		logger.Info("No downloadable items resolved")
		fmt.Println("Nothing to download.")
		return nil
	}

	if err := os.MkdirAll(config.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	ledger, err := store.Open(filepath.Join(config.Output.Dir, config.Output.LedgerName))
	if err != nil {
		return err
	}
	logger.Info("Ledger loaded",
		zap.String("path", ledger.Path()),
		zap.Int("entries", ledger.Size()))

	orchestrator := core.NewOrchestrator(config, runner, ledger, logger.Named("orchestrator"))

	var summary *core.Summary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := orchestrator.Process(gctx, items)
		summary = s
		return err
	})
	err = g.Wait()

	if summary != nil {
		printSummary(summary, len(items))
	}

	// Item-level failures never change the exit code; only run-fatal
	// errors (ledger I/O, cancellation) surface here.
	return err
}

func printSummary(summary *core.Summary, total int) {
	fmt.Println("\n--- Run Summary ---")
	fmt.Printf("Succeeded:  %d (%d via fallback)\n", summary.Succeeded, summary.FallbackSucceeded)
	fmt.Printf("Skipped:    %d (already downloaded)\n", summary.Skipped)
	fmt.Printf("Failed:     %d (retried on next run)\n", summary.Failed)
	fmt.Printf("Total:      %d of %d items processed\n", summary.Total(), total)
}
