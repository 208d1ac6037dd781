package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Freaky/IMSErious/pkg/config"
	"github.com/Freaky/IMSErious/pkg/log"
	"github.com/Freaky/IMSErious/pkg/metrics"
	"github.com/Freaky/IMSErious/pkg/server"
	"github.com/Freaky/IMSErious/pkg/supervisor"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "imserious",
	Short: "IMSErious - IMAP METADATA Server Entity, Really",
	Long: `IMSErious is a small event-driven dispatch daemon. It receives push
notifications from an upstream mail server over HTTP and runs
operator-configured commands in response, with per-handler delay,
rate-limit, and periodic scheduling policy.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"IMSErious version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dispatch daemon",
	Long: `Load the configuration, start one scheduler per handler, and serve
the notification endpoint until SIGINT or SIGTERM. Shutdown stops the
front end first, then drains every handler; in-flight child processes
are awaited, never killed.`,
	RunE: runServe,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		fmt.Printf("%s: OK (%d handlers)\n", path, len(cfg.Handlers))
		return nil
	},
}

func init() {
	serveCmd.Flags().StringP("config", "f", "/etc/imserious.yaml", "Configuration file")
	checkCmd.Flags().StringP("config", "f", "/etc/imserious.yaml", "Configuration file")
}

func runServe(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	sup := supervisor.New(cfg.Specs())
	sup.Start()

	srv := server.New(cfg, sup.Registry())
	if err := srv.Start(); err != nil {
		sup.Stop()
		return fmt.Errorf("failed to bind %s: %w", cfg.Listen, err)
	}

	if cfg.MetricsListen != "" {
		go serveMetrics(cfg.MetricsListen)
	}

	// SIGINT or SIGTERM begins graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Logger.Info().Str("signal", s.String()).Msg("Shutting down")

	// stop accepting events before draining the handlers
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Logger.Error().Err(err).Msg("Server shutdown failed")
	}
	sup.Stop()

	return nil
}

func serveMetrics(addr string) {
	logger := log.WithComponent("metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	logger.Info().Str("listen", addr).Msg("Metrics endpoint up")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics server error")
	}
}
