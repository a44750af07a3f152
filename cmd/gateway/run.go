package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"alpharesearch/gateway/pkg/audit"
	"alpharesearch/gateway/pkg/audit/recorder"
	"alpharesearch/gateway/pkg/audit/retention"
	"alpharesearch/gateway/pkg/audit/storage"
	"alpharesearch/gateway/pkg/backend"
	"alpharesearch/gateway/pkg/cli"
	"alpharesearch/gateway/pkg/config"
	"alpharesearch/gateway/pkg/proxy/handlers"
	"alpharesearch/gateway/pkg/server"
	"alpharesearch/gateway/pkg/telemetry/health"
	"alpharesearch/gateway/pkg/telemetry/logging"
	"alpharesearch/gateway/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	watchConfig   bool
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway server",
	Long: `Start the gateway server with the specified configuration.

The server listens on the configured address and proxies dashboard requests
to the Alpha Research backend, recording each proxied operation in the audit
trail.

Examples:
  # Start with default config
  gateway run

  # Start with custom config
  gateway run --config /etc/gateway/config.yaml

  # Override listen address
  gateway run --listen 0.0.0.0:8080

  # Reload the config file on change
  gateway run --watch-config

  # Validate config without starting server
  gateway run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.watchConfig, "watch-config", false, "reload configuration when the file changes")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		fmt.Printf("  Listen address: %s\n", cfg.Server.ListenAddress)
		fmt.Printf("  Backend: %s\n", cfg.Backend.BaseURL())
		return nil
	}

	fmt.Printf("Alpha Research Gateway v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Backend client
	client := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL(),
		Timeout: cfg.Backend.Timeout,
	})
	fmt.Printf("✓ Backend client for %s\n", cfg.Backend.BaseURL())

	// Metrics
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(nil)
	}

	// Audit trail
	proxyOpts := []handlers.Option{}
	if collector != nil {
		proxyOpts = append(proxyOpts, handlers.WithObserver(collector))
	}

	var auditStore audit.Storage
	var auditRecorder *recorder.Recorder
	var scheduler *retention.Scheduler
	if cfg.Audit.Enabled {
		logger.Info("initializing audit trail",
			"driver", cfg.Audit.Driver,
			"path", cfg.Audit.Path,
		)

		sqliteConfig := storage.DefaultSQLiteConfig()
		sqliteConfig.Driver = cfg.Audit.Driver
		sqliteConfig.Path = cfg.Audit.Path

		auditStore, err = storage.NewSQLiteStorage(sqliteConfig)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open audit store: %w", err))
		}
		defer auditStore.Close()

		recorderConfig := recorder.DefaultConfig()
		recorderConfig.BufferSize = cfg.Audit.BufferSize
		auditRecorder = recorder.NewRecorder(auditStore, recorderConfig)
		defer auditRecorder.Close()
		proxyOpts = append(proxyOpts, handlers.WithAuditor(auditRecorder))

		if cfg.Audit.RetentionSchedule != "" {
			pruner := retention.NewPruner(auditStore, &retention.Config{
				RetentionDays: cfg.Audit.RetentionDays,
				PruneSchedule: cfg.Audit.RetentionSchedule,
				MaxRecords:    cfg.Audit.MaxRecords,
			})
			scheduler = retention.NewScheduler(pruner)
			if err := scheduler.Start(context.Background()); err != nil {
				logger.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer scheduler.Stop()
			}
		}

		fmt.Println("✓ Audit trail initialized")
	}

	proxy := handlers.NewProxy(client, proxyOpts...)

	// Health checks
	checker := health.New(0)
	checker.RegisterCheck("backend", func(ctx context.Context) error {
		snapshot := client.Health()
		if collector != nil {
			collector.SetBackendReachable(snapshot.Healthy)
		}
		if !snapshot.Healthy {
			return fmt.Errorf("backend unreachable for %d consecutive requests", snapshot.ConsecutiveFailures)
		}
		return nil
	})

	serverOpts := []server.Option{
		server.WithHealthChecker(checker),
		server.WithVersion(health.VersionInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
		}),
	}
	if collector != nil {
		serverOpts = append(serverOpts, server.WithMetrics(collector))
	}

	srv := server.NewServer(cfg, proxy, serverOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Config hot reload
	if runFlags.watchConfig {
		watcher, err := config.NewWatcher(cfgFile, logger)
		if err != nil {
			logger.Warn("config watcher unavailable", "error", err)
		} else {
			go func() {
				if err := watcher.Watch(ctx, func(updated *config.Config) {
					client.SetBaseURL(updated.Backend.BaseURL())
					logger.Info("configuration reloaded",
						"backend", client.BaseURL(),
					)
				}); err != nil {
					logger.Warn("config watcher stopped", "error", err)
				}
			}()
		}
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Give the listener a moment before printing endpoints.
	time.Sleep(100 * time.Millisecond)

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}
