package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/postmeetinghq/postmeeting/internal/ai"
	"github.com/postmeetinghq/postmeeting/internal/config"
	"github.com/postmeetinghq/postmeeting/internal/google"
	"github.com/postmeetinghq/postmeeting/internal/instrumentation"
	"github.com/postmeetinghq/postmeeting/internal/logging"
	"github.com/postmeetinghq/postmeeting/internal/poller"
	"github.com/postmeetinghq/postmeeting/internal/recall"
	"github.com/postmeetinghq/postmeeting/internal/server"
	"github.com/postmeetinghq/postmeeting/internal/social"
	"github.com/postmeetinghq/postmeeting/internal/store"
)

// clients bundles the vendor integrations built from configuration. A nil
// client means the integration was not configured.
type clients struct {
	google *google.OAuth
	recall *recall.Client
	ai     *ai.Client
	social *social.Client
}

// buildClients constructs the vendor clients the configuration enables.
func buildClients(cfg config.Config, logger *slog.Logger) clients {
	var c clients
	if cfg.HasGoogle() {
		c.google = google.NewOAuth(cfg)
	}
	if cfg.HasRecall() {
		c.recall = recall.NewClient(cfg.RecallAPIKey, cfg.RecallBaseURL, logger)
	}
	if cfg.HasAI() {
		c.ai = ai.NewClient(cfg.OpenAIAPIKey, logger)
	}
	if cfg.HasSocial() {
		c.social = social.NewClient(social.Config{
			LinkedInClientID:     cfg.LinkedInClientID,
			LinkedInClientSecret: cfg.LinkedInClientSecret,
			LinkedInRedirectURI:  cfg.LinkedInRedirectURI,
			FacebookAppID:        cfg.FacebookAppID,
			FacebookAppSecret:    cfg.FacebookAppSecret,
			FacebookRedirectURI:  cfg.FacebookRedirectURI,
		}, logger)
	}
	return c
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		httpAddr       string
		envFile        string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the backend API server",
		Long: `Start the JSON API server, the Prometheus metrics server and the
background bot-completion poller.

Vendor integrations are enabled by their environment variables; a missing
credential disables that integration instead of failing startup:

  GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET    Google Calendar OAuth
  RECALL_API_KEY                             Recall.ai meeting bots
  OPENAI_API_KEY                             Content generation
  LINKEDIN_CLIENT_ID / LINKEDIN_CLIENT_SECRET
  FACEBOOK_APP_ID / FACEBOOK_APP_SECRET      Social publishing

A .env file in the working directory is loaded before the environment is
read.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(debugMode, httpAddr, envFile, metricsEnabled, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "API listen address (overrides HTTP_ADDR)")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Path to the environment file")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics", true, "Serve Prometheus metrics on a dedicated port")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics listen address")

	return cmd
}

func runServe(debugMode bool, httpAddr, envFile string, metricsEnabled bool, metricsAddr string) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The env file is optional; a deployed instance configures through
	// real environment variables.
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger := logging.Setup(level)

	cfg := config.FromEnv()
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	// Start metrics server on its dedicated port
	var metricsServer *server.MetricsServer
	if metricsEnabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsAddr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", logging.Err(err))
			}
		}()
	}

	st := store.NewMemoryStore()
	vendor := buildClients(cfg, logger)
	metrics := provider.Metrics()
	audit := instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)

	// Background poller runs only when bots can be managed at all.
	var p *poller.Poller
	if vendor.recall != nil {
		p = poller.New(st, vendor.recall, logger)
		p.Metrics = metrics
		p.OnCycle = func(completed int, err error) {
			status := instrumentation.StatusSuccess
			if err != nil {
				status = instrumentation.StatusError
			}
			metrics.RecordPollCycle(context.Background(), status, completed)
		}
		go p.Run(shutdownCtx)
	}

	srv := server.New(server.Options{
		Config:  cfg,
		Store:   st,
		Logger:  logger,
		Metrics: metrics,
		Audit:   audit,
		Google:  vendor.google,
		Recall:  vendor.recall,
		AI:      vendor.ai,
		Social:  vendor.social,
		Poller:  p,
	})

	caps := srv.Capabilities()
	logger.Info("integrations configured",
		slog.Bool("google_calendar", caps.Google),
		slog.Bool("recall", caps.Recall),
		slog.Bool("ai", caps.AI),
		slog.Bool("social_media", caps.Social))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	}

	// Drain in-flight requests, then stop the metrics server.
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancelDrain()

	if err := srv.Shutdown(drainCtx); err != nil {
		logger.Error("error during API server shutdown", logging.Err(err))
	}
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during metrics server shutdown", logging.Err(err))
		}
	}

	logger.Info("server gracefully stopped")
	return nil
}
