package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"content-studio/backend/internal/api"
	"content-studio/backend/internal/auth"
	"content-studio/backend/internal/config"
	"content-studio/backend/internal/logging"
	"content-studio/backend/internal/mcp"
	"content-studio/backend/internal/services"
	"content-studio/backend/internal/tls"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "content-studio",
		Short:        "Proxy that runs Langflow flows for the content studio form",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env", "", "Path to .env file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), envFile)
		},
	})
	root.AddCommand(newConfigCmd(&envFile))

	return root
}

func serve(ctx context.Context, envFile string) error {
	// Load configuration
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("configuration loading failed: %w", err)
	}

	// Initialize logging
	logger, err := logging.NewLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.ValidateServer(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		return err
	}
	logger.Info("Configuration loaded",
		"langflow_base_url", cfg.Langflow.BaseURL,
		"token", logging.MaskSecret(cfg.Langflow.ApplicationToken),
		"token_len", len(cfg.Langflow.ApplicationToken),
		"langflow_timeout", cfg.Langflow.Timeout,
		"config_file", cfg.ConfigFile,
	)

	logger.Info("Starting Content Studio proxy")

	// Initialize service layer
	httpClient, err := auth.NewHTTPClient(cfg.Langflow.ApplicationToken, nil, cfg.Langflow.Timeout)
	if err != nil {
		return fmt.Errorf("failed to create langflow client: %w", err)
	}
	langflow := services.NewLangflowClient(cfg.Langflow.BaseURL, httpClient)
	flowService, err := services.NewFlowService(langflow, logger)
	if err != nil {
		return fmt.Errorf("failed to create flow service: %w", err)
	}

	logger.Info("Service layer initialized")

	// Mount MCP protocol handlers
	mcpServer := mcp.NewServer(flowService, mcp.Defaults{
		FlowID:     cfg.Langflow.FlowID,
		LangflowID: cfg.Langflow.LangflowID,
	}, api.Version)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())

	// Create Echo server with the REST and MCP routes
	runAPI := api.NewServer(flowService, logger)
	runAPI.MaxBodyBytes = cfg.Server.MaxBodyBytes
	e := api.NewRouter(runAPI, api.RouterOptions{
		ServiceName: cfg.Telemetry.ServiceName,
		Logger:      logger,
		MCP:         mcpHandlers,
	})

	logger.Info("Handlers mounted", "routes", len(e.Routes()))

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.TLS.Enable {
		created, err := tls.EnsureCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames)
		if err != nil {
			logger.Error("failed to prepare TLS certificate", "error", err)
			return err
		}
		if created {
			logger.Warn("Generated self-signed certificate", "cert_file", cfg.TLS.CertFile)
		}
	}

	// Graceful shutdown handling
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", server.Addr, "tls", cfg.TLS.Enable)
		if cfg.TLS.Enable {
			serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			return err
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig.String())

		// Create shutdown context with timeout
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			if err := server.Close(); err != nil {
				logger.Error("Server close error", "error", err)
			}
		}

		logger.Info("Server stopped gracefully")
	}
	return nil
}
