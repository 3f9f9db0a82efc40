// Package main provides the entry point for the millwright MCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mbuchner/millwright/internal/config"
	"github.com/mbuchner/millwright/internal/metrics"
	"github.com/mbuchner/millwright/internal/oracle"
	"github.com/mbuchner/millwright/internal/profile"
	"github.com/mbuchner/millwright/internal/server"
	"github.com/mbuchner/millwright/internal/service"
	"github.com/mbuchner/millwright/internal/store"
	"github.com/mbuchner/millwright/internal/tools"
)

const version = "0.1.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	// Log startup info
	logger.Info("millmcp starting",
		"version", version,
		"surrealdb_url", cfg.SurrealDBURL,
		"llm_provider", cfg.LLMProvider,
		"llm_model", cfg.LLMModel,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	storeCfg := store.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}

	storeClient, err := store.NewClient(ctx, storeCfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing database connection")
		_ = storeClient.Close(ctx)
	}()

	// Initialize database schema
	if err := storeClient.InitSchema(ctx); err != nil {
		logger.Error("failed to initialize database schema", "error", err)
		os.Exit(1)
	}

	// Load the machine profile
	prof := profile.Default()
	if cfg.ProfilePath != "" {
		prof, err = profile.Load(cfg.ProfilePath)
		if err != nil {
			logger.Error("failed to load machine profile", "path", cfg.ProfilePath, "error", err)
			os.Exit(1)
		}
	}
	logger.Info("machine profile loaded", "machine", prof.Machine, "controller", prof.Controller)

	// Create the oracle, reporting into the shared collector
	collector := metrics.NewCollector()
	llm, err := oracle.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to create oracle", "error", err)
		os.Exit(1)
	}
	llm = llm.WithCollector(collector)
	logger.Info("oracle initialized", "model", llm.Model())

	// Create and setup server
	srv := server.New(version, logger)
	srv.Setup()

	// Register tools
	deps := &tools.Dependencies{
		Generate:  service.NewGenerateService(llm, storeClient, prof, collector),
		Programs:  service.NewProgramService(storeClient),
		Profile:   prof,
		Collector: collector,
		Logger:    logger,
	}
	tools.RegisterAll(srv.MCPServer(), deps)
	logger.Info("tools registered", "count", 8)

	// Log ready state
	logger.Info("server ready, awaiting connections")

	// Run server (blocks until disconnect or context cancelled)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
