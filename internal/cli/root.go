// Package cli provides the command-line interface for millwright.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbuchner/millwright/internal/config"
	"github.com/mbuchner/millwright/internal/oracle"
	"github.com/mbuchner/millwright/internal/profile"
	"github.com/mbuchner/millwright/internal/service"
	"github.com/mbuchner/millwright/internal/store"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose     bool
	profilePath string

	// Global config and store client
	cfg         config.Config
	storeClient *store.Client
	logCleanup  func() error

	// Lazy-initialized oracle
	llmOracle *oracle.Oracle
)

// offlineCommands don't connect to the database up front: they work on
// local files and the deterministic pipeline. Some connect lazily via
// ensureStore when given a stored-program reference instead of a file.
var offlineCommands = map[string]bool{
	"emit":       true,
	"simulate":   true,
	"preview":    true,
	"watch":      true,
	"version":    true,
	"help":       true,
	"completion": true,
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "millwright",
	Short: "Conversational CNC program generator",
	Long: `Millwright turns plain-language machining requests into complete,
reviewable NC programs for SINUMERIK-style controllers.

An oracle (LLM) proposes a machining setup - stock plus operation list -
which is validated, checked against the machine profile, and emitted as
deterministic program text. Follow-up requests extend the same setup, and
the full program is regenerated each time. Saved programs live in
SurrealDB; toolpaths can be simulated and played back in the terminal.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if profilePath != "" {
			cfg.ProfilePath = profilePath
		}

		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)
		logCleanup = cleanup

		if offlineCommands[cmd.Name()] {
			return nil
		}

		return ensureStore(context.Background())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if storeClient != nil {
			if err := storeClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if logCleanup != nil {
			_ = logCleanup()
		}
	},
}

// ensureStore connects to SurrealDB and initializes the schema. Safe to
// call more than once; offline commands call it lazily when an argument
// turns out to be a stored-program reference.
func ensureStore(ctx context.Context) error {
	if storeClient != nil {
		return nil
	}
	client, err := store.NewClient(ctx, store.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, nil)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := client.InitSchema(ctx); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	storeClient = client
	return nil
}

// loadProfile reads the configured machine profile, or the permissive
// default when none is set.
func loadProfile() (*profile.Profile, error) {
	if cfg.ProfilePath == "" {
		return profile.Default(), nil
	}
	return profile.Load(cfg.ProfilePath)
}

// getGenerateService builds the generation pipeline with lazy oracle
// initialization, so only commands that talk to the oracle pay its
// startup cost.
func getGenerateService(ctx context.Context) (*service.GenerateService, error) {
	if llmOracle == nil {
		var err error
		llmOracle, err = oracle.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init oracle: %w", err)
		}
	}
	prof, err := loadProfile()
	if err != nil {
		return nil, err
	}
	var st service.SessionStore
	if storeClient != nil {
		st = storeClient
	}
	return service.NewGenerateService(llmOracle, st, prof, nil), nil
}

func getProgramService() *service.ProgramService {
	return service.NewProgramService(storeClient)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "machine profile file (overrides MILLWRIGHT_PROFILE)")

	// Add subcommands
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
}
