// Command prodctl runs the production sync operations against the
// document store from the command line.  It is the operator's way to
// repair schedules and budgets without going through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/production-planner/internal/config"
	"github.com/iliyamo/production-planner/internal/database"
	"github.com/iliyamo/production-planner/internal/logging"
	"github.com/iliyamo/production-planner/internal/repository"
)

var (
	logger   *zap.Logger
	logLevel string

	// Swapped in tests.
	loadConfig = config.Load
	openStore  = openMySQL
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "prodctl",
		Short:        "Run schedule, budget and call sheet operations",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.NewLogger(logLevel, "prod")
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			logger = l
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")

	root.AddCommand(
		addShotCmd(), syncShotCmd(), syncSceneCmd(), clearShotCmd(), clearSceneCmd(), conflictsCmd(),
		linkSyncCmd(), syncSourceCmd(), unlinkCmd(), sceneBudgetCmd(),
		callSheetCmd(), tokenCmd(),
	)
	return root
}

// openMySQL connects to the database named by the environment.
func openMySQL(ctx context.Context) (repository.Store, func(), error) {
	cfg := loadConfig()
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repository.NewDocumentRepo(db), func() { _ = db.Close() }, nil
}

// withStore opens the store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, store repository.Store) (any, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, closeFn, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	out, err := fn(ctx, store)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cliLogger() *zap.Logger { return logging.OrNop(logger) }
