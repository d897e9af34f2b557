// Package cli is the warehouse command line: catalog and stock commands,
// CSV import/export and the local HTTP server.
package cli

import (
	"context"
	"fmt"

	"go-warehouse/internal/config"
	"go-warehouse/internal/logger"
	"go-warehouse/internal/repository"
	"go-warehouse/internal/service"
	"go-warehouse/pkg/database"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// app is the state shared by every subcommand once the root pre-run has
// loaded config and opened the database.
type app struct {
	dbPath string

	cfg  *config.Config
	log  zerolog.Logger
	db   *gorm.DB
	open database.Opener
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DatabasePath = a.dbPath
	}
	a.cfg = cfg
	a.log = logger.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

	dbCfg := database.Config{
		Path:        cfg.DatabasePath,
		BusyTimeout: cfg.BusyTimeout,
		Logger:      logger.Gorm(a.log, cfg.DatabaseLogMode),
	}
	db, err := database.Open(dbCfg)
	if err != nil {
		return err
	}
	if err := repository.Migrate(db); err != nil {
		database.Close(db)
		return fmt.Errorf("migrate %s: %w", cfg.DatabasePath, err)
	}
	a.db = db
	a.open = database.NewOpener(dbCfg)
	a.log.Debug().Str("path", cfg.DatabasePath).Msg("database ready")
	return nil
}

func (a *app) teardown() error {
	if a.db == nil {
		return nil
	}
	err := database.Close(a.db)
	a.db = nil
	return err
}

func (a *app) inventory(n service.Notifier) service.InventoryService {
	return service.NewInventoryService(repository.NewProductRepo(a.db), repository.NewRecordRepo(a.db), n)
}

func (a *app) ledger(opts ...service.LedgerOption) service.StockLedger {
	opts = append([]service.LedgerOption{service.WithLedgerLogger(a.log)}, opts...)
	return service.NewStockLedger(repository.NewProductRepo(a.db), repository.NewRecordRepo(a.db), a.db, opts...)
}

// Execute runs the command line and releases the database afterwards, also
// when a command fails.
func Execute(ctx context.Context) error {
	root, a := newRootCommand()
	defer a.teardown()
	return root.ExecuteContext(ctx)
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:           "warehouse",
		Short:         "Single-site warehouse stock ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "database file (overrides WAREHOUSE_DB_PATH)")

	root.AddCommand(
		newInitCommand(a),
		newServeCommand(a),
		newProductCommand(a),
		newAdjustCommand(a),
		newExportCommand(a),
		newImportCommand(a),
	)
	return root, a
}

func newInitCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database file and schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "database ready at %s\n", a.cfg.DatabasePath)
			return nil
		},
	}
}
