package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-warehouse/internal/handler"
	"go-warehouse/internal/middleware"
	"go-warehouse/internal/repository"
	"go-warehouse/internal/service"
	"go-warehouse/internal/worker"
	"go-warehouse/internal/ws"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlog "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the local HTTP API and websocket event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, cmd)
		},
	}
}

func (a *app) serve(ctx context.Context, cmd *cobra.Command) error {
	hub := ws.NewHub(a.log)
	runner := worker.NewRunner(a.open, a.log, hub.TaskListener())

	products := repository.NewProductRepo(a.db)
	records := repository.NewRecordRepo(a.db)
	invService := service.NewInventoryService(products, records, hub)
	ledger := a.ledger(service.WithLedgerNotifier(hub))
	dashService := service.NewDashboardService(records)

	srv := fiber.New(fiber.Config{
		AppName:               "Warehouse Ledger",
		DisableStartupMessage: true,
	})
	srv.Use(fiberlog.New(fiberlog.Config{Output: cmd.ErrOrStderr()}))
	srv.Use(recover.New())
	srv.Use(cors.New())
	srv.Use(middleware.LocalOnly())

	handler.SetupRoutes(srv, handler.Handlers{
		Inventory: handler.NewInventoryHandler(invService, ledger),
		Dashboard: handler.NewDashboardHandler(dashService),
		Tasks:     handler.NewTaskHandler(runner),
		Hub:       hub,
	})

	var scheduler *worker.Scheduler
	if a.cfg.ExportSchedule != "" {
		scheduler = worker.NewScheduler(runner, a.cfg.ExportDir, a.log)
		if err := scheduler.Start(a.cfg.ExportSchedule); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		a.log.Info().Str("addr", a.cfg.HTTPAddr).Str("db", a.cfg.DatabasePath).Msg("http server listening")
		return srv.Listen(a.cfg.HTTPAddr)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if scheduler != nil {
			<-scheduler.Stop().Done()
		}
		if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
			a.log.Error().Err(err).Msg("http shutdown")
		}
		// let an import or export finish before the process exits
		return runner.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	a.log.Info().Msg("server exited")
	return err
}
