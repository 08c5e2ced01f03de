package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"table-reconciler/core/config"
	"table-reconciler/core/database"
	"table-reconciler/core/loader"
	"table-reconciler/core/logger"
	"table-reconciler/core/middleware/auth"
	"table-reconciler/core/middleware/rayid"
	"table-reconciler/core/reconcile"
	"table-reconciler/core/rowsource"
	"table-reconciler/core/scheduler"
	"table-reconciler/core/store"

	"table-reconciler/feature/comparison"
	"table-reconciler/feature/consistency"
	"table-reconciler/feature/schedule"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "table-reconciler/docs/swagger"
)

// @title Table Reconciler API
// @version 1.0
// @description API for comparing tables and checking field consistency across databases.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the reconciler server",
	Long:  `Starts the HTTP server, the scheduler and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx := context.Background()

		// 3. Connect to the metadata database (Optional)
		// Without it the features stay disabled and only the docs are served.
		var st *store.Store
		var persister reconcile.RunPersister
		if db, s, err := openStore(ctx, cfg.Database); err != nil {
			logg.Warn("Metadata database unavailable, features disabled", zap.Error(err))
		} else {
			defer database.Close(db)
			st = s
			persister = store.NewPersister(db)
			logg.Info("Connected to metadata database", zap.String("driver", cfg.Database.Driver))
		}

		// 4. Data source connections and report export
		pool := rowsource.NewPool(rowsource.NewSchemaCache(cfg.Reconcile.SchemaCacheTTL()))
		defer pool.Close()

		archiver, err := newArchiver(ctx, cfg.Storage, logg)
		if err != nil {
			logg.Fatal("Failed to initialize report export", zap.Error(err))
		}

		comparisons := comparison.NewService(st, pool, persister, cfg.Reconcile, logg)
		checks := consistency.NewService(st, pool, persister, cfg.Reconcile, logg)
		if archiver != nil {
			comparisons.SetArchiver(archiver)
			checks.SetArchiver(archiver)
		}

		// 5. Scheduler
		sched, err := scheduler.New(cfg.Scheduler, scheduler.NewMemoryRegistry(), logg)
		if err != nil {
			logg.Fatal("Failed to create scheduler", zap.Error(err))
		}
		schedules := schedule.NewService(st, sched, comparisons, logg)

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 7. Initialize Feature Loader
		mgr := loader.NewManager()

		// Register Features
		mgr.Register(comparison.NewFeature(comparisons))
		mgr.Register(consistency.NewFeature(checks))
		mgr.Register(schedule.NewFeature(schedules, cfg.Scheduler.Enabled && st != nil))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 2.5 Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 8. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("enabled", mgr.Enabled()))

		if cfg.Scheduler.Enabled && st != nil {
			sched.Start()
			logg.Info("Scheduler started", zap.Int("tasks", sched.Len()), zap.String("timezone", sched.Location().String()))
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout())
		defer cancel()
		if err := sched.Stop(shutdownCtx); err != nil {
			logg.Warn("Scheduled runs still active at shutdown", zap.Error(err))
		}
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logg.Warn("Server shutdown incomplete", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
