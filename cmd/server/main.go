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

	"despachos/config"
	"despachos/db"
	"despachos/db/mongo"
	"despachos/db/postgres"
	"despachos/handlers"
	"despachos/repository"
	"despachos/routes"
	"despachos/services"
	"despachos/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config from .env, config.yaml and the environment
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.EnvFile != "" {
		logger.Info("settings loaded", zap.String("env_file", cfg.EnvFile))
	} else {
		logger.Info("no .env file, settings come from config.yaml and the environment")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	var database db.DB
	switch db.DBType(cfg.DBType) {
	case db.Postgres:
		pg := postgres.NewPostgresDB(cfg.PostgresURL)
		if err := pg.Connect(); err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.RunMigrations(pg.Conn, cfg.MigrationsPath, logger); err != nil {
			pg.Disconnect()
			return err
		}
		database = pg

	case db.Mongo:
		mg := mongo.NewMongoDB(cfg.MongoURL, cfg.MongoDB)
		if err := mg.Connect(); err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		database = mg

	case db.Memory:
		database = db.NewMemoryDB()
		logger.Warn("using in-memory storage, data is lost on restart")

	default:
		return fmt.Errorf("DB_TYPE %q not supported", cfg.DBType)
	}
	defer database.Disconnect()
	logger.Info("database connected", zap.String("type", cfg.DBType))

	store := database.Store()

	var lock services.SubmissionLock = services.NewLocalLock()
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		redisLock, err := services.NewRedisLockFromURL(ctx, cfg.RedisURL, cfg.LockTTL, logger.Named("lock"))
		cancel()
		if err != nil {
			return err
		}
		defer redisLock.Close()
		lock = redisLock
		logger.Info("submission lock shared through redis")
	}

	dispatcher := services.NewDispatcher(store, logger.Named("dispatcher"),
		services.WithLock(lock),
		services.WithPause(cfg.BatchPause()),
	)

	pdfHandler := &handlers.PDFHandler{
		Renderer: &utils.ManifestPDFGenerator{
			Repo:         repository.NewPDFRepository(store),
			TemplatesDir: cfg.TemplatesDir,
		},
		Manifests: store.Manifests,
		SavePath:  cfg.PDFDir,
		Logger:    logger,
	}
	if cfg.R2.Enabled() {
		uploader, err := utils.NewR2Uploader(context.Background(), cfg.R2)
		if err != nil {
			return err
		}
		pdfHandler.Uploader = uploader
	}

	router := routes.NewRouter(routes.Handlers{
		Config: &handlers.ConfigHandler{
			Repo: store.Config,
			Defaults: handlers.EndpointDefaults{
				PrimaryURL: cfg.RNDCPrimaryURL,
				BackupURL:  cfg.RNDCBackupURL,
				TimeoutMS:  cfg.RNDCTimeoutMS,
			},
		},
		Catalog:     &handlers.CatalogHandler{Store: store},
		CargoOrders: &handlers.CargoOrderHandler{Dispatcher: dispatcher, Store: store},
		Manifests:   &handlers.ManifestHandler{Dispatcher: dispatcher, Store: store},
		Audit:       &handlers.AuditHandler{Repo: store.Audit},
		PDF:         pdfHandler,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("port", cfg.Port))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
