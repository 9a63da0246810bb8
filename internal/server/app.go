// Package server wires the storage, services and HTTP transport of the
// Protokol server together and runs them until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sterilpoint/protokol/internal/logging"
	"github.com/sterilpoint/protokol/internal/server/config"
	"github.com/sterilpoint/protokol/internal/server/httpapi"
	"github.com/sterilpoint/protokol/internal/server/repositories/repomanager"
	"github.com/sterilpoint/protokol/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.API
	users  *services.UserService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, slog.LevelInfo)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	store, err := services.NewS3Store(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	protocolSvc := services.NewProtocolService(db, repos, store, logger)
	exportSvc := services.NewExportService(db, repos, store, logger)
	userSvc := services.NewUserService(db, repos, c, logger)

	api := httpapi.New(protocolSvc, exportSvc, userSvc, logger)

	return &App{config: c, logger: logger, db: db, api: api, users: userSvc}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	if err := app.users.EnsureAdmin(ctx); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	router := app.api.Router()

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)
		errCh <- router.Listen(app.config.EndpointAddrHTTP)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")
	if err := router.ShutdownWithTimeout(shutdownTimeout); err != nil {
		app.logger.Error(ctx, "shutdown error", "error", err)
	}
	return app.db.Close()
}
