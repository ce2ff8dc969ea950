// Package server wires configuration, storage, services and transports
// into the running taskkeeper process and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/notify"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/rest"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/taskkeeper/internal/server/grpc"
)

var (
	openDB               = repomanager.OpenDB
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
	newAvatarStore       = func(ctx context.Context, c *config.Config) (services.AvatarStore, error) {
		return services.NewS3AvatarStore(ctx, c)
	}
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	tokenService  *services.TokenService
	userService   *services.UserService
	taskService   *services.TaskService
	avatarService *services.AvatarService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := newAvatarStore(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("avatar store init error: %w", err)
	}

	creds, err := services.NewCredentialStore(db, rm, c.BcryptCost)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("credential store init error: %w", err)
	}

	mailer := notify.NewTemplateMailer(c.MailFrom, notify.NewLogSender(logger))
	ts := services.NewTokenService(db, rm, []byte(c.SecretKey))

	return &App{
		config:        c,
		logger:        logger,
		db:            db,
		tokenService:  ts,
		userService:   services.NewUserService(db, rm, creds, ts, store, mailer, logger),
		taskService:   services.NewTaskService(db, rm),
		avatarService: services.NewAvatarService(db, rm, store, c.MaxAvatarSize, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewHTTPServer(app.config.EndpointAddrHTTP, app.config.ShutdownTimeout, app.logger,
		app.tokenService, app.userService, app.taskService, app.avatarService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server error", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "gRPC server error", "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a shutdown signal arrives or either
// server fails. Both servers are always stopped before it returns.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
