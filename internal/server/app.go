// Package server wires and runs the sandbox server of record: PostgreSQL
// via pgx, the Redis idempotency cache, S3 journal presigning and the HTTP
// API.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/logging"
	"github.com/dmitrijs2005/gophpos/internal/server/auth"
	"github.com/dmitrijs2005/gophpos/internal/server/config"
	"github.com/dmitrijs2005/gophpos/internal/server/httpapi"
	"github.com/dmitrijs2005/gophpos/internal/server/idempotency"
	"github.com/dmitrijs2005/gophpos/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophpos/internal/server/services"
	"github.com/dmitrijs2005/gophpos/internal/server/storage"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	closers []io.Closer
	handler http.Handler
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var idem idempotency.Store = idempotency.Nop{}
	if c.RedisAddr != "" {
		rdb := idempotency.New(c.RedisAddr)
		app.closers = append(app.closers, rdb)
		idem = idempotency.NewRedisStore(rdb)
	}

	deps := httpapi.Deps{
		Catalog:   services.NewCatalogService(db, rm),
		Orders:    services.NewOrderService(db, rm, idem, logger),
		Log:       logger,
		SecretKey: []byte(c.SecretKey),
	}

	if c.S3Bucket != "" {
		p, err := storage.NewS3Presigner(ctx, storage.Options{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		deps.Journals = p
	}

	app.handler = httpapi.NewRouter(deps)
	return app, nil
}

// Close releases the database and the cache connections.
func (app *App) Close() error {
	var errs []error
	for _, c := range app.closers {
		errs = append(errs, c.Close())
	}
	errs = append(errs, app.db.Close())
	return errors.Join(errs...)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.EndpointAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "HTTP server listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is canceled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Error(context.Background(), "close error", "error", err)
	}
	app.logger.Info(context.Background(), "stopped")
}

// IssueTokens returns a bearer and a CSRF token for tenantID.
func IssueTokens(c *config.Config, tenantID int64) (string, string, error) {
	token, err := auth.GenerateToken(tenantID, []byte(c.SecretKey), c.TokenValidityDuration)
	if err != nil {
		return "", "", err
	}
	csrf, err := auth.GenerateCSRFToken(tenantID, []byte(c.SecretKey), c.TokenValidityDuration)
	if err != nil {
		return "", "", err
	}
	return token, csrf, nil
}
