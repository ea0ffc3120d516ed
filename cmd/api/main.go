package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-raceplanner/internal/activity"
	"backend-raceplanner/internal/config"
	"backend-raceplanner/internal/db"
	"backend-raceplanner/internal/server"
	"backend-raceplanner/internal/shared/logging"
	"backend-raceplanner/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const serviceName = "raceplanner-api"

var mainDepsProvider = defaultDeps
var mainRunner = realMain
var newLogger = logging.New

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, *pgxpool.Pool, *redis.Client, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		notify:          signal.Notify,
		run:             Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()
	log := newLogger(serviceName, cfg.LogLevel)

	pg, err := deps.connectPostgres(cfg)
	if err != nil {
		log.Error("postgres connection failed, plans will report the activity store as unavailable", "error", err)
	}

	rdb := deps.connectRedis(cfg)

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, pg, rdb, signals, nil); err != nil {
		log.Error("server exited with error", "error", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

var scheduleJanitorFn = func(ctx context.Context, j *activity.Janitor, everyMinutes uint64) (func(), error) {
	return j.Schedule(ctx, everyMinutes)
}

var closeStreamFn = func(hub *stream.Hub) error {
	return hub.Close()
}

// Run starts the HTTP server and the cache janitor, then waits for a
// termination signal.
func Run(ctx context.Context, cfg config.Config, pg *pgxpool.Pool, rdb *redis.Client, signals <-chan os.Signal, listen ListenFunc) error {
	log := newLogger(serviceName, cfg.LogLevel)
	srv := server.NewServer(cfg, pg, rdb, log)

	if listen == nil {
		listen = defaultListen
	}

	if srv.Janitor != nil {
		stop, err := scheduleJanitorFn(ctx, srv.Janitor, uint64(max(cfg.CacheSweepMinutes, 0)))
		if err != nil {
			log.Warn("activity cache janitor not scheduled", "error", err)
		} else {
			defer stop()
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case sig := <-signals:
		log.Info("shutting down", "signal", signalName(sig))
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	if err := closeStreamFn(srv.Stream); err != nil {
		log.Warn("plan feed close failed", "error", err)
	}
	if pg != nil {
		pg.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}

func signalName(sig os.Signal) string {
	if sig == nil {
		return "closed"
	}
	return sig.String()
}
