package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/classroom-seating/internal/config"
	"github.com/iliyamo/classroom-seating/internal/database"
	"github.com/iliyamo/classroom-seating/internal/handler"
	"github.com/iliyamo/classroom-seating/internal/middleware"
	"github.com/iliyamo/classroom-seating/internal/queue"
	"github.com/iliyamo/classroom-seating/internal/repository"
	"github.com/iliyamo/classroom-seating/internal/repository/memory"
	"github.com/iliyamo/classroom-seating/internal/router"
	"github.com/iliyamo/classroom-seating/internal/service"
	"github.com/iliyamo/classroom-seating/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		log.Info("redis connected", "addr", cfg.Redis.Addr)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(reg)

	var notifier service.Notifier = queue.NewDirect(st.Notifications())
	if cfg.AMQPURL != "" {
		notifier = queue.NewPublisher(cfg.AMQPURL, cfg.NotifyQueue, log)
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.NotifyQueue, st.Notifications(), log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("notification consumer stopped", "err", err)
			}
		}()
	} else {
		log.Warn("RABBITMQ_URL not set; notifications go straight to the inbox")
	}

	reconciler := service.NewReconciler(st, metrics)
	archives := service.NewArchiveService(st, cfg.TemporaryValidityDays, log, metrics)
	sweeper := service.NewSweeper(archives, rdb, cfg.SweepInterval, cfg.SweepLockTTL, log, metrics)
	go sweeper.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover(), echomw.RequestID(), requestLogger(log))

	router.RegisterRoutes(e, st, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	router.RegisterAPI(e, router.Handlers{
		Rooms:       handler.NewRoomHandler(service.NewRoomService(st, cfg.MaxRoomSeats)),
		SubRooms:    handler.NewSubRoomHandler(service.NewSubRoomService(st, cfg.TemporaryValidityDays), archives),
		Assignments: handler.NewAssignmentHandler(service.NewAssignmentService(st, reconciler)),
		Proposals:   handler.NewProposalHandler(service.NewProposalService(st, notifier, log, metrics)),
		Archives:    handler.NewArchiveHandler(archives, sweeper),
		Me:          handler.NewMeHandler(service.NewAccountService(st)),
	}, cfg.JWTSecret, middleware.NewTokenBucket(cfg.RateLimit, rdb))

	errc := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", "addr", addr, "env", cfg.Env, "storage", cfg.StorageDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStore returns the configured store and its cleanup.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Store, func(), error) {
	if cfg.StorageDriver == config.DriverMemory {
		log.Warn("using in-memory storage; data is lost on exit")
		return memory.New(), func() {}, nil
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("schema applied")
	}
	return repository.NewStore(db), func() { _ = db.Close() }, nil
}
