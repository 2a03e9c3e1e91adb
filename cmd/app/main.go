package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"sealed_rps/internal/config"
	"sealed_rps/internal/db"
	"sealed_rps/internal/events"
	"sealed_rps/internal/fhe"
	httpServer "sealed_rps/internal/http"
	"sealed_rps/internal/http/handlers"
	"sealed_rps/internal/http/middleware"
	"sealed_rps/internal/ledger"
	"sealed_rps/internal/logger"
	"sealed_rps/internal/repository"
	"sealed_rps/internal/service"
	"sealed_rps/internal/ws"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	verifier, err := fhe.NewSignatureVerifier(cfg.InputSigner, cfg.KMSSigners, cfg.KMSThreshold)
	if err != nil {
		logger.Fatal("invalid proof signer settings", "error", err)
	}

	checks := map[string]handlers.Check{}

	// storage: Postgres, else embedded leveldb, else memory only
	var (
		persister ledger.Persister
		eventLog  events.Store
	)
	switch {
	case cfg.DatabaseURL != "":
		pool := db.Connect(cfg.DatabaseURL)
		defer pool.Close()
		persister = repository.NewGameRepository(pool)
		eventLog = repository.NewEventRepository(pool)
		checks["database"] = pool.Ping
	case cfg.LevelDBPath != "":
		store, err := repository.OpenLevelStore(cfg.LevelDBPath)
		if err != nil {
			logger.Fatal("failed to open leveldb", "path", cfg.LevelDBPath, "error", err)
		}
		defer store.Close()
		persister = store
		eventLog = repository.NewMemoryEventLog(0)
		logger.Info("using embedded storage", "path", cfg.LevelDBPath)
	default:
		eventLog = repository.NewMemoryEventLog(0)
		logger.Warn("no DATABASE_URL or LEVELDB_PATH, ledger state will not survive restarts")
	}

	bus := events.NewBus(0)
	journal := events.NewJournal(eventLog)
	hub := ws.NewHub()
	bus.Subscribe("journal", journal.Handle)
	bus.Subscribe("ws", hub.Handle)

	redisClient, err := events.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		// keep serving without Redis: limiters fail open, no relay
		logger.Warn("redis unavailable", "addr", cfg.RedisAddr, "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		middleware.SetRedisClient(redisClient)
		bus.Subscribe("redis", events.NewRedisRelay(redisClient, cfg.EventsChannel).Handle)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	l := ledger.New(ledger.Config{
		Contract:   cfg.Contract,
		Admins:     cfg.Admins,
		Inputs:     verifier,
		Decryption: verifier,
		Persister:  persister,
		Publisher:  bus,
	})
	if err := l.Restore(ctx); err != nil {
		logger.Fatal("failed to restore ledger", "error", err)
	}

	busDone := make(chan struct{})
	busCtx, stopBus := context.WithCancel(context.Background())
	go func() {
		bus.Run(busCtx)
		close(busDone)
	}()

	r := gin.New()
	r.Use(gin.Recovery())
	httpServer.RegisterRoutes(r, httpServer.Deps{
		Config:  cfg,
		Handler: handlers.NewHandler(l, journal),
		Hub:     hub,
		Checks:  checks,
		Version: version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "contract", cfg.Contract.Hex(), "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// flush buffered events before the stores close
	stopBus()
	<-busDone
	hub.Close()

	logger.Info("server exited")
}
