package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/smartdaycare/chat-service/internal/application"
	"github.com/smartdaycare/chat-service/internal/config"
	"github.com/smartdaycare/chat-service/internal/handler"
	"github.com/smartdaycare/chat-service/internal/identity"
	"github.com/smartdaycare/chat-service/internal/observability"
	"github.com/smartdaycare/chat-service/internal/repository"
	"github.com/smartdaycare/chat-service/internal/repository/memory"
	"github.com/smartdaycare/chat-service/internal/repository/postgres"
	"github.com/smartdaycare/chat-service/internal/server"
	"github.com/smartdaycare/chat-service/internal/tx"
	"github.com/smartdaycare/chat-service/internal/ws"
)

func main() {
	cfg := config.Load()

	observability.InitLogger(cfg.ServiceName)
	log := observability.Log
	defer log.Sync()

	ctx, cancel := setupSignalHandler(log)
	defer cancel()

	repo, transactor, db := initStore(cfg, log)
	if db != nil {
		defer db.Close()
	}

	svc := application.New(repo, transactor, initResolver(cfg), log)

	hub := ws.NewHub(log)
	gateway := ws.NewHandler(hub, log)
	chat := handler.NewChatHandler(svc, log)

	mainSrv := server.New(cfg.HTTPAddr, handler.NewRouter(chat, gateway))
	obsSrv := initObservabilityServer(cfg, db)

	startServers(cfg, mainSrv, obsSrv, log)

	<-ctx.Done()
	performGracefulShutdown(mainSrv, obsSrv, hub, log)
}

func setupSignalHandler(log *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received signal, initiating shutdown", zap.String("signal", sig.String()))
		cancel()
	}()
	return ctx, cancel
}

func initStore(cfg *config.Config, log *zap.Logger) (repository.Repository, tx.Transactor, *sql.DB) {
	if cfg.StoreDriver == "memory" {
		log.Info("using in-memory store")
		return memory.New(), tx.Nop{}, nil
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to open postgres", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		log.Fatal("failed to reach postgres", zap.Error(err))
	}
	return &postgres.Repository{DB: db}, &tx.Manager{DB: db}, db
}

func initResolver(cfg *config.Config) identity.Resolver {
	if cfg.UserAPIURL != "" {
		return identity.NewDirectory(cfg.UserAPIURL)
	}
	// Without a directory, callers must send complete participants.
	return identity.NewStatic()
}

func initObservabilityServer(cfg *config.Config, db *sql.DB) *server.Server {
	mux := chi.NewRouter()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Get("/health/live", observability.HealthLiveHandler)
	if db != nil {
		mux.Get("/health/ready", observability.HealthReadyHandler(db))
	} else {
		mux.Get("/health/ready", observability.HealthReadyHandler(nil))
	}
	return server.New(cfg.ObsHTTPAddr, mux)
}

func startServers(cfg *config.Config, mainSrv, obsSrv *server.Server, log *zap.Logger) {
	go func() {
		log.Info("starting observability server", zap.String("addr", cfg.ObsHTTPAddr))
		if err := obsSrv.Start(); err != nil && err != http.ErrServerClosed {
			log.Error("observability server error", zap.Error(err))
		}
	}()
	go func() {
		log.Info("starting server", zap.String("addr", cfg.HTTPAddr))
		if err := mainSrv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()
}

func performGracefulShutdown(mainSrv, obsSrv *server.Server, hub *ws.Hub, log *zap.Logger) {
	log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := mainSrv.Shutdown(ctx); err != nil {
		log.Error("error during server shutdown", zap.Error(err))
	}
	if err := obsSrv.Shutdown(ctx); err != nil {
		log.Error("error during observability server shutdown", zap.Error(err))
	}
	hub.Registry().CloseAll()
	log.Info("shutdown complete, exiting")
}
