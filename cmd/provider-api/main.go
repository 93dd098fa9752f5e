package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"providerhub-backend/internal/bloom"
	"providerhub-backend/internal/config"
	"providerhub-backend/internal/httpapi"
	"providerhub-backend/internal/kstream"
	"providerhub-backend/internal/logging"
	"providerhub-backend/internal/moderation"
	"providerhub-backend/internal/projections"
	"providerhub-backend/internal/search"
	"providerhub-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(cfg.Log.Level)
	defer logger.Sync()

	st, err := store.Open(cfg.Store.CatalogFile)
	if err != nil {
		logger.Fatal("open catalog store", "path", cfg.Store.CatalogFile, "err", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	bloom.Init(cfg.Redis.Addr, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mod := moderation.New(rdb)

	go func() {
		if err := kstream.ConsumeIngest(ctx, kstream.IngestDeps{
			Broker:        cfg.Kafka.Broker,
			Store:         st,
			RejectionsDir: cfg.Store.RejectionsDir,
			Moderation:    mod,
			Log:           logger,
		}); err != nil && ctx.Err() == nil {
			logger.Error("gate consumer stopped", "err", err)
		}
	}()

	go func() {
		if err := projections.Consume(ctx, cfg.Kafka.Broker, rdb, logger); err != nil && ctx.Err() == nil {
			logger.Error("projectors stopped", "err", err)
		}
	}()

	svc := &httpapi.Service{
		Store:         st,
		Engine:        search.New(cfg.Search.MinThreshold),
		Log:           logger,
		Broker:        cfg.Kafka.Broker,
		Moderation:    mod,
		RejectionsDir: cfg.Store.RejectionsDir,
	}

	r := mux.NewRouter()
	svc.RegisterRoutes(r)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("provider API listening", "addr", cfg.Server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", "err", err)
	}
}
