package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-shopassist-be/internal/bootstrap"
	"ai-shopassist-be/internal/config"
	"ai-shopassist-be/internal/server"
	"ai-shopassist-be/internal/tracer"
	"ai-shopassist-be/pkg/database"
	"ai-shopassist-be/pkg/extractor"

	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	shutdownTracer := tracer.InitTracer(ctx, cfg.Tracing)
	defer shutdownTracer(context.Background())

	// Vector store backend
	var gormDB *gorm.DB
	if cfg.Database.VectorStore != "memory" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	container, err := bootstrap.NewContainer(ctx, gormDB, cfg)
	if err != nil {
		log.Panicf("Unable to build container: %v", err)
	}
	defer container.Close()

	// Job worker, content events and store knowledge
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Panicf("Unable to start job consumer: %v", err)
	}
	for _, recoverer := range container.Recoverers {
		if n, err := recoverer.Recover(ctx); err != nil {
			log.Printf("Job recovery failed after %d jobs: %v", n, err)
		}
	}
	if container.ContentEventService != nil {
		if err := container.ContentEventService.Start(ctx); err != nil {
			log.Printf("Content events disabled: %v", err)
		}
	}
	if err := container.IngestionService.SyncSettingsKnowledge(ctx); err != nil && !errors.Is(err, extractor.ErrNoContent) {
		log.Printf("Store knowledge sync failed: %v", err)
	}

	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
