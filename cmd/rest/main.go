package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"highlighter-be/internal/bootstrap"
	"highlighter-be/internal/config"
	"highlighter-be/internal/server"
	"highlighter-be/internal/tracer"
	"highlighter-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled)
	defer shutdownTracer(context.Background())

	// Without a connection string highlights live in memory only.
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.Open(database.Options{
			DSN:          cfg.Database.Connection,
			Production:   cfg.App.Environment == "production",
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
		})
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(ctx); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()
	go container.NotificationService.Start()

	if err := server.New(cfg, container).Run(ctx); err != nil {
		log.Printf("Server stopped: %v", err)
	}
	container.Close()
}
