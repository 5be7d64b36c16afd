package main

import (
	"context"
	"log"

	"ai-supportdesk-be/internal/bootstrap"
	"ai-supportdesk-be/internal/config"
	"ai-supportdesk-be/internal/server"
	"ai-supportdesk-be/internal/tracer"
	"ai-supportdesk-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	go func() {
		log.Println("Background: Starting knowledge ingestion consumer...")
		if err := container.KnowledgeConsumer.Consume(context.Background()); err != nil {
			log.Printf("Background consumer error: %v", err)
		}
	}()

	if container.EventNotifierService != nil {
		go func() {
			if err := container.EventNotifierService.Start(); err != nil {
				log.Printf("Event notifier error: %v", err)
			}
		}()
	}

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}
