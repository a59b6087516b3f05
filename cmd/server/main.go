package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loan_allocator/internal/config"
	"loan_allocator/internal/handlers"
	"loan_allocator/internal/repository"
	"loan_allocator/internal/server"
	"loan_allocator/internal/transport/auth"
)

func main() {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := config.Init(setupCtx)
	fmt.Println("✅ All connections successfully established!")

	if err := cfg.CheckConnections(setupCtx); err != nil {
		log.Fatalf("❌ Connection check failed: %v", err)
	}
	fmt.Println("🟢 All connections OK")

	h := handlers.New(cfg.Postgres, cfg.Mongo, cfg.S3, cfg.Redis)

	tokens := repository.NewAPITokenRepository(cfg.Postgres)
	authMW := auth.TokenMiddleware(tokens)
	if os.Getenv("AUTH_DISABLED") == "true" {
		authMW = nil
	}

	srv := server.NewServer(cfg.Port, h, authMW)

	if err := srv.Run(runCtx); err != nil {
		log.Fatal(err)
	}
}
