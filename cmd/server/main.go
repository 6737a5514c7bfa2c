package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"schoolmon/internal/config"
	"schoolmon/internal/db"
	schoolmongrpc "schoolmon/internal/grpc"
	internalhttp "schoolmon/internal/http"
	"schoolmon/internal/jobs"
	"schoolmon/internal/service"
	"schoolmon/internal/tokens"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sessions tokens.Registry
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalf("redis ping failed: %v", err)
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}()
		sessions = tokens.NewRedisRegistry(redisClient)
	} else {
		memory := tokens.NewMemoryRegistry()
		jobs.StartSessionSweepJob(ctx, cfg.TokenSweepInterval, memory)
		sessions = memory
	}

	credential, err := db.NewCredential(cfg.DemoUserID, cfg.DemoUsername, cfg.DemoPassword)
	if err != nil {
		log.Fatalf("credential init failed: %v", err)
	}
	store := db.NewSeededStore(cfg.MockSeed, credential)
	svc := service.New(store, sessions, service.OptionsFromConfig(cfg))

	server := internalhttp.NewServer(cfg, svc)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer, err := schoolmongrpc.NewServer(cfg.ServiceAuthToken)
	if err != nil {
		log.Fatalf("grpc server init failed: %v", err)
	}

	go func() {
		log.Printf("schoolmon http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	go func() {
		listener, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatalf("grpc listen error: %v", err)
		}
		log.Printf("schoolmon grpc listening on %s", cfg.GRPCAddr)
		if err := grpcServer.GRPC.Serve(listener); err != nil {
			log.Fatalf("grpc server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	grpcServer.Stop()
}
