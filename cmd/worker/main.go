package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	cfg "github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/config"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/service/claims"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/worker"
)

func main() {
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	claimService, err := claims.GetService(log)
	if err != nil {
		log.Error("Failed to create claim service", logger.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := claimService.Rules().Watch(ctx); err != nil {
		log.Warn("Rules hot reload disabled", logger.Error(err))
	}

	redisCfg := cfg.GetRedisConfig()
	workerCfg := &worker.Config{
		RedisAddr:   redisCfg.Addr,
		RedisDB:     redisCfg.DB,
		Concurrency: 10,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	}

	claimWorker, err := worker.NewClaimWorker(workerCfg, claimService, log)
	if err != nil {
		log.Error("Failed to create claim worker", logger.Error(err))
		os.Exit(1)
	}

	if err := claimWorker.Start(ctx); err != nil {
		log.Error("Failed to start worker", logger.Error(err))
		os.Exit(1)
	}

	// Periodically drop stored images and results past retention.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := claimService.CleanupTasks(ctx); err != nil {
					log.Error("Cleanup failed", logger.Error(err))
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down worker...")
	claimWorker.Stop()
	log.Info("Worker stopped")
}
