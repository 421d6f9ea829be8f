package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/api/handlers"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/api/routes"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/service/claims"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

func main() {
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/server.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	claimService, err := claims.GetService(log)
	if err != nil {
		log.Fatal("Failed to get claim service:", logger.Error(err))
	}

	// hot-reload the rules file while serving
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := claimService.Rules().Watch(watchCtx); err != nil {
		log.Warn("Rules hot reload disabled", logger.Error(err))
	}

	h := handlers.NewHandlers(claimService, log)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		log.Info("Server starting on port 8080")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error:", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown:", logger.Error(err))
	}
}
