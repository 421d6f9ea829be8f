package worker

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

// Worker consumes queued claim tasks until stopped.
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
}

// Config sizes the worker. Queues maps asynq queue names to weights;
// claim tasks land on critical/default/low by submission priority.
type Config struct {
	RedisAddr   string
	RedisDB     int
	Concurrency int
	Queues      map[string]int
}

type BaseWorker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	logger   logger.Logger
	stopChan chan struct{}
}

func (w *BaseWorker) Stop() error {
	close(w.stopChan)
	w.server.Stop()
	return nil
}
