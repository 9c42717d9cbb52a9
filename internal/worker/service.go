package worker

import (
	"context"
	"errors"
	"time"

	"github.com/baguri-ro/baguri-api/internal/config"
	"github.com/baguri-ro/baguri-api/internal/logger"
	"github.com/baguri-ro/baguri-api/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	orderExpireSweepInterval = time.Minute
	walletReconcileInterval  = time.Hour
	orderExpireSweepLimit    = 100
)

// Service runs the asynq consumer plus the periodic sweeps.
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService builds the queue worker service.
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name returns the service name.
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the consumer and the periodic loops until ctx is canceled.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	go s.runOrderExpireSweep(ctx)
	go s.runWalletReconcileSweep(ctx)
	return s.server.Run(s.mux)
}

// Stop shuts the consumer down.
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runOrderExpireSweep(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.OrderService == nil {
		return
	}
	runOnce := func() {
		canceled, err := s.consumer.OrderService.CancelExpired(orderExpireSweepLimit)
		if err != nil {
			logger.Warnw("worker_order_expire_sweep_failed", "error", err)
			return
		}
		if canceled > 0 {
			logger.Infow("worker_order_expire_sweep", "canceled", canceled)
		}
	}
	runOnce()

	ticker := time.NewTicker(orderExpireSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func (s *Service) runWalletReconcileSweep(ctx context.Context) {
	if s == nil || s.consumer == nil {
		return
	}
	runOnce := func() {
		if err := s.consumer.reconcileAllWallets(); err != nil {
			logger.Warnw("worker_wallet_reconcile_sweep_failed", "error", err)
		}
	}

	ticker := time.NewTicker(walletReconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
