package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oakhollow/banquet/internal/bootstrap"
	"github.com/oakhollow/banquet/internal/infrastructure/providers"
	infraRedis "github.com/oakhollow/banquet/internal/infrastructure/redis"
	"github.com/oakhollow/banquet/internal/repository/postgres"
	"github.com/oakhollow/banquet/internal/worker"
	"github.com/oakhollow/banquet/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "banquet-worker", "banquet_worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	cfg := app.Config

	installmentRepo := postgres.NewInstallmentRepository(app.Pool)
	bookingRepo := postgres.NewBookingRepository(app.Pool)

	streamProducer := infraRedis.NewStreamProducer(app.Redis)
	lockTTL := cfg.Worker.ChargeLockTTL
	locks := func(installmentID string) worker.Locker {
		return infraRedis.NewChargeLock(app.Redis, installmentID, lockTTL)
	}

	retryCfg := retry.Config{
		MaxAttempts:  uint(cfg.Processor.MaxRetries),
		InitialDelay: cfg.Processor.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	biller := worker.NewBiller(
		installmentRepo,
		bookingRepo,
		providers.NewFactory(),
		"stripe",
		locks,
		streamProducer,
		retryCfg,
		cfg.Worker.BatchSize,
		app.Metrics,
		app.Logger,
	)

	consumer := infraRedis.NewStreamConsumer(
		app.Redis,
		infraRedis.BookingStream,
		cfg.Worker.ConsumerGroup,
		cfg.InstanceID,
		int64(cfg.Worker.BatchSize),
		cfg.Worker.BlockDuration,
	)
	if err := consumer.CreateGroup(ctx); err != nil {
		app.Logger.Fatal().Err(err).Msg("Failed to create consumer group")
	}
	relay := worker.NewRelay(consumer, app.Logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info().
			Dur("poll_interval", cfg.Worker.PollInterval).
			Int("batch_size", cfg.Worker.BatchSize).
			Msg("Starting autopay biller")
		return biller.Run(gctx, cfg.Worker.PollInterval)
	})

	g.Go(func() error {
		app.Logger.Info().
			Str("group", cfg.Worker.ConsumerGroup).
			Str("consumer", cfg.InstanceID).
			Msg("Starting event relay")
		return relay.Run(gctx)
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			app.Logger.Info().Str("signal", sig.String()).Msg("Shutting down worker...")
			cancel()
			return nil
		case <-gctx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Worker exited with error")
		os.Exit(1)
	}
	app.Logger.Info().Msg("Worker exited")
}
