package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/oakhollow/banquet/internal/application/checkout"
	"github.com/oakhollow/banquet/internal/bootstrap"
	"github.com/oakhollow/banquet/internal/controller"
	"github.com/oakhollow/banquet/internal/domain/guestcount"
	"github.com/oakhollow/banquet/internal/infrastructure/providers"
	infraRedis "github.com/oakhollow/banquet/internal/infrastructure/redis"
	"github.com/oakhollow/banquet/internal/repository/postgres"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "banquet-api", "banquet")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	bookingRepo := postgres.NewBookingRepository(app.Pool)
	installmentRepo := postgres.NewInstallmentRepository(app.Pool)
	guestCountRepo := postgres.NewGuestCountRepository(app.Pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Guest count sessions, with stream fan-out ---
	streamProducer := infraRedis.NewStreamProducer(app.Redis)
	sessions := guestcount.NewSessions(app.Config.Booking.MaxGuests, guestCountRepo, app.Logger)
	guestPublisher := infraRedis.NewGuestCountPublisher(streamProducer, app.Logger)
	sessions.OnStoreCreated(guestPublisher.Attach)

	// --- Providers and use cases ---
	providerFactory := providers.NewFactory()
	processor, _, err := providerFactory.Get("stripe")
	if err != nil {
		app.Logger.Fatal().Err(err).Msg("Payment processor unavailable")
	}
	documents := providers.NewMockDocumentService("https://docs.oakhollow.example")
	flowSteps := infraRedis.NewFlowSteps(app.Redis)
	notifier := infraRedis.NewBookingNotifier(streamProducer)

	finalize := checkout.NewFinalizeUseCase(
		bookingRepo,
		installmentRepo,
		txManager,
		sessions,
		processor,
		documents,
		flowSteps,
		notifier,
		app.Logger,
	)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:            app.Pool,
		RedisClient:     app.Redis,
		BookingRepo:     bookingRepo,
		InstallmentRepo: installmentRepo,
		Sessions:        sessions,
		Finalize:        finalize,
		IdempotencyRepo: idempotencyRepo,
		Metrics:         app.Metrics,
		BookingConfig:   app.Config.Booking,
		CORSConfig:      app.Config.Server.CORS,
		RatePerMinute:   app.Config.Server.RatePerMinute,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	app.Logger.Info().Msg("Server exited")
}
