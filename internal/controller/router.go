package controller

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oakhollow/banquet/internal/application/checkout"
	"github.com/oakhollow/banquet/internal/domain/booking"
	"github.com/oakhollow/banquet/internal/domain/guestcount"
	"github.com/oakhollow/banquet/internal/infrastructure/config"
	"github.com/oakhollow/banquet/internal/infrastructure/observability"
	customMW "github.com/oakhollow/banquet/internal/middleware"
	"github.com/oakhollow/banquet/internal/repository/postgres"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	Pool            *pgxpool.Pool
	RedisClient     *redis.Client
	BookingRepo     booking.Repository
	InstallmentRepo booking.InstallmentRepository
	Sessions        *guestcount.Sessions
	Finalize        *checkout.FinalizeUseCase
	IdempotencyRepo *postgres.IdempotencyRepository
	Metrics         *observability.Metrics
	BookingConfig   config.BookingConfig
	CORSConfig      config.CORSConfig
	RatePerMinute   int
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(customMW.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	guestH := NewGuestController(deps.Sessions, deps.Metrics)
	planH := NewPlanController(deps.BookingConfig)
	checkoutH := NewCheckoutController(deps.Finalize, deps.BookingConfig, deps.Metrics)
	bookingH := NewBookingController(deps.BookingRepo, deps.InstallmentRepo)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if deps.RatePerMinute > 0 {
			r.Use(customMW.RateLimit(deps.RatePerMinute))
		}

		// Idempotency middleware for mutating endpoints.
		idempotencyMW := customMW.Idempotency(deps.IdempotencyRepo)

		// Guest count
		r.Get("/sessions/{sessionID}/guest-count", guestH.Get)
		r.Put("/sessions/{sessionID}/guest-count", guestH.Set)
		r.Post("/sessions/{sessionID}/guest-count/lock", guestH.Lock)

		// Payment plans
		r.Post("/plans/preview", planH.Preview)

		// Checkout
		r.With(idempotencyMW).Post("/checkout", checkoutH.Checkout)

		// Bookings
		r.Post("/bookings", bookingH.Create)
		r.Get("/bookings/{id}", bookingH.Get)
		r.Get("/bookings/{id}/purchases", bookingH.Purchases)
		r.Get("/bookings/{id}/plan", bookingH.Plan)
		r.Get("/bookings/{id}/installments", bookingH.Installments)
		r.Get("/sessions/{sessionID}/booking", bookingH.GetBySession)
	})

	return r
}
