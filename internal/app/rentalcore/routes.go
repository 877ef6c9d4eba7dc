// Package rentalcore предоставляет маршруты для основного приложения.
package rentalcore

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/askchiwa/chajipoa-core/internal/http/handlers/health"
	"github.com/askchiwa/chajipoa-core/internal/http/handlers/qr/issue"
	"github.com/askchiwa/chajipoa-core/internal/http/handlers/qr/validate"
	"github.com/askchiwa/chajipoa-core/internal/http/handlers/rental/active"
	"github.com/askchiwa/chajipoa-core/internal/http/handlers/rental/end"
	"github.com/askchiwa/chajipoa-core/internal/http/handlers/rental/extend"
	"github.com/askchiwa/chajipoa-core/internal/http/handlers/rental/quote"
	"github.com/askchiwa/chajipoa-core/internal/http/handlers/rental/reportlost"
	"github.com/askchiwa/chajipoa-core/internal/http/handlers/rental/start"
	"github.com/askchiwa/chajipoa-core/internal/http/middlewarectx"
	jwtlib "github.com/askchiwa/chajipoa-core/internal/lib/jwt"
	"github.com/askchiwa/chajipoa-core/internal/qrsession"
	rentalservice "github.com/askchiwa/chajipoa-core/internal/services/rental"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, rentalService *rentalservice.Service, qrManager *qrsession.Manager, jwtMaker *jwtlib.MakerImpl, currency string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger).ServeHTTP)
		r.Get("/quote", quote.New(logger, rentalService, currency).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, rate.NewLimiter(20, 50)))
			r.Post("/rentals", start.New(logger, rentalService).ServeHTTP)
			r.Get("/rentals/active", active.New(logger, rentalService).ServeHTTP)
			r.Post("/rentals/{code}/extend", extend.New(logger, rentalService).ServeHTTP)
			r.Post("/rentals/{code}/end", end.New(logger, rentalService).ServeHTTP)
			r.Post("/rentals/{code}/lost", reportlost.New(logger, rentalService).ServeHTTP)
			r.Post("/qr/issue", issue.New(logger, qrManager).ServeHTTP)
			r.Post("/qr/validate", validate.New(logger, qrManager).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
