// Package rentalcore собирает основной HTTP-сервис аренды: хранилище,
// кэш, очередь уведомлений, тарифный движок и маршруты API.
package rentalcore

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/askchiwa/chajipoa-core/internal/cache"
	"github.com/askchiwa/chajipoa-core/internal/config"
	jwtlib "github.com/askchiwa/chajipoa-core/internal/lib/jwt"
	"github.com/askchiwa/chajipoa-core/internal/lib/rabbitmq"
	"github.com/askchiwa/chajipoa-core/internal/migrations"
	"github.com/askchiwa/chajipoa-core/internal/notify"
	"github.com/askchiwa/chajipoa-core/internal/pricing"
	"github.com/askchiwa/chajipoa-core/internal/qrsession"
	rentalservice "github.com/askchiwa/chajipoa-core/internal/services/rental"
	"github.com/askchiwa/chajipoa-core/internal/storage/repository"
)

// App основной сервис аренды.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New создает новый экземпляр основного сервиса.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.AddressRabbit, cfg.RetriesRabbit, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, []rabbitmq.QueueConfig{
		{QueueName: cfg.NotifyQueue, RoutingKey: cfg.NotifyKeyMask},
	})
	if err != nil {
		conn.Close()
		return nil, err
	}

	tariff := pricing.NewTariff(
		cfg.FirstHourRate, cfg.AdditionalHourRate, cfg.DailyCap,
		cfg.TaxRate, cfg.DepositAmount, cfg.LateFeePerHour,
		cfg.DefaultWindow, cfg.Currency,
	)
	jwtMaker := jwtlib.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	qrManager := qrsession.New(cacheRedis, cfg.QRSessionTTL, logger)
	notifier := notify.New(ch)
	rentalService := rentalservice.New(db, cacheRedis, qrManager, notifier, tariff, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, rentalService, qrManager, jwtMaker, cfg.Currency)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if chErr := a.ch.Close(); chErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", chErr))
		}
		if connErr := a.conn.Close(); connErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", connErr))
		}
		a.db.DB.Close()
		return err
	}
}
