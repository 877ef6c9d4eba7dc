// Package sender собирает приложение доставки SMS-уведомлений.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/askchiwa/chajipoa-core/internal/config"
	"github.com/askchiwa/chajipoa-core/internal/lib/rabbitmq"
	"github.com/askchiwa/chajipoa-core/internal/lib/smsgateway"
	senderservice "github.com/askchiwa/chajipoa-core/internal/services/sender"
)

// App представляет приложение отправителя уведомлений.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	queueName     string
	logger        *slog.Logger
}

// New создает новый экземпляр приложения отправителя.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
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

	transport := smsgateway.NewTransport(cfg.SMSGateway, logger)
	senderService := senderservice.New(transport, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		queueName:     cfg.NotifyQueue,
		logger:        logger,
	}, nil
}

// Run запускает потребление очереди уведомлений до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- rabbitmq.ConsumeMessages(ctx, a.ch, a.queueName, a.senderService.HandleRentalEvent)
	}()

	select {
	case err := <-errCh:
		a.logger.Error("consumer stopped", slog.Any("err", err))
		return err
	case <-ctx.Done():
	}

	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
