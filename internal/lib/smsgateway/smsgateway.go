// Package smsgateway реализует транспорт для отправки SMS через
// HTTP-шлюз оператора.
package smsgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/askchiwa/chajipoa-core/internal/config"
)

// Transport клиент HTTP-шлюза SMS.
type Transport struct {
	client     *http.Client
	gatewayURL string
	apiKey     string
	senderName string
	log        *slog.Logger
}

// NewTransport создает новый Transport по настройкам конфига.
func NewTransport(cfg config.SMSGateway, log *slog.Logger) *Transport {
	return &Transport{
		client:     &http.Client{Timeout: cfg.SendTimeout},
		gatewayURL: cfg.GatewayURL,
		apiKey:     cfg.APIKey,
		senderName: cfg.SenderName,
		log:        log,
	}
}

type sendRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

// Send отправляет одно сообщение на номер phone.
func (t *Transport) Send(ctx context.Context, phone, text string) error {
	const op = "smsgateway.Send"

	body, err := json.Marshal(sendRequest{
		From: t.senderName,
		To:   phone,
		Text: text,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s: gateway returned status %d", op, resp.StatusCode)
	}

	t.log.Info("sms sent", slog.String("to", phone))
	return nil
}
