// Package sms доставляет одноразовые коды: HTTP шлюз или лог для локальной разработки.
package sms

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/config"
)

type sendRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GatewaySender отправляет SMS через HTTP шлюз: POST {GatewayURL}/messages
type GatewaySender struct {
	client *resty.Client
	sender string
}

// NewGatewaySender создаёт клиента шлюза с таймаутом и повторами на сетевых ошибках и 5xx
func NewGatewaySender(cfg config.SMSConfig) *GatewaySender {
	client := resty.New().
		SetBaseURL(cfg.GatewayURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &GatewaySender{client: client, sender: cfg.Sender}
}

// Send отправляет текст на номер
func (s *GatewaySender) Send(ctx context.Context, phone, text string) error {
	var apiErr errorResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(sendRequest{From: s.sender, To: phone, Text: text}).
		SetError(&apiErr).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return fmt.Errorf("sms gateway: status %d: %s", resp.StatusCode(), apiErr.Error)
		}
		return fmt.Errorf("sms gateway: status %d", resp.StatusCode())
	}
	return nil
}

// LogSender пишет сообщение в лог вместо отправки (APP_ENV=local без шлюза)
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender создаёт LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send логирует сообщение
func (s *LogSender) Send(_ context.Context, phone, text string) error {
	s.logger.Info("sms (log sender)", zap.String("phone", phone), zap.String("text", text))
	return nil
}
