// Package homeassistant вызывает сервисы умного дома через REST API.
package homeassistant

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wurt83ow/yandex-dialogs/internal/logger"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// Client — клиент REST API умного дома.
type Client struct {
	http *resty.Client
}

// NewClient возвращает клиент для baseURL, авторизованный токеном.
func NewClient(baseURL, token string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c}
}

// CallService вызывает сервис domain.service с данными data.
func (c *Client) CallService(ctx context.Context, domain, service string, data map[string]any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"domain":  domain,
			"service": service,
		}).
		SetBody(data).
		Post("/api/services/{domain}/{service}")
	if err != nil {
		return fmt.Errorf("call %s.%s: %w", domain, service, err)
	}

	if resp.IsError() {
		return fmt.Errorf("call %s.%s: status %d: %s", domain, service, resp.StatusCode(), resp.String())
	}

	logger.Log.Debug("service called",
		zap.String("domain", domain),
		zap.String("service", service),
		zap.Int("status", resp.StatusCode()),
	)
	return nil
}
