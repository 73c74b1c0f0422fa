// Package webhook принимает входящие вебхуки и передаёт их
// зарегистрированным обработчикам по идентификатору вебхука.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/wurt83ow/yandex-dialogs/internal/logger"
	"go.uber.org/zap"
)

const (
	// Pattern — шаблон пути вебхука для http.ServeMux.
	Pattern = "/api/webhook/{webhook_id}"

	pathPrefix = "/api/webhook/"
)

var ErrAlreadyRegistered = errors.New("webhook is already registered")

// Response — ответ обработчика вебхука.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// JSON сериализует v в ответ со статусом 200.
func JSON(v any) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &Response{
		Status:      http.StatusOK,
		ContentType: "application/json",
		Body:        body,
	}, nil
}

// Empty возвращает ответ 200 без тела.
func Empty() *Response {
	return &Response{Status: http.StatusOK}
}

// Handler обрабатывает вызов вебхука.
type Handler func(ctx context.Context, webhookID string, r *http.Request) (*Response, error)

type registration struct {
	domain  string
	name    string
	handler Handler
}

// Registry хранит обработчики вебхуков по идентификаторам.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string]registration
}

func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string]registration)}
}

// Register связывает webhookID с обработчиком.
func (r *Registry) Register(domain, name, webhookID string, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.hooks[webhookID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, webhookID)
	}
	r.hooks[webhookID] = registration{domain: domain, name: name, handler: h}

	logger.Log.Info("webhook registered", zap.String("domain", domain), zap.String("name", name))
	return nil
}

// Unregister удаляет обработчик вебхука.
func (r *Registry) Unregister(webhookID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.hooks, webhookID)
}

// Registered сообщает, есть ли обработчик у webhookID.
func (r *Registry) Registered(webhookID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.hooks[webhookID]
	return ok
}

// URL возвращает внешний адрес вебхука.
func URL(baseURL, webhookID string) string {
	return strings.TrimRight(baseURL, "/") + pathPrefix + webhookID
}

func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		logger.Log.Debug("got webhook request with bad method", zap.String("method", req.Method))
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	webhookID := req.PathValue("webhook_id")
	if webhookID == "" {
		webhookID = strings.TrimPrefix(req.URL.Path, pathPrefix)
	}

	r.mu.RLock()
	reg, ok := r.hooks[webhookID]
	r.mu.RUnlock()

	// на неизвестный вебхук отвечаем так же, как на известный,
	// чтобы не раскрывать зарегистрированные идентификаторы
	if !ok {
		logger.Log.Warn("received message for unregistered webhook", zap.String("remote", req.RemoteAddr))
		w.WriteHeader(http.StatusOK)
		return
	}

	resp, err := call(reg.handler, webhookID, req)
	if err != nil {
		logger.Log.Error("error processing webhook",
			zap.String("domain", reg.domain),
			zap.String("name", reg.name),
			zap.Error(err),
		)
		w.WriteHeader(http.StatusOK)
		return
	}
	if resp == nil {
		resp = Empty()
	}

	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if _, err := w.Write(resp.Body); err != nil {
		logger.Log.Debug("error writing webhook response", zap.Error(err))
	}
}

// call вызывает обработчик, превращая панику в ошибку.
func call(h Handler, webhookID string, req *http.Request) (resp *Response, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("webhook handler panic: %v", p)
		}
	}()
	return h(req.Context(), webhookID, req)
}
