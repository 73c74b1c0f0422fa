package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wurt83ow/yandex-dialogs/internal/logger"
	"github.com/wurt83ow/yandex-dialogs/internal/setup"
	"github.com/wurt83ow/yandex-dialogs/internal/store"
	"github.com/wurt83ow/yandex-dialogs/internal/webhook"
	"go.uber.org/zap"
)

// app инкапсулирует в себя все зависимости и логику приложения
type app struct {
	flow     *setup.Flow
	webhooks *webhook.Registry
}

// newApp принимает на вход внешние зависимости приложения и возвращает новый объект app
func newApp(flow *setup.Flow, webhooks *webhook.Registry) *app {
	return &app{flow: flow, webhooks: webhooks}
}

// routes возвращает обработчик всех маршрутов приложения
func (a *app) routes() http.Handler {
	mux := http.NewServeMux()

	// запросы платформы
	mux.Handle(webhook.Pattern, gzipMiddleware(a.webhooks.ServeHTTP))

	// подключение навыка
	mux.HandleFunc("POST /api/config/entries", gzipMiddleware(a.createEntry))
	mux.HandleFunc("GET /api/config/entries", gzipMiddleware(a.listEntries))
	mux.HandleFunc("DELETE /api/config/entries/{entry_id}", a.removeEntry)

	// promhttp сжимает ответ самостоятельно
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", a.healthz)

	// обернём маршруты в middleware с логгированием
	return logger.RequestLogger(mux)
}

func (a *app) createEntry(w http.ResponseWriter, r *http.Request) {
	res, err := a.flow.Create(r.Context())
	if errors.Is(err, setup.ErrSingleInstance) {
		logger.Log.Debug("skill is already connected")
		writeJSON(w, http.StatusConflict, map[string]string{"reason": "single_instance_allowed"})
		return
	}
	if err != nil {
		logger.Log.Debug("cannot create entry", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (a *app) listEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := a.flow.Entries(r.Context())
	if err != nil {
		logger.Log.Debug("cannot load entries", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (a *app) removeEntry(w http.ResponseWriter, r *http.Request) {
	entryID := r.PathValue("entry_id")

	err := a.flow.Remove(r.Context(), entryID)
	if errors.Is(err, store.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Log.Debug("cannot remove entry", zap.String("entry", entryID), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *app) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// сериализуем ответ сервера
	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		logger.Log.Debug("error encoding response", zap.Error(err))
	}
}
