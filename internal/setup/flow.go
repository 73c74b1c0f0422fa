// Package setup подключает навык: создаёт вебхук, сохраняет подключение
// и регистрирует обработчик навыка при старте и удаляет его при отключении.
package setup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wurt83ow/yandex-dialogs/internal/bridge"
	"github.com/wurt83ow/yandex-dialogs/internal/logger"
	"github.com/wurt83ow/yandex-dialogs/internal/store"
	"github.com/wurt83ow/yandex-dialogs/internal/webhook"
	"go.uber.org/zap"
)

const (
	Title = "YandexDialogs Webhook"

	// ссылки на документацию, которые показываются после подключения
	YandexDialogsURL = "https://yandex.ru/dev/dialogs/alice/doc/protocol-docpage/"
	DocsURL          = "https://github.com/lukich48/"
)

// ErrSingleInstance — навык уже подключён.
var ErrSingleInstance = errors.New("only one instance is allowed")

// Result описывает подключение навыка.
type Result struct {
	EntryID    string            `json:"entry_id"`
	Title      string            `json:"title"`
	WebhookURL string            `json:"webhook_url"`
	Links      map[string]string `json:"links"`
}

// Flow управляет подключениями навыка.
type Flow struct {
	// mu не даёт двум одновременным подключениям пройти проверку единственности
	mu       sync.Mutex
	store    store.Store
	webhooks *webhook.Registry
	bridge   *bridge.Bridge
	baseURL  string
}

// NewFlow принимает на вход внешние зависимости и возвращает новый Flow.
func NewFlow(s store.Store, webhooks *webhook.Registry, b *bridge.Bridge, baseURL string) *Flow {
	return &Flow{
		store:    s,
		webhooks: webhooks,
		bridge:   b,
		baseURL:  baseURL,
	}
}

// Create подключает навык: создаёт вебхук и регистрирует его обработчик.
func (f *Flow) Create(ctx context.Context) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.store.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		return nil, ErrSingleInstance
	}

	e := store.Entry{
		ID:        newID(),
		WebhookID: newID(),
		Title:     Title,
		CreatedAt: time.Now(),
	}
	if err := f.store.SaveEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("cannot save entry: %w", err)
	}

	if err := f.SetupEntry(e); err != nil {
		// без обработчика подключение бесполезно
		if delErr := f.store.DeleteEntry(ctx, e.ID); delErr != nil {
			logger.Log.Error("cannot delete entry", zap.String("entry", e.ID), zap.Error(delErr))
		}
		return nil, err
	}

	logger.Log.Info("skill connected", zap.String("entry", e.ID))
	return f.result(e), nil
}

// SetupEntry регистрирует обработчик вебхука подключения.
func (f *Flow) SetupEntry(e store.Entry) error {
	return f.webhooks.Register(bridge.Domain, bridge.Name, e.WebhookID, f.bridge.HandleWebhook)
}

// UnloadEntry снимает обработчик вебхука подключения.
func (f *Flow) UnloadEntry(e store.Entry) {
	f.webhooks.Unregister(e.WebhookID)
}

// Restore регистрирует обработчики всех сохранённых подключений.
func (f *Flow) Restore(ctx context.Context) error {
	entries, err := f.store.ListEntries(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := f.SetupEntry(e); err != nil {
			return err
		}
	}
	logger.Log.Info("entries restored", zap.Int("count", len(entries)))
	return nil
}

// Entries возвращает все подключения.
func (f *Flow) Entries(ctx context.Context) ([]*Result, error) {
	entries, err := f.store.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]*Result, 0, len(entries))
	for _, e := range entries {
		results = append(results, f.result(e))
	}
	return results, nil
}

// Remove отключает навык и удаляет подключение.
func (f *Flow) Remove(ctx context.Context, entryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.store.ListEntries(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.ID != entryID {
			continue
		}
		// обработчик снимается только после удаления: иначе сохранённое
		// подключение осталось бы без обработчика до перезапуска
		if err := f.store.DeleteEntry(ctx, e.ID); err != nil {
			return err
		}
		f.UnloadEntry(e)
		logger.Log.Info("skill disconnected", zap.String("entry", e.ID))
		return nil
	}
	return store.ErrNotFound
}

func (f *Flow) result(e store.Entry) *Result {
	return &Result{
		EntryID:    e.ID,
		Title:      e.Title,
		WebhookURL: webhook.URL(f.baseURL, e.WebhookID),
		Links: map[string]string{
			"yandexdialogs_url": YandexDialogsURL,
			"docs_url":          DocsURL,
		},
	}
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
