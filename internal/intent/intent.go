// Package intent реализует обработку интентов: реестр обработчиков,
// слоты и ответ с речевым текстом.
package intent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wurt83ow/yandex-dialogs/internal/logger"
	"go.uber.org/zap"
)

var (
	// ErrIntent — общая ошибка обработки интента.
	ErrIntent = errors.New("intent error")
	// ErrUnknownIntent — для интента не зарегистрирован обработчик.
	ErrUnknownIntent = fmt.Errorf("%w: unknown intent", ErrIntent)
	// ErrInvalidSlotInfo — обработчик отверг переданные слоты.
	ErrInvalidSlotInfo = fmt.Errorf("%w: invalid slot info", ErrIntent)
)

// Slot — значение именованного параметра интента.
type Slot struct {
	Value any `json:"value"`
}

// Slots — слоты интента по именам.
type Slots map[string]Slot

// Intent — вызов интента.
type Intent struct {
	// Domain — источник вызова, например yandex_dialogs
	Domain string
	Type   string
	Slots  Slots
}

// Response — результат обработки интента.
type Response struct {
	Speech Speech
}

// NewResponse возвращает пустой ответ.
func NewResponse() *Response {
	return &Response{}
}

// SetSpeech задаёт речевой текст ответа.
func (r *Response) SetSpeech(s Speech) {
	r.Speech = s
}

// Handler обрабатывает интент одного типа.
type Handler interface {
	IntentType() string
	Handle(ctx context.Context, in *Intent) (*Response, error)
}

// Resolver находит обработчик интента и вызывает его.
//
//go:generate mockgen -destination=../mocks/resolver.go -package=mocks github.com/wurt83ow/yandex-dialogs/internal/intent Resolver
type Resolver interface {
	Handle(ctx context.Context, domain, intentType string, slots Slots) (*Response, error)
}

// Registry — потокобезопасный реестр обработчиков интентов.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry возвращает пустой реестр.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register добавляет обработчик. Обработчик того же типа заменяется.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[h.IntentType()]; ok {
		logger.Log.Warn("intent is already registered, overwriting", zap.String("intent", h.IntentType()))
	}
	r.handlers[h.IntentType()] = h
}

// Unregister удаляет обработчик интента.
func (r *Registry) Unregister(intentType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, intentType)
}

// Handle вызывает обработчик интента. Ошибки, не относящиеся к интентам,
// оборачиваются в ErrIntent.
func (r *Registry) Handle(ctx context.Context, domain, intentType string, slots Slots) (*Response, error) {
	r.mu.RLock()
	h, ok := r.handlers[intentType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntent, intentType)
	}

	if slots == nil {
		slots = Slots{}
	}

	logger.Log.Debug("triggering intent handler",
		zap.String("intent", intentType),
		zap.String("domain", domain),
		zap.Int("slots", len(slots)),
	)

	resp, err := h.Handle(ctx, &Intent{Domain: domain, Type: intentType, Slots: slots})
	if err != nil {
		if errors.Is(err, ErrIntent) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: error handling %s: %v", ErrIntent, intentType, err)
	}
	return resp, nil
}
