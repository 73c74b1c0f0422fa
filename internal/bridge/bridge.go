// Package bridge связывает навык Яндекс Диалогов с обработкой интентов:
// запрос платформы превращается в вызов интента, а ответ интента —
// в ответ платформе.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wurt83ow/yandex-dialogs/internal/intent"
	"github.com/wurt83ow/yandex-dialogs/internal/logger"
	"github.com/wurt83ow/yandex-dialogs/internal/metrics"
	"github.com/wurt83ow/yandex-dialogs/internal/models"
	"github.com/wurt83ow/yandex-dialogs/internal/webhook"
	"go.uber.org/zap"
)

const (
	// Domain — источник, от имени которого вызываются интенты.
	Domain = "yandex_dialogs"
	// Name — название вебхука навыка.
	Name = "YandexDialogs"

	WelcomeIntent = "Welcome"
	DefaultIntent = "Default"

	// платформа ограничивает размер запроса, больший объём не ожидается
	maxBodySize = 1 << 20
)

// Bridge обрабатывает запросы платформы.
// Состояния между запросами нет, поэтому Bridge безопасен для конкурентного использования.
type Bridge struct {
	resolver intent.Resolver
}

// New принимает на вход обработчик интентов и возвращает новый Bridge.
func New(resolver intent.Resolver) *Bridge {
	return &Bridge{resolver: resolver}
}

// HandleWebhook — обработчик вебхука навыка.
func (b *Bridge) HandleWebhook(ctx context.Context, _ string, r *http.Request) (*webhook.Response, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("cannot read request body: %w", err)
	}

	resp, err := b.Handle(ctx, body)
	if err != nil {
		return nil, err
	}
	// интент ничего не ответил
	if resp == nil {
		return webhook.Empty(), nil
	}
	return webhook.JSON(resp)
}

// Handle обрабатывает тело запроса платформы. Известные ошибки интентов
// превращаются в речевой ответ, остальные возвращаются вызывающему коду.
// Пустой ответ без ошибки означает, что интент ничего не вернул.
func (b *Bridge) Handle(ctx context.Context, body []byte) (*models.Response, error) {
	req, err := models.Parse(body)
	if err != nil {
		logger.Log.Debug("cannot decode request JSON body", zap.Error(err))
		return nil, err
	}

	logger.Log.Debug("received Yandex Dialogs request", zap.ByteString("body", body))

	name, known, resp, err := b.handleMessage(ctx, req)
	label := name
	if !known {
		label = metrics.IntentUnknown
	}

	if err != nil {
		kind := Classify(err)
		if kind == KindNone {
			return nil, err
		}
		logger.Log.Warn(err.Error(), zap.String("intent", name), zap.Stringer("kind", kind))
		metrics.RequestsTotal.WithLabelValues(label, kind.String()).Inc()
		return errorResponse(req, speechFor(kind, err)), nil
	}

	outcome := metrics.OutcomeOK
	if resp == nil {
		outcome = metrics.OutcomeEmpty
	}
	metrics.RequestsTotal.WithLabelValues(label, outcome).Inc()
	return resp, nil
}

// handleMessage вызывает интент запроса и собирает ответ из его речевого текста.
// known сообщает, что интент нашёлся среди обработчиков.
func (b *Bridge) handleMessage(ctx context.Context, req *models.Request) (name string, known bool, resp *models.Response, err error) {
	builder := NewResponseBuilder(req)

	name, slots, err := resolveIntent(req)
	if err != nil {
		return name, false, nil, err
	}

	// первый запрос сессии без явного интента — приветствие
	if builder.IsNew() && name == DefaultIntent {
		name = WelcomeIntent
	}

	start := time.Now()
	intentResp, err := b.resolver.Handle(ctx, Domain, name, slots)
	metrics.IntentDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return name, !errors.Is(err, intent.ErrUnknownIntent), nil, err
	}
	if intentResp == nil {
		return name, true, nil, nil
	}

	if err := builder.SetSpeech(intentResp.Speech); err != nil {
		return name, true, nil, err
	}
	return name, true, builder.Response(), nil
}

// resolveIntent возвращает первый интент запроса и его слоты.
// Если интентов нет, возвращается DefaultIntent без слотов.
func resolveIntent(req *models.Request) (string, intent.Slots, error) {
	it, ok := req.Request.NLU.Intents.First()
	if !ok {
		return DefaultIntent, intent.Slots{}, nil
	}

	slots := make(intent.Slots, len(it.Slots))
	for name, s := range it.Slots {
		if len(s.Value) == 0 {
			return it.Name, nil, Errorf("slot %s of intent %s has no value", name, it.Name)
		}
		value, err := decodeValue(s.Value)
		if err != nil {
			return it.Name, nil, Errorf("cannot decode slot %s of intent %s: %v", name, it.Name, err)
		}
		slots[name] = intent.Slot{Value: value}
	}
	return it.Name, slots, nil
}

// decodeValue разбирает значение слота, не меняя представление чисел.
func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// errorResponse возвращает ответ, в котором произносится текст ошибки.
func errorResponse(req *models.Request, text string) *models.Response {
	builder := NewResponseBuilder(req)
	// Plain вычисляется без ошибок
	_ = builder.SetSpeech(intent.Plain(text))
	return builder.Response()
}
