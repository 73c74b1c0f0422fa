// Package script описывает интенты в конфигурационном файле:
// шаблон речевого ответа и необязательный вызов сервиса умного дома.
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/spf13/viper"
	"github.com/wurt83ow/yandex-dialogs/internal/intent"
	"github.com/wurt83ow/yandex-dialogs/internal/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrNoCaller — в интенте указано действие, но клиент умного дома не настроен.
var ErrNoCaller = errors.New("action requires a service caller")

// ServiceCaller вызывает сервис умного дома.
//
//go:generate mockgen -destination=../../mocks/service_caller.go -package=mocks github.com/wurt83ow/yandex-dialogs/internal/intent/script ServiceCaller
type ServiceCaller interface {
	CallService(ctx context.Context, domain, service string, data map[string]any) error
}

// Config описывает один интент.
type Config struct {
	Name          string   `mapstructure:"name"`
	Speech        string   `mapstructure:"speech"`
	RequiredSlots []string `mapstructure:"required_slots"`
	Action        *Action  `mapstructure:"action"`
}

// Action — вызов сервиса вида domain.service.
// Строковые значения Data вычисляются как шаблоны.
// viper приводит ключи к нижнему регистру, поэтому для YAML и JSON
// Data перечитывается с сохранением регистра ключей, а в остальных
// форматах ключи Data нужно писать строчными буквами.
type Action struct {
	Service string         `mapstructure:"service"`
	Data    map[string]any `mapstructure:"data"`
}

// Load читает интенты из файла. Формат файла определяется по расширению.
func Load(path string) ([]Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading intents: %w", err)
	}

	var file struct {
		Intents []Config `mapstructure:"intents"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("unmarshalling intents: %w", err)
	}

	seen := make(map[string]bool, len(file.Intents))
	for i, cfg := range file.Intents {
		if cfg.Name == "" {
			return nil, fmt.Errorf("intent #%d has no name", i)
		}
		if seen[cfg.Name] {
			return nil, fmt.Errorf("intent %s is defined twice", cfg.Name)
		}
		seen[cfg.Name] = true
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		if err := restoreDataKeys(path, file.Intents); err != nil {
			return nil, err
		}
	}

	logger.Log.Info("loaded intents", zap.String("path", v.ConfigFileUsed()), zap.Int("count", len(file.Intents)))
	return file.Intents, nil
}

// restoreDataKeys заменяет Action.Data значениями из файла с исходным регистром ключей.
// JSON — подмножество YAML, поэтому оба формата читаются одним декодером.
func restoreDataKeys(path string, cfgs []Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading intents: %w", err)
	}

	var file struct {
		Intents []struct {
			Action *struct {
				Data map[string]any `yaml:"data"`
			} `yaml:"action"`
		} `yaml:"intents"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("unmarshalling intents: %w", err)
	}
	// viper сохраняет порядок списка, поэтому интенты сопоставляются по индексу
	if len(file.Intents) != len(cfgs) {
		return errors.New("intents file changed while loading")
	}

	for i := range cfgs {
		if cfgs[i].Action == nil || file.Intents[i].Action == nil {
			continue
		}
		cfgs[i].Action.Data = file.Intents[i].Action.Data
	}
	return nil
}

// RegisterAll создаёт обработчики для всех интентов и регистрирует их.
func RegisterAll(reg *intent.Registry, cfgs []Config, caller ServiceCaller) error {
	for _, cfg := range cfgs {
		h, err := New(cfg, caller)
		if err != nil {
			return err
		}
		reg.Register(h)
	}
	return nil
}

// templateData — данные, доступные в шаблонах.
type templateData struct {
	Slots intent.Slots
}

// Slot возвращает значение слота или пустую строку, если слота нет.
func (d templateData) Slot(name string) any {
	s, ok := d.Slots[name]
	if !ok || s.Value == nil {
		return ""
	}
	return s.Value
}

// Handler обрабатывает интент, описанный в конфигурации.
type Handler struct {
	cfg     Config
	speech  *template.Template
	domain  string
	service string
	// data — Action.Data, в которой строки заменены на шаблоны
	data   map[string]any
	caller ServiceCaller
}

// New компилирует шаблоны интента.
func New(cfg Config, caller ServiceCaller) (*Handler, error) {
	h := &Handler{cfg: cfg, caller: caller}

	if cfg.Speech != "" {
		tmpl, err := parse(cfg.Name, cfg.Speech)
		if err != nil {
			return nil, fmt.Errorf("intent %s: speech: %w", cfg.Name, err)
		}
		h.speech = tmpl
	}

	if cfg.Action != nil {
		if caller == nil {
			return nil, fmt.Errorf("intent %s: %w", cfg.Name, ErrNoCaller)
		}
		domain, service, ok := strings.Cut(cfg.Action.Service, ".")
		if !ok || domain == "" || service == "" {
			return nil, fmt.Errorf("intent %s: invalid service %q", cfg.Name, cfg.Action.Service)
		}
		h.domain, h.service = domain, service

		data, err := compile(cfg.Name, cfg.Action.Data)
		if err != nil {
			return nil, fmt.Errorf("intent %s: action data: %w", cfg.Name, err)
		}
		h.data, _ = data.(map[string]any)
	}

	return h, nil
}

func (h *Handler) IntentType() string {
	return h.cfg.Name
}

func (h *Handler) Handle(ctx context.Context, in *intent.Intent) (*intent.Response, error) {
	for _, name := range h.cfg.RequiredSlots {
		if _, ok := in.Slots[name]; !ok {
			return nil, fmt.Errorf("%w: slot %s is required by %s", intent.ErrInvalidSlotInfo, name, h.cfg.Name)
		}
	}

	data := templateData{Slots: in.Slots}

	if h.cfg.Action != nil {
		payload, err := render(h.data, data)
		if err != nil {
			return nil, fmt.Errorf("rendering service data: %w", err)
		}
		m, _ := payload.(map[string]any)
		if m == nil {
			m = map[string]any{}
		}
		if err := h.caller.CallService(ctx, h.domain, h.service, m); err != nil {
			return nil, fmt.Errorf("calling %s: %w", h.cfg.Action.Service, err)
		}
	}

	resp := intent.NewResponse()
	if h.speech != nil {
		resp.SetSpeech(intent.NewTemplate(h.speech, data))
	}
	return resp, nil
}

func parse(name, text string) (*template.Template, error) {
	return template.New(name).Option("missingkey=zero").Parse(text)
}

// compile заменяет строки во вложенной структуре на шаблоны.
func compile(name string, v any) (any, error) {
	switch t := v.(type) {
	case string:
		return parse(name, t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			c, err := compile(name, val)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = c
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			c, err := compile(name, val)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	default:
		return v, nil
	}
}

// render вычисляет шаблоны, подготовленные compile.
func render(v any, data templateData) (any, error) {
	switch t := v.(type) {
	case *template.Template:
		return intent.NewTemplate(t, data).PlainText()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			r, err := render(val, data)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			r, err := render(val, data)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return v, nil
	}
}
