package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	TypeSimpleUtterance = "SimpleUtterance"
	TypeButtonPressed   = "ButtonPressed"
)

var (
	ErrNoVersion = errors.New("request has no version")
	ErrNoSession = errors.New("request has no session")
)

// Request описывает запрос платформы Яндекс Диалоги.
// См. https://yandex.ru/dev/dialogs/alice/doc/request.html
type Request struct {
	Meta    Meta    `json:"meta"`
	Request Payload `json:"request"`
	// Session и Version возвращаются платформе без изменений,
	// поэтому хранятся в исходном виде
	Session json.RawMessage `json:"session"`
	Version json.RawMessage `json:"version"`
}

// Meta содержит сведения об устройстве пользователя.
type Meta struct {
	Locale   string `json:"locale"`
	Timezone string `json:"timezone"`
	ClientID string `json:"client_id"`
}

// Payload описывает реплику пользователя.
type Payload struct {
	Type              string `json:"type"`
	Command           string `json:"command"`
	OriginalUtterance string `json:"original_utterance"`
	NLU               NLU    `json:"nlu"`
}

// NLU содержит результат разбора реплики на стороне платформы.
type NLU struct {
	Tokens  []string `json:"tokens"`
	Intents Intents  `json:"intents"`
}

// Intent — распознанный интент со слотами.
type Intent struct {
	Name  string          `json:"-"`
	Slots map[string]Slot `json:"slots"`
}

// Slot — именованный параметр интента.
// Значение слота хранится в исходном JSON: его тип зависит от типа слота.
type Slot struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Intents — интенты в порядке их следования в запросе.
// Обычный map потерял бы этот порядок.
type Intents []Intent

// UnmarshalJSON разбирает объект intents, сохраняя порядок ключей.
func (in *Intents) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*in = nil
		return nil
	}
	// пустой объект некоторые клиенты сериализуют как [],
	// массив интентов не несёт имён, поэтому считается отсутствием интентов
	if delim, ok := tok.(json.Delim); ok && delim == '[' {
		*in = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("intents: expected object, got %v", tok)
	}

	var intents Intents
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var it Intent
		if err := dec.Decode(&it); err != nil {
			return fmt.Errorf("intent %q: %w", name, err)
		}
		it.Name = name
		intents = append(intents, it)
	}

	// закрывающая скобка объекта
	if _, err := dec.Token(); err != nil {
		return err
	}

	*in = intents
	return nil
}

// First возвращает первый интент запроса.
func (in Intents) First() (Intent, bool) {
	if len(in) == 0 {
		return Intent{}, false
	}
	return in[0], true
}

// Parse разбирает тело запроса и проверяет наличие полей,
// без которых невозможно сформировать ответ.
func Parse(body []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}
	if isNull(req.Version) {
		return nil, ErrNoVersion
	}
	if isNull(req.Session) {
		return nil, ErrNoSession
	}
	// session обязан быть объектом, иначе не удастся прочитать флаг new
	if _, err := req.sessionFields(); err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}
	return &req, nil
}

// IsNewSession сообщает, является ли запрос первым в сессии.
// Отсутствующее или ложное значение new означает продолжение сессии.
func (r *Request) IsNewSession() bool {
	fields, err := r.sessionFields()
	if err != nil {
		return false
	}
	return truthy(fields["new"])
}

func (r *Request) sessionFields() (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(r.Session, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, ErrNoSession
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case nil:
		return false
	default:
		return true
	}
}

// Response описывает ответ сервера.
// См. https://yandex.ru/dev/dialogs/alice/doc/response.html
type Response struct {
	Version  json.RawMessage `json:"version"`
	Session  json.RawMessage `json:"session"`
	Response ResponsePayload `json:"response"`
}

// ResponsePayload описывает ответ, который нужно озвучить.
type ResponsePayload struct {
	EndSession bool   `json:"end_session"`
	Text       string `json:"text"`
}
