package bridge

import (
	"errors"
	"fmt"

	"github.com/wurt83ow/yandex-dialogs/internal/intent"
)

// ErrorKind — вид ошибки, которую навык превращает в речевой ответ.
type ErrorKind int

const (
	// KindNone — ошибка не распознана и передаётся вызывающему коду.
	KindNone ErrorKind = iota
	KindBridge
	KindUnknownIntent
	KindInvalidSlotInfo
	KindIntent
)

func (k ErrorKind) String() string {
	switch k {
	case KindBridge:
		return "bridge_error"
	case KindUnknownIntent:
		return "unknown_intent"
	case KindInvalidSlotInfo:
		return "invalid_slot_info"
	case KindIntent:
		return "intent_error"
	default:
		return "none"
	}
}

// errorTexts — тексты, которые произносятся вместо ошибки.
// Для KindBridge произносится сам текст ошибки.
var errorTexts = map[ErrorKind]string{
	KindUnknownIntent:   "This intent is not yet configured within Home Assistant.",
	KindInvalidSlotInfo: "Invalid slot information received for this intent.",
	KindIntent:          "Error handling intent.",
}

// Error — ошибка самого навыка, например при некорректной структуре запроса.
type Error struct {
	msg string
}

func (e *Error) Error() string {
	return e.msg
}

// Errorf форматирует ошибку навыка.
func Errorf(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Classify определяет вид ошибки. Частные ошибки интентов проверяются
// раньше общей, так как оборачивают её.
func Classify(err error) ErrorKind {
	var be *Error
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &be):
		return KindBridge
	case errors.Is(err, intent.ErrUnknownIntent):
		return KindUnknownIntent
	case errors.Is(err, intent.ErrInvalidSlotInfo):
		return KindInvalidSlotInfo
	case errors.Is(err, intent.ErrIntent):
		return KindIntent
	default:
		return KindNone
	}
}

// speechFor возвращает текст, который нужно произнести вместо ошибки.
func speechFor(kind ErrorKind, err error) string {
	if text, ok := errorTexts[kind]; ok {
		return text
	}
	var be *Error
	if errors.As(err, &be) {
		return be.msg
	}
	return err.Error()
}
