package bridge

import (
	"github.com/wurt83ow/yandex-dialogs/internal/intent"
	"github.com/wurt83ow/yandex-dialogs/internal/models"
)

// ResponseBuilder собирает ответ платформе на основе запроса.
// version и session копируются из запроса без изменений:
// по ним платформа продолжает сессию.
type ResponseBuilder struct {
	req  *models.Request
	resp models.Response
}

func NewResponseBuilder(req *models.Request) *ResponseBuilder {
	return &ResponseBuilder{
		req: req,
		resp: models.Response{
			Version: req.Version,
			Session: req.Session,
			Response: models.ResponsePayload{
				EndSession: false,
			},
		},
	}
}

// SetSpeech вычисляет речевой текст и добавляет его в ответ.
func (b *ResponseBuilder) SetSpeech(s intent.Speech) error {
	if s == nil {
		b.resp.Response.Text = ""
		return nil
	}
	text, err := s.PlainText()
	if err != nil {
		return Errorf("cannot render speech: %v", err)
	}
	b.resp.Response.Text = text
	return nil
}

// IsNew сообщает, что запрос открывает новую сессию.
func (b *ResponseBuilder) IsNew() bool {
	return b.req.IsNewSession()
}

// Response возвращает копию собранного ответа.
func (b *ResponseBuilder) Response() *models.Response {
	resp := b.resp
	return &resp
}
