package intent

import (
	"strings"
	"text/template"
)

// Speech — текст, который можно произнести.
type Speech interface {
	// PlainText возвращает итоговый текст без разметки.
	PlainText() (string, error)
}

// Plain — готовый текст.
type Plain string

func (p Plain) PlainText() (string, error) {
	return string(p), nil
}

// Template — отложенный текст, который вычисляется из шаблона при чтении.
type Template struct {
	tmpl *template.Template
	data any
}

// NewTemplate связывает шаблон с данными для его вычисления.
func NewTemplate(tmpl *template.Template, data any) Template {
	return Template{tmpl: tmpl, data: data}
}

func (t Template) PlainText() (string, error) {
	var sb strings.Builder
	if err := t.tmpl.Execute(&sb, t.data); err != nil {
		return "", err
	}
	return strings.TrimSpace(sb.String()), nil
}
