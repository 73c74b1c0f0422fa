package store

import (
	"context"
	"errors"
	"time"
)

// ErrConflict указывает на конфликт данных в хранилище.
var ErrConflict = errors.New("data conflict")

// ErrNotFound — запись не найдена.
var ErrNotFound = errors.New("not found")

// Store описывает хранилище настроенных подключений навыка.
type Store interface {
	// SaveEntry сохраняет новое подключение
	SaveEntry(ctx context.Context, e Entry) error
	// ListEntries возвращает все подключения в порядке создания
	ListEntries(ctx context.Context) ([]Entry, error)
	// DeleteEntry удаляет подключение по идентификатору
	DeleteEntry(ctx context.Context, id string) error
}

// Entry — подключение навыка: вебхук, по которому платформа присылает запросы.
type Entry struct {
	ID        string
	WebhookID string
	Title     string
	CreatedAt time.Time
}
