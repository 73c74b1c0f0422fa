package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wurt83ow/yandex-dialogs/internal/store"
)

// Store реализует интерфейс store.Store и позволяет взаимодействовать с СУБД PostgreSQL.
type Store struct {
	// Поле conn содержит объект соединения с СУБД.
	conn *sql.DB
}

// NewStore возвращает новый экземпляр PostgreSQL хранилища
func NewStore(conn *sql.DB) *Store {
	return &Store{conn: conn}
}

// Bootstrap подготавливает БД к работе, создавая необходимые таблицы и индексы
func (s Store) Bootstrap(ctx context.Context) error {
	// запускаем транзакцию
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// в случае неуспешного коммита все изменения транзакции будут отменены
	defer tx.Rollback()

	// создаём таблицу подключений
	_, err = tx.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS config_entries (
            id varchar(64) PRIMARY KEY,
            webhook_id varchar(128) NOT NULL,
            title varchar(128),
            created_at timestamp with time zone NOT NULL
        )
    `)
	if err != nil {
		return err
	}

	// идентификатор вебхука не может повторяться
	_, err = tx.ExecContext(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS webhook_idx ON config_entries (webhook_id)`)
	if err != nil {
		return err
	}

	// коммитим транзакцию
	return tx.Commit()
}

func (s Store) SaveEntry(ctx context.Context, e store.Entry) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	// добавляем новую запись подключения
	_, err := s.conn.ExecContext(ctx, `
        INSERT INTO config_entries
        (id, webhook_id, title, created_at)
        VALUES
        ($1, $2, $3, $4);
    `, e.ID, e.WebhookID, e.Title, createdAt)

	if err != nil {
		// проверяем, что ошибка сигнализирует о потенциальном нарушении целостности данных
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			err = store.ErrConflict
		}
	}

	return err
}

func (s Store) ListEntries(ctx context.Context) ([]store.Entry, error) {
	rows, err := s.conn.QueryContext(ctx, `
        SELECT id, webhook_id, title, created_at
        FROM config_entries
        ORDER BY created_at
    `)
	if err != nil {
		return nil, err
	}
	// не забываем закрыть курсор после завершения работы с данными
	defer rows.Close()

	// считываем записи в слайс подключений
	var entries []store.Entry
	for rows.Next() {
		var e store.Entry
		if err := rows.Scan(&e.ID, &e.WebhookID, &e.Title, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	// необходимо проверить ошибки уровня курсора
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (s Store) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM config_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
