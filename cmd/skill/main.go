// пакеты исполняемых приложений должны называться main
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/wurt83ow/yandex-dialogs/internal/bridge"
	"github.com/wurt83ow/yandex-dialogs/internal/homeassistant"
	"github.com/wurt83ow/yandex-dialogs/internal/intent"
	"github.com/wurt83ow/yandex-dialogs/internal/intent/script"
	"github.com/wurt83ow/yandex-dialogs/internal/logger"
	"github.com/wurt83ow/yandex-dialogs/internal/setup"
	"github.com/wurt83ow/yandex-dialogs/internal/store"
	"github.com/wurt83ow/yandex-dialogs/internal/store/memory"
	"github.com/wurt83ow/yandex-dialogs/internal/store/pg"
	"github.com/wurt83ow/yandex-dialogs/internal/webhook"
	"go.uber.org/zap"
)

func gzipMiddleware(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// по умолчанию устанавливаем оригинальный http.ResponseWriter как тот,
		// который будем передавать следующей функции
		ow := w

		// проверяем, что клиент умеет получать от сервера сжатые данные в формате gzip
		acceptEncoding := r.Header.Get("Accept-Encoding")
		supportsGzip := strings.Contains(acceptEncoding, "gzip")
		if supportsGzip {
			// оборачиваем оригинальный http.ResponseWriter новым с поддержкой сжатия
			cw := newCompressWriter(w)
			// меняем оригинальный http.ResponseWriter на новый
			ow = cw
			// не забываем отправить клиенту все сжатые данные после завершения middleware
			defer cw.Close()
		}

		// проверяем, что клиент отправил серверу сжатые данные в формате gzip
		contentEncoding := r.Header.Get("Content-Encoding")
		sendsGzip := strings.Contains(contentEncoding, "gzip")
		if sendsGzip {
			// оборачиваем тело запроса в io.Reader с поддержкой декомпрессии
			cr, err := newCompressReader(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			// меняем тело запроса на новое
			r.Body = cr
			defer cr.Close()
		}

		// передаём управление хендлеру
		h.ServeHTTP(ow, r)
	}
}

// функция main вызывается автоматически при запуске приложения
func main() {
	parseFlags()

	if err := run(); err != nil {
		panic(err)
	}
}

func run() error {
	if err := logger.Initialize(flagLogLevel); err != nil {
		return err
	}

	// сервер останавливается по SIGINT и SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	entries, closeStore, err := newStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	resolver, err := newResolver()
	if err != nil {
		return err
	}

	webhooks := webhook.NewRegistry()
	flow := setup.NewFlow(entries, webhooks, bridge.New(resolver), flagBaseURL)

	// регистрируем вебхуки подключений, сохранённых при прошлых запусках
	if err := flow.Restore(ctx); err != nil {
		return err
	}

	// создаём экземпляр приложения, передавая ему подключения навыка
	appInstance := newApp(flow, webhooks)

	server := &http.Server{
		Addr:              flagRunAddr,
		Handler:           appInstance.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Log.Info("Running server", zap.String("address", flagRunAddr))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newStore возвращает хранилище подключений: PostgreSQL, если задан адрес СУБД, иначе память процесса
func newStore(ctx context.Context) (store.Store, func() error, error) {
	if flagDatabaseURI == "" {
		logger.Log.Info("database URI is not set, entries are kept in memory")
		return memory.NewStore(), func() error { return nil }, nil
	}

	// создаём соединение к СУБД PostgreSQL с помощью аргумента командной строки
	conn, err := sql.Open("pgx", flagDatabaseURI)
	if err != nil {
		return nil, nil, err
	}

	s := pg.NewStore(conn)
	if err := s.Bootstrap(ctx); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return s, conn.Close, nil
}

// newResolver регистрирует интенты из файла
func newResolver() (*intent.Registry, error) {
	reg := intent.NewRegistry()

	if flagIntentsFile == "" {
		logger.Log.Warn("intents file is not set, no intents are configured")
		return reg, nil
	}

	cfgs, err := script.Load(flagIntentsFile)
	if err != nil {
		return nil, err
	}

	var caller script.ServiceCaller
	if flagHAURL != "" {
		caller = homeassistant.NewClient(flagHAURL, flagHAToken)
	}

	if err := script.RegisterAll(reg, cfgs, caller); err != nil {
		return nil, err
	}
	return reg, nil
}
