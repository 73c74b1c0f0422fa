package main

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wurt83ow/yandex-dialogs/internal/bridge"
	"github.com/wurt83ow/yandex-dialogs/internal/intent"
	"github.com/wurt83ow/yandex-dialogs/internal/intent/script"
	"github.com/wurt83ow/yandex-dialogs/internal/setup"
	"github.com/wurt83ow/yandex-dialogs/internal/store/memory"
	"github.com/wurt83ow/yandex-dialogs/internal/webhook"
)

const welcomeRequest = `{
	"meta": {"locale": "ru-RU", "timezone": "Europe/Moscow"},
	"request": {"command": "", "type": "SimpleUtterance", "nlu": {"tokens": [], "intents": {}}},
	"session": {"message_id": 0, "session_id": "s1", "new": true},
	"version": "1.0"
}`

const welcomeResponse = `{
	"version": "1.0",
	"session": {"message_id": 0, "session_id": "s1", "new": true},
	"response": {"end_session": false, "text": "Привет!"}
}`

// newTestServer запускает приложение с интентом Welcome
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	reg := intent.NewRegistry()
	require.NoError(t, script.RegisterAll(reg, []script.Config{{Name: bridge.WelcomeIntent, Speech: "Привет!"}}, nil))

	// адрес сервера известен только после запуска, поэтому обработчик подставляется позже
	var handler http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	webhooks := webhook.NewRegistry()
	flow := setup.NewFlow(memory.NewStore(), webhooks, bridge.New(reg), srv.URL)
	handler = newApp(flow, webhooks).routes()
	return srv
}

func TestWebhookFlow(t *testing.T) {
	srv := newTestServer(t)
	client := resty.New()

	// подключаем навык
	var res setup.Result
	resp, err := client.R().SetResult(&res).Post(srv.URL + "/api/config/entries")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())
	assert.Equal(t, setup.DocsURL, res.Links["docs_url"])
	assert.Equal(t, setup.YandexDialogsURL, res.Links["yandexdialogs_url"])

	// второе подключение запрещено
	resp, err = client.R().Post(srv.URL + "/api/config/entries")
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode())

	// запрос платформы
	resp, err = client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(welcomeRequest).
		Post(res.WebhookURL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.JSONEq(t, welcomeResponse, resp.String())

	// список подключений
	var entries []setup.Result
	resp, err = client.R().SetResult(&entries).Get(srv.URL + "/api/config/entries")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Len(t, entries, 1)
	assert.Equal(t, res.WebhookURL, entries[0].WebhookURL)

	// отключаем навык
	resp, err = client.R().Delete(srv.URL + "/api/config/entries/" + res.EntryID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())

	resp, err = client.R().Delete(srv.URL + "/api/config/entries/" + res.EntryID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())

	// вебхук больше не обрабатывается
	resp, err = client.R().SetBody(welcomeRequest).Post(res.WebhookURL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Empty(t, resp.Body())
}

func TestWebhookGzip(t *testing.T) {
	srv := newTestServer(t)

	var res setup.Result
	resp, err := resty.New().R().SetResult(&res).Post(srv.URL + "/api/config/entries")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())

	var buf bytes.Buffer
	zb := gzip.NewWriter(&buf)
	_, err = zb.Write([]byte(welcomeRequest))
	require.NoError(t, err)
	require.NoError(t, zb.Close())

	// тело запроса сжато, ответ принимаем сжатым
	req, err := http.NewRequest(http.MethodPost, res.WebhookURL, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Accept-Encoding", "gzip")

	httpResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer httpResp.Body.Close()

	require.Equal(t, http.StatusOK, httpResp.StatusCode)
	require.Equal(t, "gzip", httpResp.Header.Get("Content-Encoding"))

	zr, err := gzip.NewReader(httpResp.Body)
	require.NoError(t, err)
	var body bytes.Buffer
	_, err = body.ReadFrom(zr)
	require.NoError(t, err)
	assert.JSONEq(t, welcomeResponse, body.String())
}

func TestServiceEndpoints(t *testing.T) {
	srv := newTestServer(t)
	client := resty.New()

	resp, err := client.R().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.JSONEq(t, `{"status": "ok"}`, resp.String())

	resp, err = client.R().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Contains(t, resp.String(), "yandex_dialogs_intent_duration_seconds")
}
