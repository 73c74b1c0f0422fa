package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	body := `{
		"meta": {"locale": "ru-RU", "timezone": "Europe/Moscow"},
		"request": {
			"type": "SimpleUtterance",
			"command": "погода в москве",
			"nlu": {
				"tokens": ["погода", "в", "москве"],
				"intents": {
					"weather": {"slots": {"city": {"type": "YANDEX.GEO", "value": "Moscow"}}},
					"alarm": {"slots": {}}
				}
			}
		},
		"session": {"new": true, "session_id": "abc"},
		"version": "1.0"
	}`

	req, err := Parse([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "Europe/Moscow", req.Meta.Timezone)
	assert.Equal(t, TypeSimpleUtterance, req.Request.Type)
	assert.True(t, req.IsNewSession())
	assert.JSONEq(t, `"1.0"`, string(req.Version))

	require.Len(t, req.Request.NLU.Intents, 2)
	first, ok := req.Request.NLU.Intents.First()
	require.True(t, ok)
	assert.Equal(t, "weather", first.Name)
	assert.Equal(t, "YANDEX.GEO", first.Slots["city"].Type)
	assert.JSONEq(t, `"Moscow"`, string(first.Slots["city"].Value))
	assert.Equal(t, "alarm", req.Request.NLU.Intents[1].Name)
}

func TestIntentsKeepOrder(t *testing.T) {
	var in Intents
	require.NoError(t, json.Unmarshal([]byte(`{"z": {}, "a": {}, "m": {}}`), &in))

	names := make([]string, 0, len(in))
	for _, it := range in {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"z", "a", "m"}, names)
}

func TestIntentsEmpty(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "null", body: `null`},
		{name: "empty object", body: `{}`},
		{name: "empty array", body: `[]`},
		{name: "array", body: `["weather"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in Intents
			require.NoError(t, json.Unmarshal([]byte(tt.body), &in))
			_, ok := in.First()
			assert.False(t, ok)
		})
	}
}

func TestIntentsNotObject(t *testing.T) {
	for _, body := range []string{`"weather"`, `1`, `true`} {
		var in Intents
		assert.Error(t, json.Unmarshal([]byte(body), &in), body)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{name: "no version", body: `{"session": {"new": false}}`, want: ErrNoVersion},
		{name: "null version", body: `{"version": null, "session": {}}`, want: ErrNoVersion},
		{name: "no session", body: `{"version": "1.0"}`, want: ErrNoSession},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Parse([]byte(`{"version": "1.0", "session": "abc"}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{not json`))
	assert.Error(t, err)
}

func TestIsNewSession(t *testing.T) {
	tests := []struct {
		session string
		want    bool
	}{
		{session: `{"new": true}`, want: true},
		{session: `{"new": false}`, want: false},
		{session: `{}`, want: false},
		{session: `{"new": null}`, want: false},
		{session: `{"new": 1}`, want: true},
		{session: `{"new": ""}`, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.session, func(t *testing.T) {
			req := &Request{Session: json.RawMessage(tt.session)}
			assert.Equal(t, tt.want, req.IsNewSession())
		})
	}
}
