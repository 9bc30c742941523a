package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/questx-lab/taskmaster/config"
	"github.com/stretchr/testify/require"
)

func Test_Endpoint_GenerateText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/flash:generateContent", r.URL.Path)
		require.Equal(t, "key", r.URL.Query().Get("key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body["contents"], 1)

		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "Hello "}, {"text": "clan"}]}}]}`))
	}))
	defer server.Close()

	endpoint := New(
		config.AIConfigs{Enable: true, URL: server.URL, APIKey: "key", Model: "flash", Timeout: time.Second, RPS: 10},
		config.RetryConfigs{Attempts: 1},
	)

	text, err := endpoint.GenerateText(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, "Hello clan", text)
}

func Test_Endpoint_GenerateText_Disabled(t *testing.T) {
	endpoint := New(config.AIConfigs{Enable: false}, config.RetryConfigs{})

	_, err := endpoint.GenerateText(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrDisabled)
}

func Test_Endpoint_GenerateText_NoCandidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	endpoint := New(
		config.AIConfigs{Enable: true, URL: server.URL, APIKey: "key", Model: "flash"},
		config.RetryConfigs{Attempts: 1},
	)

	_, err := endpoint.GenerateText(context.Background(), "prompt")
	require.Error(t, err)
}
