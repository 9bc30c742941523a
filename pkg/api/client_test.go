package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Client_FallbackDomain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/competitions/7", r.URL.Path)
		require.Equal(t, "week", r.URL.Query().Get("period"))
		require.Equal(t, "Bot token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id": 7, "player": {"displayName": "Zezima"}, "items": [{"a": 1}]}`))
	}))
	defer server.Close()

	// The first domain is unreachable, the client must fall back to the second one.
	generator := NewGenerator("http://127.0.0.1:1", server.URL)
	resp, err := generator.New("/competitions/%d", 7).
		Query(Parameter{"period": "week"}).
		GET(context.Background(), OAuth2("Bot", "token"))
	require.NoError(t, err)
	require.True(t, resp.IsSuccess())

	body, err := resp.JSON()
	require.NoError(t, err)

	id, err := body.GetInt("id")
	require.NoError(t, err)
	require.Equal(t, int64(7), id)

	name, err := body.GetString("player.displayName")
	require.NoError(t, err)
	require.Equal(t, "Zezima", name)

	items, err := body.GetArray("items")
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func Test_Client_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "hello", body["text"])

		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`[{"x": 1}]`))
	}))
	defer server.Close()

	resp, err := NewGenerator(server.URL).New("/post").Body(JSON{"text": "hello"}).POST(context.Background())
	require.NoError(t, err)
	require.False(t, resp.IsSuccess())
	require.Equal(t, http.StatusTooManyRequests, resp.Code)

	_, ok := resp.Body.(Array)
	require.True(t, ok)
}
