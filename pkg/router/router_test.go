package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/testutil"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name  string `json:"name" form:"name"`
	Count int    `json:"count" form:"count"`
}

type echoResponse struct {
	Greeting string `json:"greeting"`
}

type traceKey struct{}

func echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.NotFound, "Not found name")
	}

	trace, _ := ctx.Value(traceKey{}).(string)
	return &echoResponse{Greeting: strings.Repeat("hi ", req.Count) + req.Name + trace}, nil
}

func serve(t *testing.T, r *Router, method, target, body string) (int, response) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestRouter(t *testing.T) {
	r := New(testutil.MockContext())

	var closed []error
	r.AddCloser(func(ctx context.Context) {
		require.NotNil(t, xcontext.HTTPRequest(ctx))
		closed = append(closed, xcontext.Error(ctx))
	})

	GET(r, "/echo", echo)
	POST(r, "/echo", echo)

	traced := r.Branch()
	traced.Before(func(ctx context.Context) (context.Context, error) {
		if xcontext.HTTPRequest(ctx).Header.Get("X-Deny") != "" {
			return nil, errorx.New(errorx.PermissionDenied, "Denied")
		}

		return context.WithValue(ctx, traceKey{}, "!"), nil
	})
	POST(traced, "/traced", echo)

	code, resp := serve(t, r, http.MethodGet, "/echo?name=bob&count=2", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, int64(0), resp.Code)
	require.Equal(t, map[string]any{"greeting": "hi hi bob"}, resp.Data)

	code, resp = serve(t, r, http.MethodPost, "/echo", `{"name":"alice"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, map[string]any{"greeting": "alice"}, resp.Data)

	code, resp = serve(t, r, http.MethodPost, "/echo", `{}`)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, int64(errorx.NotFound), resp.Code)
	require.Equal(t, "Not found name", resp.Error)

	code, resp = serve(t, r, http.MethodPost, "/echo", `{"count":"many"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, int64(errorx.BadRequest), resp.Code)

	code, resp = serve(t, traced, http.MethodPost, "/traced", `{"name":"carol"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, map[string]any{"greeting": "carol!"}, resp.Data)

	req := httptest.NewRequest(http.MethodPost, "/traced", strings.NewReader(`{"name":"carol"}`))
	req.Header.Set("X-Deny", "1")
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	// The branch inherits the closer of its parent.
	require.Len(t, closed, 6)
	require.NoError(t, closed[0])
	require.True(t, errorx.Is(closed[2], errorx.NotFound))
	require.True(t, errorx.Is(closed[5], errorx.PermissionDenied))
}

func TestStatusCode(t *testing.T) {
	require.Equal(t, http.StatusConflict, StatusCode(errorx.EntryCapReached))
	require.Equal(t, http.StatusConflict, StatusCode(errorx.InsufficientPoints))
	require.Equal(t, http.StatusServiceUnavailable, StatusCode(errorx.Unavailable))
	require.Equal(t, http.StatusInternalServerError, StatusCode(errorx.Unknown.Code))
}
