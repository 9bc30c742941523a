package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/testutil"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func requestContext(r *http.Request) context.Context {
	ctx := testutil.MockContext()
	ctx = xcontext.WithHTTPRequest(ctx, r)
	ctx = xcontext.WithHTTPWriter(ctx, httptest.NewRecorder())
	return ctx
}

func TestAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		header  map[string]string
		wantErr errorx.Code
	}{
		{
			name:   "header",
			header: map[string]string{"X-API-Key": "secret"},
		},
		{
			name:   "bearer token",
			header: map[string]string{"Authorization": "Bearer secret"},
		},
		{
			name:    "missing key",
			wantErr: errorx.Unauthenticated,
		},
		{
			name:    "wrong key",
			header:  map[string]string{"X-API-Key": "guess"},
			wantErr: errorx.PermissionDenied,
		},
		{
			name:    "basic auth",
			header:  map[string]string{"Authorization": "Basic secret"},
			wantErr: errorx.Unauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/raffles/create", nil)
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}

			_, err := APIKey()(requestContext(r))
			if tt.wantErr != 0 {
				require.True(t, errorx.Is(err, tt.wantErr), "got %v", err)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestAPIKey_NotConfigured(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/raffles/create", nil)
	r.Header.Set("X-API-Key", "")

	ctx := requestContext(r)
	cfg := xcontext.Configs(ctx)
	cfg.API.APIKey = ""
	ctx = xcontext.WithConfigs(ctx, cfg)

	_, err := APIKey()(ctx)
	require.True(t, errorx.Is(err, errorx.PermissionDenied))
}

func TestWithRequestID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	ctx, err := WithRequestID()(requestContext(r))
	require.NoError(t, err)
	require.NotEmpty(t, xcontext.RequestID(ctx))
	require.Equal(t, xcontext.RequestID(ctx), xcontext.HTTPWriter(ctx).Header().Get(requestIDHeader))

	r.Header.Set(requestIDHeader, "abc")
	ctx, err = WithRequestID()(requestContext(r))
	require.NoError(t, err)
	require.Equal(t, "abc", xcontext.RequestID(ctx))
}

func TestErrorCode(t *testing.T) {
	require.Equal(t, 0, errorCode(nil))
	require.Equal(t, int(errorx.NotFound), errorCode(errorx.New(errorx.NotFound, "x")))
	require.Equal(t, -1, errorCode(context.Canceled))
}
