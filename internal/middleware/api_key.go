package middleware

import (
	"context"
	"strings"

	"github.com/questx-lab/taskmaster/pkg/crypto"
	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/router"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
)

const apiKeyHeader = "X-API-Key"

// APIKey only lets through the requests carrying the configured key, either in
// the X-API-Key header or as a bearer token. Every request is rejected when no
// key is configured.
func APIKey() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		expected := xcontext.Configs(ctx).API.APIKey
		if expected == "" {
			return nil, errorx.New(errorx.PermissionDenied, "The admin API is not configured")
		}

		req := xcontext.HTTPRequest(ctx)
		key := req.Header.Get(apiKeyHeader)
		if key == "" {
			auth, token, found := strings.Cut(req.Header.Get("Authorization"), " ")
			if found && auth == "Bearer" {
				key = token
			}
		}

		if key == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to provide an API key")
		}

		if !crypto.EqualString(key, expected) {
			return nil, errorx.New(errorx.PermissionDenied, "Invalid API key")
		}

		return ctx, nil
	}
}
