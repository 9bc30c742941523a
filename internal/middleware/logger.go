package middleware

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/questx-lab/taskmaster/pkg/router"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
)

const requestIDHeader = "X-Request-ID"

// WithRequestID tags the logger of the request with the id sent by the caller,
// or a new one.
func WithRequestID() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		id := xcontext.HTTPRequest(ctx).Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		if w := xcontext.HTTPWriter(ctx); w != nil {
			w.Header().Set(requestIDHeader, id)
		}

		ctx = xcontext.WithRequestID(ctx, id)
		ctx = xcontext.WithLogger(ctx, xcontext.Logger(ctx).With("request_id", id))
		return ctx, nil
	}
}

func Logger() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		info := fmt.Sprintf("%s | %s", req.Method, req.URL.Path)

		err := xcontext.Error(ctx)
		switch code := errorCode(err); {
		case code == 0:
			xcontext.Logger(ctx).Infof("%s", info)
		case code > 0:
			xcontext.Logger(ctx).Warnf("%s | %d | %v", info, code, err)
		default:
			xcontext.Logger(ctx).Errorf("%s | %d | %v", info, code, err)
		}
	}
}
