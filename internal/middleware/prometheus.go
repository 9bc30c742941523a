package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/questx-lab/taskmaster/internal/common"
	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/router"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
)

func WithStartTime() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		return xcontext.WithStartTime(ctx, time.Now()), nil
	}
}

func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		method := fmt.Sprintf("%s %s", req.Method, req.URL.Path)
		code := fmt.Sprint(errorCode(xcontext.Error(ctx)))

		common.PromCounters[common.HTTPRequestTotal].WithLabelValues(method, code).Inc()

		if startTime := xcontext.StartTime(ctx); !startTime.IsZero() {
			common.PromHistograms[common.HTTPRequestDurationSeconds].
				WithLabelValues(method, code).
				Observe(time.Since(startTime).Seconds())
		}
	}
}

// errorCode returns 0 for a successful request and -1 for an error which is
// not an errorx.Error.
func errorCode(err error) int {
	if err == nil {
		return 0
	}

	var errx errorx.Error
	if errors.As(err, &errx) {
		return int(errx.Code)
	}

	return -1
}
