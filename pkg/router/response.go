package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questx-lab/taskmaster/pkg/errorx"
)

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func writeData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, response{Code: 0, Data: data})
}

func writeError(c *gin.Context, err error) {
	var errx errorx.Error
	if !errors.As(err, &errx) {
		errx = errorx.Unknown
	}

	c.JSON(StatusCode(errx.Code), response{Code: int64(errx.Code), Error: errx.Message})
}

// StatusCode maps an error code to the HTTP status of the response.
func StatusCode(code errorx.Code) int {
	switch code {
	case errorx.BadRequest:
		return http.StatusBadRequest
	case errorx.Unauthenticated:
		return http.StatusUnauthorized
	case errorx.PermissionDenied:
		return http.StatusForbidden
	case errorx.NotFound:
		return http.StatusNotFound
	case errorx.AlreadyExists, errorx.EventClosed, errorx.EntryCapReached, errorx.InsufficientPoints:
		return http.StatusConflict
	case errorx.TooManyRequests:
		return http.StatusTooManyRequests
	case errorx.NotImplemented:
		return http.StatusNotImplemented
	case errorx.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
