package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"golang.org/x/exp/slices"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It may enrich the context, an error
// aborts the request.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response is written, even if the request failed.
type CloserFunc func(ctx context.Context)

type Router struct {
	engine *gin.Engine

	// root holds the values every request context inherits.
	root    context.Context
	befores []MiddlewareFunc
	closers []CloserFunc
}

func New(root context.Context) *Router {
	if xcontext.Configs(root).Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Router{engine: engine, root: root}
}

// Branch returns a router sharing the routes of r. Middlewares and closers
// added to the branch do not affect r.
func (r *Router) Branch() *Router {
	return &Router{
		engine:  r.engine,
		root:    r.root,
		befores: slices.Clone(r.befores),
		closers: slices.Clone(r.closers),
	}
}

func (r *Router) Before(middlewares ...MiddlewareFunc) {
	r.befores = append(r.befores, middlewares...)
}

func (r *Router) AddCloser(closers ...CloserFunc) {
	r.closers = append(r.closers, closers...)
}

// Handle mounts a plain http.Handler, e.g. the metrics exporter. Middlewares
// and closers are not applied.
func (r *Router) Handle(method, pattern string, handler http.Handler) {
	r.engine.Handle(method, pattern, gin.WrapH(handler))
}

func (r *Router) Handler() http.Handler {
	return r.engine
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.engine.GET(pattern, wrap(r, bindQuery, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.engine.POST(pattern, wrap(r, bindJSON, handler))
}

func bindQuery(c *gin.Context, req any) error {
	return c.ShouldBindQuery(req)
}

func bindJSON(c *gin.Context, req any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}

	return c.ShouldBindJSON(req)
}

func wrap[Request, Response any](
	r *Router, bind func(*gin.Context, any) error, handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	// Capture the chain at registration, later Before calls only affect the
	// routes registered after them.
	befores := slices.Clone(r.befores)
	closers := slices.Clone(r.closers)

	return func(c *gin.Context) {
		ctx := r.requestContext(c)

		var resp *Response
		err := func() error {
			for _, before := range befores {
				next, err := before(ctx)
				if err != nil {
					return err
				}

				ctx = next
			}

			var req Request
			if err := bind(c, &req); err != nil {
				return errorx.New(errorx.BadRequest, "Invalid request: %v", err)
			}

			var err error
			resp, err = handler(ctx, &req)
			return err
		}()

		if err != nil {
			writeError(c, err)
		} else {
			writeData(c, resp)
		}

		ctx = xcontext.WithError(ctx, err)
		for _, closer := range closers {
			closer(ctx)
		}
	}
}

func (r *Router) requestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	ctx = xcontext.WithConfigs(ctx, xcontext.Configs(r.root))
	ctx = xcontext.WithLogger(ctx, xcontext.Logger(r.root))
	if db := xcontext.DB(r.root); db != nil {
		ctx = xcontext.WithDB(ctx, db)
	}

	ctx = xcontext.WithHTTPRequest(ctx, c.Request)
	ctx = xcontext.WithHTTPWriter(ctx, c.Writer)
	return ctx
}
