package router

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/questx-lab/eventreward/pkg/errorx"
	"github.com/questx-lab/eventreward/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := xcontext.WithHTTPRequest(router.ctx, c.Request)

		resp, ctx, err := serve(ctx, router, c, method, handler)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
		} else {
			ctx = xcontext.WithResponse(ctx, resp)
		}

		writeResponse(ctx, c)
		for _, closer := range router.closers {
			closer(ctx)
		}
	}
}

func serve[Request, Response any](
	ctx context.Context,
	router *Router,
	c *gin.Context,
	method string,
	handler HandlerFunc[Request, Response],
) (*Response, context.Context, error) {
	ctx, err := runMiddlewares(ctx, router.befores)
	if err != nil {
		return nil, ctx, err
	}

	req := new(Request)
	switch method {
	case "GET":
		err = c.ShouldBindQuery(req)
	default:
		if c.Request.ContentLength > 0 {
			err = c.ShouldBindJSON(req)
		}
	}
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
		return nil, ctx, errorx.New(errorx.BadRequest, "Invalid request")
	}

	resp, err := handler(ctx, req)
	if err != nil {
		return nil, ctx, err
	}

	ctx, err = runMiddlewares(ctx, router.afters)
	if err != nil {
		return nil, ctx, err
	}

	return resp, ctx, nil
}

func runMiddlewares(ctx context.Context, middlewares []MiddlewareFunc) (context.Context, error) {
	for _, m := range middlewares {
		newCtx, err := m(ctx)
		if err != nil {
			return ctx, err
		}

		if newCtx != nil {
			ctx = newCtx
		}
	}

	return ctx, nil
}
