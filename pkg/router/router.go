package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/contest-backoffice/config"
	"github.com/questx-lab/contest-backoffice/pkg/errorx"
	"github.com/questx-lab/contest-backoffice/pkg/logger"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(context.Context, *Request) (*Response, error)

// MiddlewareFunc runs around a handler. A non-nil returned context replaces
// the current one, an error aborts the request.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response is written, even if the request failed.
type CloserFunc func(ctx context.Context)

type Router struct {
	engine *gin.Engine

	db      *gorm.DB
	cfg     config.Configs
	logger  logger.Logger
	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

func New(db *gorm.DB, cfg config.Configs, logger logger.Logger) *Router {
	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Router{
		engine: engine,
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

// Branch returns a router sharing the same engine. Middlewares added to the
// branch do not affect its parent.
func (r *Router) Branch() *Router {
	return &Router{
		engine:  r.engine,
		db:      r.db,
		cfg:     r.cfg,
		logger:  r.logger,
		befores: append([]MiddlewareFunc{}, r.befores...),
		afters:  append([]MiddlewareFunc{}, r.afters...),
		closers: append([]CloserFunc{}, r.closers...),
	}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func (r *Router) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   r.cfg.ApiServer.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r.engine)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.engine.GET(pattern, handle(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.engine.POST(pattern, handle(r, http.MethodPost, handler))
}

func handle[Request, Response any](
	r *Router, method string, handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	befores := r.befores
	afters := r.afters
	closers := r.closers

	return func(gc *gin.Context) {
		ctx := gc.Request.Context()
		ctx = xcontext.WithConfigs(ctx, r.cfg)
		ctx = xcontext.WithLogger(ctx, r.logger)
		ctx = xcontext.WithDB(ctx, r.db)
		ctx = xcontext.WithHTTPRequest(ctx, gc.Request)

		ctx = serve(ctx, method, befores, afters, handler)
		writeResponse(ctx, gc)

		for _, closer := range closers {
			closer(ctx)
		}
	}
}

func serve[Request, Response any](
	ctx context.Context,
	method string,
	befores, afters []MiddlewareFunc,
	handler HandlerFunc[Request, Response],
) context.Context {
	var err error
	if ctx, err = runMiddlewares(ctx, befores); err != nil {
		return WithError(ctx, err)
	}

	var req Request
	if err := parseRequest(ctx, method, &req); err != nil {
		xcontext.Logger(ctx).Debugf("Cannot parse request: %v", err)
		return WithError(ctx, errorx.New(errorx.BadRequest, "Invalid request"))
	}

	resp, err := handler(ctx, &req)
	if err != nil {
		return WithError(ctx, err)
	}

	ctx = WithResponse(ctx, resp)
	if ctx, err = runMiddlewares(ctx, afters); err != nil {
		return WithError(ctx, err)
	}

	return ctx
}

func runMiddlewares(ctx context.Context, middlewares []MiddlewareFunc) (context.Context, error) {
	for _, middleware := range middlewares {
		newCtx, err := middleware(ctx)
		if err != nil {
			return ctx, err
		}

		if newCtx != nil {
			ctx = newCtx
		}
	}

	return ctx, nil
}

func parseRequest(ctx context.Context, method string, req any) error {
	httpReq := xcontext.HTTPRequest(ctx)
	switch method {
	case http.MethodGet:
		return decodeQuery(httpReq, req)

	case http.MethodPost:
		// Multipart bodies are read by the handler itself.
		if strings.HasPrefix(httpReq.Header.Get("Content-Type"), "multipart/form-data") {
			return nil
		}

		err := json.NewDecoder(httpReq.Body).Decode(req)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		return nil
	}

	return errors.New("unsupported method")
}

func decodeQuery(httpReq *http.Request, req any) error {
	input := map[string]any{}
	for key, values := range httpReq.URL.Query() {
		if len(values) == 1 {
			input[key] = values[0]
		} else {
			input[key] = values
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           req,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}
