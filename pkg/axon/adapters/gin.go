package adapters

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/toyz/receitas/pkg/axon"
)

const ginBodyKey = "axon.body"

// GinAdapter implements axon.WebServerInterface for Gin framework
type GinAdapter struct {
	engine    *gin.Engine
	bodyLimit int64

	mu     sync.Mutex
	server *http.Server
}

// NewGinAdapter creates a new Gin adapter. Unknown routes answer with the 404 envelope.
func NewGinAdapter(g *gin.Engine) *GinAdapter {
	g.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, axon.Envelope{Message: axon.MsgNotFound})
	})
	return &GinAdapter{engine: g}
}

// NewDefaultGinAdapter creates a new Gin adapter with a bare Gin engine.
// Logging and recovery are provided by axon middleware and the dispatcher.
func NewDefaultGinAdapter() *GinAdapter {
	return NewGinAdapter(gin.New())
}

// RegisterRoute registers a route with the Gin server
func (ga *GinAdapter) RegisterRoute(method string, path axon.AxonPath, handler axon.HandlerFunc, middlewares ...axon.MiddlewareFunc) {
	var handlers []gin.HandlerFunc
	for _, middleware := range middlewares {
		handlers = append(handlers, ga.convertMiddleware(middleware))
	}
	handlers = append(handlers, ga.convertHandler(handler))

	ga.engine.Handle(method, axon.DefaultRouteConverter.ToColon(path, "*path"), handlers...)
}

// Mount attaches a plain net/http handler
func (ga *GinAdapter) Mount(method, path string, handler http.Handler) {
	ga.engine.Handle(method, path, gin.WrapH(handler))
}

// SetBodyLimit caps the bytes read from request bodies
func (ga *GinAdapter) SetBodyLimit(limit int64) {
	ga.bodyLimit = limit
}

// Use registers a global middleware with the Gin server
func (ga *GinAdapter) Use(middleware axon.MiddlewareFunc) {
	ga.engine.Use(ga.convertMiddleware(middleware))
}

// Start starts the Gin server behind an http.Server so Stop can shut it down gracefully
func (ga *GinAdapter) Start(addr string) error {
	ga.mu.Lock()
	ga.server = &http.Server{Addr: addr, Handler: ga.engine}
	server := ga.server
	ga.mu.Unlock()

	return server.ListenAndServe()
}

// Stop gracefully stops the Gin server
func (ga *GinAdapter) Stop(ctx context.Context) error {
	ga.mu.Lock()
	server := ga.server
	ga.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// GetEngine returns the underlying Gin engine
func (ga *GinAdapter) GetEngine() *gin.Engine {
	return ga.engine
}

// ServeHTTP lets the adapter be used directly with httptest
func (ga *GinAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ga.engine.ServeHTTP(w, r)
}

// convertHandler converts axon.HandlerFunc to gin.HandlerFunc
func (ga *GinAdapter) convertHandler(handler axon.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestContext := &GinRequestContext{ctx: c, bodyLimit: ga.bodyLimit}
		if err := handler(requestContext); err != nil {
			_ = axon.WriteError(requestContext, err)
		}
	}
}

// convertMiddleware converts axon.MiddlewareFunc to gin.HandlerFunc
func (ga *GinAdapter) convertMiddleware(middleware axon.MiddlewareFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestContext := &GinRequestContext{ctx: c, bodyLimit: ga.bodyLimit}

		called := false
		next := func(rc axon.RequestContext) error {
			called = true
			c.Next()
			return nil
		}

		if err := middleware(next)(requestContext); err != nil {
			_ = axon.WriteError(requestContext, err)
			c.Abort()
			return
		}
		if !called {
			// the middleware answered the request itself
			c.Abort()
		}
	}
}

// GinRequestContext implements axon.RequestContext for Gin
type GinRequestContext struct {
	ctx       *gin.Context
	bodyLimit int64
}

// Context returns the request context
func (grc *GinRequestContext) Context() context.Context {
	return grc.ctx.Request.Context()
}

// SetContext replaces the request context
func (grc *GinRequestContext) SetContext(ctx context.Context) {
	grc.ctx.Request = grc.ctx.Request.WithContext(ctx)
}

// Method returns the HTTP method
func (grc *GinRequestContext) Method() string {
	return grc.ctx.Request.Method
}

// Path returns the request path
func (grc *GinRequestContext) Path() string {
	return grc.ctx.Request.URL.Path
}

// RealIP returns the real IP address
func (grc *GinRequestContext) RealIP() string {
	return grc.ctx.ClientIP()
}

// Param returns a path parameter
func (grc *GinRequestContext) Param(name string) string {
	if name == "*" {
		// Gin exposes the catch-all as *path, with its leading slash
		return strings.TrimPrefix(grc.ctx.Param("path"), "/")
	}
	return grc.ctx.Param(name)
}

// ParamNames returns parameter names
func (grc *GinRequestContext) ParamNames() []string {
	var names []string
	for _, param := range grc.ctx.Params {
		names = append(names, param.Key)
	}
	return names
}

// QueryParam returns a query parameter
func (grc *GinRequestContext) QueryParam(name string) string {
	return grc.ctx.Query(name)
}

// QueryParams returns all query parameters
func (grc *GinRequestContext) QueryParams() map[string][]string {
	return grc.ctx.Request.URL.Query()
}

// Request returns the request interface
func (grc *GinRequestContext) Request() axon.RequestInterface {
	return &GinRequestInterface{ctx: grc.ctx, bodyLimit: grc.bodyLimit}
}

// Response returns the response interface
func (grc *GinRequestContext) Response() axon.ResponseInterface {
	return &GinResponseInterface{ctx: grc.ctx}
}

// Get returns a value from context
func (grc *GinRequestContext) Get(key string) any {
	value, _ := grc.ctx.Get(key)
	return value
}

// Set sets a value in context
func (grc *GinRequestContext) Set(key string, val any) {
	grc.ctx.Set(key, val)
}

// GinRequestInterface implements axon.RequestInterface for Gin
type GinRequestInterface struct {
	ctx       *gin.Context
	bodyLimit int64
}

// Header returns a request header
func (gri *GinRequestInterface) Header(key string) string {
	return gri.ctx.GetHeader(key)
}

// Body returns the request body, buffered on first read
func (gri *GinRequestInterface) Body() ([]byte, error) {
	if cached, ok := gri.ctx.Get(ginBodyKey); ok {
		body := cached.(bufferedBody)
		return body.data, body.err
	}
	body := readRequestBody(gri.ctx.Request, gri.bodyLimit)
	gri.ctx.Set(ginBodyKey, body)
	return body.data, body.err
}

// ContentLength returns the content length
func (gri *GinRequestInterface) ContentLength() int64 {
	return gri.ctx.Request.ContentLength
}

// ContentType returns the content type
func (gri *GinRequestInterface) ContentType() string {
	return gri.ctx.ContentType()
}

// GinResponseInterface implements axon.ResponseInterface for Gin
type GinResponseInterface struct {
	ctx *gin.Context
}

// Status returns the response status code
func (gri *GinResponseInterface) Status() int {
	return gri.ctx.Writer.Status()
}

// Header returns a response header
func (gri *GinResponseInterface) Header(key string) string {
	return gri.ctx.Writer.Header().Get(key)
}

// SetHeader sets a response header
func (gri *GinResponseInterface) SetHeader(key, value string) {
	gri.ctx.Header(key, value)
}

// JSON writes a JSON response
func (gri *GinResponseInterface) JSON(code int, i any) error {
	gri.ctx.JSON(code, i)
	return nil
}

// NoContent writes a status without a body
func (gri *GinResponseInterface) NoContent(code int) error {
	gri.ctx.Status(code)
	gri.ctx.Writer.WriteHeaderNow()
	return nil
}

// Written returns whether the response has been written
func (gri *GinResponseInterface) Written() bool {
	return gri.ctx.Writer.Written()
}
