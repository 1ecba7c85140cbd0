package adapters

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toyz/receitas/pkg/axon"
)

const echoBodyKey = "axon.body"

// EchoAdapter implements axon.WebServerInterface for Echo v4
type EchoAdapter struct {
	engine    *echo.Echo
	bodyLimit int64
}

// NewEchoAdapter creates a new Echo adapter. Errors that reach Echo are rendered with the envelope.
func NewEchoAdapter(e *echo.Echo) *EchoAdapter {
	e.HTTPErrorHandler = echoErrorHandler
	return &EchoAdapter{engine: e}
}

// NewDefaultEchoAdapter creates a new Echo adapter with default Echo instance
func NewDefaultEchoAdapter() *EchoAdapter {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return NewEchoAdapter(e)
}

// RegisterRoute registers a route with the Echo server
func (ea *EchoAdapter) RegisterRoute(method string, path axon.AxonPath, handler axon.HandlerFunc, middlewares ...axon.MiddlewareFunc) {
	echoMiddlewares := make([]echo.MiddlewareFunc, len(middlewares))
	for i, mw := range middlewares {
		echoMiddlewares[i] = ea.convertMiddleware(mw)
	}

	ea.engine.Add(method, axon.DefaultRouteConverter.ToColon(path, "*"), ea.convertHandler(handler), echoMiddlewares...)
}

// Mount attaches a plain net/http handler
func (ea *EchoAdapter) Mount(method, path string, handler http.Handler) {
	ea.engine.Add(method, path, echo.WrapHandler(handler))
}

// SetBodyLimit caps the bytes read from request bodies
func (ea *EchoAdapter) SetBodyLimit(limit int64) {
	ea.bodyLimit = limit
}

// Use adds global middleware
func (ea *EchoAdapter) Use(middleware axon.MiddlewareFunc) {
	ea.engine.Use(ea.convertMiddleware(middleware))
}

// Start starts the server
func (ea *EchoAdapter) Start(addr string) error {
	return ea.engine.Start(addr)
}

// Stop stops the server
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.engine.Shutdown(ctx)
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// GetEngine returns the underlying Echo instance
func (ea *EchoAdapter) GetEngine() *echo.Echo {
	return ea.engine
}

// ServeHTTP lets the adapter be used directly with httptest
func (ea *EchoAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ea.engine.ServeHTTP(w, r)
}

// convertHandler converts axon.HandlerFunc to echo.HandlerFunc
func (ea *EchoAdapter) convertHandler(handler axon.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handler(&EchoRequestContext{context: c, bodyLimit: ea.bodyLimit})
	}
}

// convertMiddleware converts axon.MiddlewareFunc to echo.MiddlewareFunc
func (ea *EchoAdapter) convertMiddleware(middleware axon.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// errors from the rest of the chain are rendered here so the middleware sees the final status
			axonNext := func(ctx axon.RequestContext) error {
				if err := next(c); err != nil {
					echoErrorHandler(err, c)
				}
				return nil
			}
			return middleware(axonNext)(&EchoRequestContext{context: c, bodyLimit: ea.bodyLimit})
		}
	}
}

// echoErrorHandler renders both axon and echo errors with the envelope
func echoErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		message := http.StatusText(echoErr.Code)
		switch {
		case echoErr.Code == http.StatusNotFound:
			message = axon.MsgNotFound
		case echoErr.Code >= http.StatusInternalServerError:
			message = axon.MsgInternalError
		}
		_ = c.JSON(echoErr.Code, axon.Envelope{Message: message})
		return
	}

	_ = axon.WriteError(&EchoRequestContext{context: c}, err)
}

// EchoRequestContext implements axon.RequestContext for Echo
type EchoRequestContext struct {
	context   echo.Context
	bodyLimit int64
}

// Context returns the request context
func (erc *EchoRequestContext) Context() context.Context {
	return erc.context.Request().Context()
}

// SetContext replaces the request context
func (erc *EchoRequestContext) SetContext(ctx context.Context) {
	erc.context.SetRequest(erc.context.Request().WithContext(ctx))
}

// Method returns the HTTP method
func (erc *EchoRequestContext) Method() string {
	return erc.context.Request().Method
}

// Path returns the request path
func (erc *EchoRequestContext) Path() string {
	return erc.context.Request().URL.Path
}

// RealIP returns the real IP address
func (erc *EchoRequestContext) RealIP() string {
	return erc.context.RealIP()
}

// Param returns a path parameter
func (erc *EchoRequestContext) Param(key string) string {
	return erc.context.Param(key)
}

// ParamNames returns parameter names
func (erc *EchoRequestContext) ParamNames() []string {
	return erc.context.ParamNames()
}

// QueryParam returns a query parameter
func (erc *EchoRequestContext) QueryParam(key string) string {
	return erc.context.QueryParam(key)
}

// QueryParams returns all query parameters
func (erc *EchoRequestContext) QueryParams() map[string][]string {
	return erc.context.QueryParams()
}

// Request returns the request interface
func (erc *EchoRequestContext) Request() axon.RequestInterface {
	return &EchoRequestInterface{context: erc.context, bodyLimit: erc.bodyLimit}
}

// Response returns the response interface
func (erc *EchoRequestContext) Response() axon.ResponseInterface {
	return &EchoResponseInterface{response: erc.context.Response(), context: erc.context}
}

// Get returns a value from context
func (erc *EchoRequestContext) Get(key string) any {
	return erc.context.Get(key)
}

// Set sets a value in context
func (erc *EchoRequestContext) Set(key string, val any) {
	erc.context.Set(key, val)
}

// EchoRequestInterface implements axon.RequestInterface for Echo
type EchoRequestInterface struct {
	context   echo.Context
	bodyLimit int64
}

// Header returns a request header
func (eri *EchoRequestInterface) Header(key string) string {
	return eri.context.Request().Header.Get(key)
}

// Body returns the request body, buffered on first read
func (eri *EchoRequestInterface) Body() ([]byte, error) {
	if cached, ok := eri.context.Get(echoBodyKey).(bufferedBody); ok {
		return cached.data, cached.err
	}
	body := readRequestBody(eri.context.Request(), eri.bodyLimit)
	eri.context.Set(echoBodyKey, body)
	return body.data, body.err
}

// ContentLength returns the content length
func (eri *EchoRequestInterface) ContentLength() int64 {
	return eri.context.Request().ContentLength
}

// ContentType returns the content type
func (eri *EchoRequestInterface) ContentType() string {
	return eri.context.Request().Header.Get(echo.HeaderContentType)
}

// EchoResponseInterface implements axon.ResponseInterface for Echo
type EchoResponseInterface struct {
	response *echo.Response
	context  echo.Context
}

// Status returns the response status code
func (eri *EchoResponseInterface) Status() int {
	return eri.response.Status
}

// Header returns a response header
func (eri *EchoResponseInterface) Header(key string) string {
	return eri.response.Header().Get(key)
}

// SetHeader sets a response header
func (eri *EchoResponseInterface) SetHeader(key, value string) {
	eri.response.Header().Set(key, value)
}

// JSON writes a JSON response
func (eri *EchoResponseInterface) JSON(code int, i any) error {
	return eri.context.JSON(code, i)
}

// NoContent writes a status without a body
func (eri *EchoResponseInterface) NoContent(code int) error {
	return eri.context.NoContent(code)
}

// Written returns whether the response has been written
func (eri *EchoResponseInterface) Written() bool {
	return eri.response.Committed
}
