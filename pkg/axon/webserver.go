package axon

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/toyz/receitas/pkg/axon/validation"
)

// DefaultBodyLimit is the largest request body, in bytes, adapters read when no limit is set
const DefaultBodyLimit int64 = 1 << 20

// WebServerInterface defines the contract for web server implementations
type WebServerInterface interface {
	// Route registration
	RegisterRoute(method string, path AxonPath, handler HandlerFunc, middlewares ...MiddlewareFunc)

	// Mount attaches a plain net/http handler, used for endpoints such as /metrics
	Mount(method, path string, handler http.Handler)

	// Global middleware
	Use(middleware MiddlewareFunc)

	// SetBodyLimit caps the bytes read from a request body; 0 restores DefaultBodyLimit
	SetBodyLimit(limit int64)

	// Server lifecycle
	Start(addr string) error
	Stop(ctx context.Context) error

	// Server information
	Name() string
}

// RequestContext provides a framework-agnostic interface for handling HTTP requests
type RequestContext interface {
	// Context returns the request scoped context.Context
	Context() context.Context
	// SetContext replaces the request scoped context (used by middleware to attach values)
	SetContext(ctx context.Context)

	// Request data
	Method() string
	Path() string
	RealIP() string

	// Parameters
	Param(key string) string
	ParamNames() []string

	// Query parameters
	QueryParam(key string) string
	QueryParams() map[string][]string

	Request() RequestInterface
	Response() ResponseInterface

	// Context data
	Get(key string) any
	Set(key string, val any)
}

// RequestInterface provides access to the underlying request
type RequestInterface interface {
	Header(key string) string
	// Body returns the raw request body. Adapters buffer it so repeated calls return the same
	// bytes and error. A body over the limit yields a 413 HttpError, a failed read a 400.
	Body() ([]byte, error)
	ContentLength() int64
	ContentType() string
}

// ResponseInterface provides response writing capabilities
type ResponseInterface interface {
	Status() int
	Header(key string) string
	SetHeader(key, value string)
	JSON(code int, i any) error
	NoContent(code int) error
	Written() bool
}

// HandlerFunc defines the signature for HTTP handlers
type HandlerFunc func(RequestContext) error

// MiddlewareFunc defines the signature for middleware
type MiddlewareFunc func(HandlerFunc) HandlerFunc

// WriteError renders an error returned by a handler or middleware that never reached the dispatcher.
// Adapters call it so every response, even a failing one, uses the envelope.
func WriteError(ctx RequestContext, err error) error {
	if ctx.Response().Written() {
		return nil
	}
	httpErr := AsHttpError(err)
	return ctx.Response().JSON(httpErr.StatusCode, Envelope{Message: httpErr.Message})
}

// ReadBody reads r up to limit bytes
func ReadBody(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultBodyLimit
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, ErrPayloadTooLarge("").WithCause(err)
		}
		return nil, ErrBadRequest(validation.MsgInvalidBody).WithCause(err)
	}
	if int64(len(body)) > limit {
		return nil, ErrPayloadTooLarge("")
	}
	return body, nil
}
