package adapters

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/toyz/receitas/pkg/axon"
)

const (
	fiberBodyKey    = "axon.body"
	fiberWrittenKey = "axon.written"
)

// FiberAdapter wraps a Fiber app to implement axon.WebServerInterface
type FiberAdapter struct {
	app       *fiber.App
	bodyLimit int64
}

// NewFiberAdapter creates a new Fiber adapter around app. The app should be built
// with FiberConfig so errors that escape a handler are rendered with the envelope.
func NewFiberAdapter(app *fiber.App) *FiberAdapter {
	return &FiberAdapter{app: app}
}

// NewDefaultFiberAdapter creates a new Fiber adapter with a fresh app
func NewDefaultFiberAdapter() *FiberAdapter {
	return NewFiberAdapter(fiber.New(FiberConfig()))
}

// FiberConfig returns the Fiber configuration used by the default adapter
func FiberConfig() fiber.Config {
	return fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          fiberErrorHandler,
	}
}

// SetBodyLimit caps the bytes read from request bodies. Fiber's own BodyLimit
// (FiberConfig) still rejects anything larger before routing.
func (fa *FiberAdapter) SetBodyLimit(limit int64) {
	fa.bodyLimit = limit
}

// RegisterRoute registers a route with the Fiber app
func (fa *FiberAdapter) RegisterRoute(method string, path axon.AxonPath, handler axon.HandlerFunc, middlewares ...axon.MiddlewareFunc) {
	handlers := make([]fiber.Handler, 0, len(middlewares)+1)
	for _, mw := range middlewares {
		handlers = append(handlers, fa.convertMiddleware(mw))
	}
	handlers = append(handlers, fa.convertHandler(handler))

	fa.app.Add(method, axon.DefaultRouteConverter.ToColon(path, "*"), handlers...)
}

// Mount attaches a plain net/http handler
func (fa *FiberAdapter) Mount(method, path string, handler http.Handler) {
	fa.app.Add(method, path, adaptor.HTTPHandler(handler))
}

// Use adds middleware to the Fiber app
func (fa *FiberAdapter) Use(middleware axon.MiddlewareFunc) {
	fa.app.Use(fa.convertMiddleware(middleware))
}

// Start starts the Fiber server
func (fa *FiberAdapter) Start(addr string) error {
	return fa.app.Listen(addr)
}

// Stop stops the Fiber server
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	return fa.app.ShutdownWithContext(ctx)
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// GetApp returns the underlying Fiber app
func (fa *FiberAdapter) GetApp() *fiber.App {
	return fa.app
}

// ServeHTTP bridges net/http requests into the Fiber app
func (fa *FiberAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	adaptor.FiberApp(fa.app)(w, r)
}

// fiberErrorHandler renders errors that reach Fiber, including its own 404 and 405, with the envelope
func fiberErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		message := fiberErr.Message
		switch {
		case fiberErr.Code == fiber.StatusNotFound:
			message = axon.MsgNotFound
		case fiberErr.Code >= fiber.StatusInternalServerError:
			message = axon.MsgInternalError
		}
		return (&FiberRequestContext{ctx: c}).Response().JSON(fiberErr.Code, axon.Envelope{Message: message})
	}
	return axon.WriteError(&FiberRequestContext{ctx: c}, err)
}

// convertHandler converts an Axon handler to a Fiber handler
func (fa *FiberAdapter) convertHandler(handler axon.HandlerFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestContext := &FiberRequestContext{ctx: c, bodyLimit: fa.bodyLimit}
		if err := handler(requestContext); err != nil {
			return axon.WriteError(requestContext, err)
		}
		return nil
	}
}

// convertMiddleware converts an Axon middleware to a Fiber middleware
func (fa *FiberAdapter) convertMiddleware(middleware axon.MiddlewareFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestContext := &FiberRequestContext{ctx: c, bodyLimit: fa.bodyLimit}

		err := middleware(func(ctx axon.RequestContext) error {
			// errors left by the rest of the stack (unmatched routes) are rendered here
			// so the middleware observes the final status
			if nextErr := c.Next(); nextErr != nil {
				return fiberErrorHandler(c, nextErr)
			}
			return nil
		})(requestContext)

		if err != nil {
			return axon.WriteError(requestContext, err)
		}
		return nil
	}
}

// FiberRequestContext wraps fiber.Ctx to implement axon.RequestContext
type FiberRequestContext struct {
	ctx       *fiber.Ctx
	bodyLimit int64
}

// Context returns the user context of the request
func (frc *FiberRequestContext) Context() context.Context {
	return frc.ctx.UserContext()
}

// SetContext replaces the user context of the request
func (frc *FiberRequestContext) SetContext(ctx context.Context) {
	frc.ctx.SetUserContext(ctx)
}

func (frc *FiberRequestContext) Method() string {
	return frc.ctx.Method()
}

func (frc *FiberRequestContext) Path() string {
	return frc.ctx.Path()
}

func (frc *FiberRequestContext) RealIP() string {
	return frc.ctx.IP()
}

func (frc *FiberRequestContext) Param(name string) string {
	return frc.ctx.Params(name)
}

func (frc *FiberRequestContext) ParamNames() []string {
	if route := frc.ctx.Route(); route != nil {
		return route.Params
	}
	return nil
}

func (frc *FiberRequestContext) QueryParam(key string) string {
	return frc.ctx.Query(key)
}

func (frc *FiberRequestContext) QueryParams() map[string][]string {
	result := make(map[string][]string)
	frc.ctx.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		result[string(key)] = append(result[string(key)], string(value))
	})
	return result
}

func (frc *FiberRequestContext) Request() axon.RequestInterface {
	return &FiberRequest{ctx: frc.ctx, bodyLimit: frc.bodyLimit}
}

func (frc *FiberRequestContext) Response() axon.ResponseInterface {
	return &FiberResponse{ctx: frc.ctx}
}

func (frc *FiberRequestContext) Get(key string) any {
	return frc.ctx.Locals(key)
}

func (frc *FiberRequestContext) Set(key string, val any) {
	frc.ctx.Locals(key, val)
}

// FiberRequest wraps fiber.Ctx to implement axon.RequestInterface
type FiberRequest struct {
	ctx       *fiber.Ctx
	bodyLimit int64
}

func (fr *FiberRequest) Header(key string) string {
	return fr.ctx.Get(key)
}

// Body returns a copy of the request body; Fiber reuses its buffers once the handler returns.
// Fiber has already read the body, so the limit is checked on its length.
func (fr *FiberRequest) Body() ([]byte, error) {
	if cached, ok := fr.ctx.Locals(fiberBodyKey).(bufferedBody); ok {
		return cached.data, cached.err
	}
	limit := fr.bodyLimit
	if limit <= 0 {
		limit = axon.DefaultBodyLimit
	}
	var body bufferedBody
	if raw := fr.ctx.Body(); int64(len(raw)) > limit {
		body = bufferedBody{data: []byte{}, err: axon.ErrPayloadTooLarge("")}
	} else {
		body = bufferedBody{data: append([]byte{}, raw...)}
	}
	fr.ctx.Locals(fiberBodyKey, body)
	return body.data, body.err
}

func (fr *FiberRequest) ContentLength() int64 {
	return int64(fr.ctx.Request().Header.ContentLength())
}

func (fr *FiberRequest) ContentType() string {
	return fr.ctx.Get(fiber.HeaderContentType)
}

// FiberResponse wraps fiber.Ctx to implement axon.ResponseInterface
type FiberResponse struct {
	ctx *fiber.Ctx
}

func (fr *FiberResponse) Status() int {
	return fr.ctx.Response().StatusCode()
}

func (fr *FiberResponse) Header(key string) string {
	return string(fr.ctx.Response().Header.Peek(key))
}

func (fr *FiberResponse) SetHeader(key, value string) {
	fr.ctx.Set(key, value)
}

func (fr *FiberResponse) JSON(code int, i any) error {
	fr.ctx.Locals(fiberWrittenKey, true)
	return fr.ctx.Status(code).JSON(i)
}

// NoContent sets the status without touching the body; fiber's SendStatus would fill in the status text
func (fr *FiberResponse) NoContent(code int) error {
	fr.ctx.Locals(fiberWrittenKey, true)
	fr.ctx.Status(code)
	return nil
}

// Written reports whether a response was produced through this interface.
// Fiber buffers the whole response, so nothing reaches the client before the handler chain returns.
func (fr *FiberResponse) Written() bool {
	written, _ := fr.ctx.Locals(fiberWrittenKey).(bool)
	return written
}
