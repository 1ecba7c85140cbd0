package adapters

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/toyz/receitas/pkg/axon"
)

type muxStateKey struct{}

// muxState holds the per-request values shared by middleware and the final handler
type muxState struct {
	writer *muxResponseWriter
	values map[string]any
	body   bufferedBody
	read   bool
	limit  int64
}

// MuxAdapter implements axon.WebServerInterface for gorilla/mux
type MuxAdapter struct {
	router *mux.Router

	// global middleware, also applied to the not found and method not allowed handlers
	global     []mux.MiddlewareFunc
	notFound   http.Handler
	notAllowed http.Handler
	bodyLimit  int64

	mu     sync.Mutex
	server *http.Server
}

// NewMuxAdapter creates a new gorilla/mux adapter. Unmatched requests answer with the envelope.
func NewMuxAdapter(router *mux.Router) *MuxAdapter {
	ma := &MuxAdapter{
		router: router,
		notFound: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusNotFound, axon.MsgNotFound)
		}),
		notAllowed: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		}),
	}
	ma.rebuildFallbacks()
	return ma
}

// NewDefaultMuxAdapter creates a new adapter with a fresh router
func NewDefaultMuxAdapter() *MuxAdapter {
	return NewMuxAdapter(mux.NewRouter())
}

// RegisterRoute registers a route with the router
func (ma *MuxAdapter) RegisterRoute(method string, path axon.AxonPath, handler axon.HandlerFunc, middlewares ...axon.MiddlewareFunc) {
	h := handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}

	ma.router.HandleFunc(axon.DefaultRouteConverter.ToBrace(path), func(w http.ResponseWriter, r *http.Request) {
		rc := newMuxRequestContext(w, r, ma.bodyLimit)
		if err := h(rc); err != nil {
			_ = axon.WriteError(rc, err)
		}
	}).Methods(method)
}

// Mount attaches a plain net/http handler
func (ma *MuxAdapter) Mount(method, path string, handler http.Handler) {
	ma.router.Handle(path, handler).Methods(method)
}

// SetBodyLimit caps the bytes read from request bodies
func (ma *MuxAdapter) SetBodyLimit(limit int64) {
	ma.bodyLimit = limit
}

// Use adds global middleware. gorilla/mux only runs router middleware for matched routes,
// so the fallback handlers are wrapped as well.
func (ma *MuxAdapter) Use(middleware axon.MiddlewareFunc) {
	mw := mux.MiddlewareFunc(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := newMuxRequestContext(w, r, ma.bodyLimit)
			err := middleware(func(ctx axon.RequestContext) error {
				next.ServeHTTP(rc.state.writer, rc.req)
				return nil
			})(rc)
			if err != nil {
				_ = axon.WriteError(rc, err)
			}
		})
	})
	ma.global = append(ma.global, mw)
	ma.router.Use(mw)
	ma.rebuildFallbacks()
}

func (ma *MuxAdapter) rebuildFallbacks() {
	ma.router.NotFoundHandler = ma.chain(ma.notFound)
	ma.router.MethodNotAllowedHandler = ma.chain(ma.notAllowed)
}

func (ma *MuxAdapter) chain(h http.Handler) http.Handler {
	for i := len(ma.global) - 1; i >= 0; i-- {
		h = ma.global[i](h)
	}
	return h
}

// Start starts the router behind an http.Server
func (ma *MuxAdapter) Start(addr string) error {
	ma.mu.Lock()
	ma.server = &http.Server{Addr: addr, Handler: ma.router}
	server := ma.server
	ma.mu.Unlock()

	return server.ListenAndServe()
}

// Stop gracefully stops the server
func (ma *MuxAdapter) Stop(ctx context.Context) error {
	ma.mu.Lock()
	server := ma.server
	ma.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// Name returns the adapter name
func (ma *MuxAdapter) Name() string {
	return "Mux"
}

// GetRouter returns the underlying router
func (ma *MuxAdapter) GetRouter() *mux.Router {
	return ma.router
}

// ServeHTTP lets the adapter be used directly with httptest
func (ma *MuxAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ma.router.ServeHTTP(w, r)
}

func writeEnvelope(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(axon.Envelope{Message: message})
}

// MuxRequestContext implements axon.RequestContext over net/http
type MuxRequestContext struct {
	req   *http.Request
	state *muxState
}

func newMuxRequestContext(w http.ResponseWriter, r *http.Request, bodyLimit int64) *MuxRequestContext {
	if state, ok := r.Context().Value(muxStateKey{}).(*muxState); ok {
		return &MuxRequestContext{req: r, state: state}
	}
	state := &muxState{
		writer: &muxResponseWriter{ResponseWriter: w, status: http.StatusOK},
		values: make(map[string]any),
		limit:  bodyLimit,
	}
	return &MuxRequestContext{req: r.WithContext(context.WithValue(r.Context(), muxStateKey{}, state)), state: state}
}

func (mrc *MuxRequestContext) Context() context.Context {
	return mrc.req.Context()
}

func (mrc *MuxRequestContext) SetContext(ctx context.Context) {
	mrc.req = mrc.req.WithContext(ctx)
}

func (mrc *MuxRequestContext) Method() string {
	return mrc.req.Method
}

func (mrc *MuxRequestContext) Path() string {
	return mrc.req.URL.Path
}

// RealIP prefers X-Forwarded-For and X-Real-IP over the socket address
func (mrc *MuxRequestContext) RealIP() string {
	if forwarded := mrc.req.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := mrc.req.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(mrc.req.RemoteAddr)
	if err != nil {
		return mrc.req.RemoteAddr
	}
	return host
}

func (mrc *MuxRequestContext) Param(key string) string {
	if key == "*" {
		key = "path"
	}
	return mux.Vars(mrc.req)[key]
}

func (mrc *MuxRequestContext) ParamNames() []string {
	var names []string
	for name := range mux.Vars(mrc.req) {
		names = append(names, name)
	}
	return names
}

func (mrc *MuxRequestContext) QueryParam(key string) string {
	return mrc.req.URL.Query().Get(key)
}

func (mrc *MuxRequestContext) QueryParams() map[string][]string {
	return mrc.req.URL.Query()
}

func (mrc *MuxRequestContext) Request() axon.RequestInterface {
	return &MuxRequest{ctx: mrc}
}

func (mrc *MuxRequestContext) Response() axon.ResponseInterface {
	return &MuxResponse{w: mrc.state.writer}
}

func (mrc *MuxRequestContext) Get(key string) any {
	return mrc.state.values[key]
}

func (mrc *MuxRequestContext) Set(key string, val any) {
	mrc.state.values[key] = val
}

// MuxRequest implements axon.RequestInterface over net/http
type MuxRequest struct {
	ctx *MuxRequestContext
}

func (mr *MuxRequest) Header(key string) string {
	return mr.ctx.req.Header.Get(key)
}

func (mr *MuxRequest) Body() ([]byte, error) {
	state := mr.ctx.state
	if !state.read {
		state.read = true
		state.body = readRequestBody(mr.ctx.req, state.limit)
	}
	return state.body.data, state.body.err
}

func (mr *MuxRequest) ContentLength() int64 {
	return mr.ctx.req.ContentLength
}

func (mr *MuxRequest) ContentType() string {
	return mr.ctx.req.Header.Get("Content-Type")
}

// muxResponseWriter records the status so middleware can observe it
type muxResponseWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *muxResponseWriter) WriteHeader(code int) {
	if w.written {
		return
	}
	w.status = code
	w.written = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *muxResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// MuxResponse implements axon.ResponseInterface over the recording writer
type MuxResponse struct {
	w *muxResponseWriter
}

func (mr *MuxResponse) Status() int {
	return mr.w.status
}

func (mr *MuxResponse) Header(key string) string {
	return mr.w.Header().Get(key)
}

func (mr *MuxResponse) SetHeader(key, value string) {
	mr.w.Header().Set(key, value)
}

func (mr *MuxResponse) JSON(code int, i any) error {
	mr.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	mr.w.WriteHeader(code)
	return json.NewEncoder(mr.w).Encode(i)
}

func (mr *MuxResponse) NoContent(code int) error {
	mr.w.WriteHeader(code)
	return nil
}

func (mr *MuxResponse) Written() bool {
	return mr.w.written
}
