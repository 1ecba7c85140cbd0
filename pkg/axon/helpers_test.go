package axon

import "context"

// fakeContext is an in-memory RequestContext for unit tests
type fakeContext struct {
	ctx     context.Context
	method  string
	path    string
	params  map[string]string
	query   map[string][]string
	headers map[string]string
	body    []byte
	bodyErr error
	values  map[string]any

	status  int
	payload any
	written bool
}

func newFakeContext(method, path string) *fakeContext {
	return &fakeContext{
		ctx:     context.Background(),
		method:  method,
		path:    path,
		params:  map[string]string{},
		query:   map[string][]string{},
		headers: map[string]string{},
		values:  map[string]any{},
	}
}

func (f *fakeContext) Context() context.Context         { return f.ctx }
func (f *fakeContext) SetContext(ctx context.Context)   { f.ctx = ctx }
func (f *fakeContext) Method() string                   { return f.method }
func (f *fakeContext) Path() string                     { return f.path }
func (f *fakeContext) RealIP() string                   { return "127.0.0.1" }
func (f *fakeContext) Param(key string) string          { return f.params[key] }
func (f *fakeContext) QueryParam(key string) string     { return first0(f.query[key]) }
func (f *fakeContext) QueryParams() map[string][]string { return f.query }
func (f *fakeContext) Request() RequestInterface        { return fakeRequest{f} }
func (f *fakeContext) Response() ResponseInterface      { return fakeResponse{f} }
func (f *fakeContext) Get(key string) any               { return f.values[key] }
func (f *fakeContext) Set(key string, val any)          { f.values[key] = val }

func (f *fakeContext) ParamNames() []string {
	names := make([]string, 0, len(f.params))
	for name := range f.params {
		names = append(names, name)
	}
	return names
}

type fakeRequest struct{ f *fakeContext }

func (r fakeRequest) Header(key string) string { return r.f.headers[key] }
func (r fakeRequest) Body() ([]byte, error)    { return r.f.body, r.f.bodyErr }
func (r fakeRequest) ContentLength() int64     { return int64(len(r.f.body)) }
func (r fakeRequest) ContentType() string      { return r.f.headers["Content-Type"] }

type fakeResponse struct{ f *fakeContext }

func (r fakeResponse) Status() int                 { return r.f.status }
func (r fakeResponse) Header(key string) string    { return "" }
func (r fakeResponse) SetHeader(key, value string) {}
func (r fakeResponse) Written() bool               { return r.f.written }

func (r fakeResponse) JSON(code int, i any) error {
	r.f.status, r.f.payload, r.f.written = code, i, true
	return nil
}

func (r fakeResponse) NoContent(code int) error {
	r.f.status, r.f.written = code, true
	return nil
}

func first0(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// staticAuth accepts a single token
type staticAuth struct {
	token    string
	identity *Identity
}

func (a staticAuth) Verify(header string) *Identity {
	if header == "Bearer "+a.token {
		return a.identity
	}
	return nil
}
