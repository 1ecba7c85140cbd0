package axon

import (
	"bytes"
	"fmt"
	"net/http"
	"reflect"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	axonErrors "github.com/toyz/receitas/internal/errors"
	"github.com/toyz/receitas/pkg/axon/validation"
)

const bearerPrefix = "Bearer "

// Observer is notified once per dispatched request with the route template and final status
type Observer func(method, route string, status int, elapsed time.Duration)

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithPrefix sets the server wide path prefix (e.g., "/api")
func WithPrefix(prefix string) DispatcherOption {
	return func(d *Dispatcher) { d.prefix = prefix }
}

// WithLogger sets the logger used for registration and request failures
func WithLogger(logger Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithObserver sets a hook called after every request, used for metrics
func WithObserver(observer Observer) DispatcherOption {
	return func(d *Dispatcher) { d.observer = observer }
}

// WithRouteRegistry sets the route table the dispatcher records registered routes in
func WithRouteRegistry(routes RouteRegistry) DispatcherOption {
	return func(d *Dispatcher) {
		if routes != nil {
			d.routes = routes
		}
	}
}

// Dispatcher turns the declared metadata into request handlers on a WebServerInterface
type Dispatcher struct {
	metadata *MetadataRegistry
	server   WebServerInterface
	auth     Authenticator
	routes   RouteRegistry
	prefix   string
	logger   Logger
	observer Observer
	compiled []*CompiledRoute
}

// CompiledRoute is a handler whose metadata passed every registration check
type CompiledRoute struct {
	Info      RouteInfo
	Verb      string
	FullPath  AxonPath
	Access    *AccessRule
	resolver  *Resolver
	invoker   Invoker
	bodyShape validation.Validator
}

// NewDispatcher creates a dispatcher. server may be nil when only Compile is used.
func NewDispatcher(metadata *MetadataRegistry, server WebServerInterface, auth Authenticator, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		metadata: metadata,
		server:   server,
		auth:     auth,
		routes:   NewInMemoryRouteRegistry(),
		logger:   NopLogger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Routes returns the route table filled by Compile
func (d *Dispatcher) Routes() RouteRegistry {
	return d.routes
}

// Compile checks every declared handler and returns the routes ready to be served.
// All configuration problems are reported together; nothing is returned if any exist.
// A successful result is cached, so later calls return the same routes.
func (d *Dispatcher) Compile() ([]*CompiledRoute, error) {
	if d.compiled != nil {
		return d.compiled, nil
	}

	errs := axonErrors.NewMultipleErrors()
	var compiled []*CompiledRoute

	for _, controller := range d.metadata.Controllers() {
		prefix := d.metadata.Prefix(controller)
		for _, route := range d.metadata.Routes(controller) {
			c, err := d.compile(controller, prefix, route)
			if err != nil {
				errs.Add(err)
				continue
			}
			if err := d.routes.RegisterRoute(c.Info); err != nil {
				if axonErr, ok := err.(axonErrors.AxonError); ok {
					errs.Add(axonErr)
				} else {
					errs.Add(axonErrors.Wrap(axonErrors.ConflictErrorCode, "failed to record route", err))
				}
				continue
			}
			compiled = append(compiled, c)
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	d.compiled = compiled
	return compiled, nil
}

// RegisterAll compiles every handler and registers it with the web server.
// It fails before registering anything when a configuration problem exists.
func (d *Dispatcher) RegisterAll() error {
	if d.server == nil {
		return axonErrors.New(axonErrors.ConfigurationErrorCode, "dispatcher has no web server")
	}

	compiled, err := d.Compile()
	if err != nil {
		return err
	}

	for _, route := range compiled {
		d.server.RegisterRoute(route.Verb, route.FullPath, d.handler(route))
		d.logger.Infof("registered %s %s -> %s.%s (%s)", route.Verb, route.FullPath,
			route.Info.ControllerName, route.Info.HandlerName, route.Info.Access)
	}
	return nil
}

func (d *Dispatcher) compile(controller, prefix string, route RouteDescriptor) (*CompiledRoute, axonErrors.AxonError) {
	fail := func(format string, args ...any) axonErrors.AxonError {
		return axonErrors.NewRegistrationError(controller, route.Method, fmt.Sprintf(format, args...)).
			WithRoute(route.Verb, route.Path.Raw())
	}

	if route.Verb == "" || route.Path.Raw() == "" {
		return nil, fail("route verb and path must not be empty")
	}
	invoker, ok := d.metadata.Handler(controller, route.Method)
	if !ok {
		return nil, fail("no handler declared")
	}

	fullPath := NewAxonPath(d.prefix).Join(prefix).Join(route.Path.Raw())
	if err := DefaultRouteConverter.ValidateAxonPath(fullPath); err != nil {
		return nil, fail("%v", err)
	}

	access := d.metadata.AccessRule(controller, route.Method)
	if access == nil {
		access = DefaultAccessRule()
	}
	if !access.IsPublic() && d.auth == nil {
		return nil, fail("route requires authentication but no authenticator is configured")
	}

	bindings := d.metadata.ParamBindings(controller, route.Method)
	bodyShape := d.metadata.BodyShape(controller, route.Method)
	if err := checkBindings(invoker, fullPath, bindings, access, bodyShape); err != nil {
		return nil, fail("%v", err)
	}

	return &CompiledRoute{
		Info: RouteInfo{
			Method:         route.Verb,
			Path:           fullPath.Raw(),
			HandlerName:    route.Method,
			ControllerName: controller,
			Access:         describeAccess(access),
			Summary:        d.metadata.Docs(controller, route.Method)["summary"],
			Bindings:       describeBindings(invoker.Arity(), bindings),
		},
		Verb:      route.Verb,
		FullPath:  fullPath,
		Access:    access,
		resolver:  NewResolver(fullPath, invoker.Arity(), bindings),
		invoker:   invoker,
		bodyShape: bodyShape,
	}, nil
}

// checkBindings verifies that the bindings reconstruct the handler's argument list exactly
func checkBindings(invoker Invoker, path AxonPath, bindings []ParameterBinding, access *AccessRule, bodyShape validation.Validator) error {
	arity := invoker.Arity()
	params := invoker.ParamTypes()
	bound := make([]bool, arity)
	maxBound := -1

	for _, b := range bindings {
		if b.Index < 0 || b.Index >= arity {
			return fmt.Errorf("binding index %d out of range for handler with %d parameters", b.Index, arity)
		}
		if bound[b.Index] {
			return fmt.Errorf("duplicate binding for parameter index %d", b.Index)
		}
		bound[b.Index] = true
		maxBound = max(maxBound, b.Index)
		if b.needsIdentity() && access.IsPublic() {
			return fmt.Errorf("parameter %d binds the authenticated identity on a public route", b.Index)
		}

		switch b.Source {
		case PathSegment:
			if _, ok := path.Param(b.Key); !ok {
				return fmt.Errorf("parameter %d binds path segment %q which is not in %s", b.Index, b.Key, path)
			}
			if b.Validator != nil && b.Validator.Type() != stringType {
				return fmt.Errorf("path segment %q validator must validate a string", b.Key)
			}
		case QueryBag, RequestBody:
			if b.Validator != nil && b.Validator.Type().Kind() != reflect.Struct {
				return fmt.Errorf("parameter %d: %s validator must decode into a struct", b.Index, b.Source)
			}
			if b.Source == RequestBody && b.Validator != nil && bodyShape != nil {
				return fmt.Errorf("parameter %d: validated body binding cannot be combined with a body shape validator", b.Index)
			}
		case AuthenticatedIdentity, AuthenticatedIdentityFull:
		default:
			return fmt.Errorf("parameter %d has unknown binding source %d", b.Index, b.Source)
		}

		produced := b.Produces(path)
		if !produced.AssignableTo(params[b.Index]) {
			return fmt.Errorf("parameter %d is %s but the %s binding produces %s", b.Index, params[b.Index], b.Source, produced)
		}
	}

	for i := 0; i < arity; i++ {
		if bound[i] {
			continue
		}
		if i < maxBound {
			return fmt.Errorf("parameter %d has no binding; only trailing parameters may be left unbound", i)
		}
		if !requestContextType.AssignableTo(params[i]) {
			return fmt.Errorf("unbound parameter %d must accept axon.RequestContext, got %s", i, params[i])
		}
	}
	return nil
}

func (d *Dispatcher) handler(route *CompiledRoute) HandlerFunc {
	return func(c RequestContext) error {
		start := time.Now()
		status := d.serve(c, route)
		if d.observer != nil {
			d.observer(route.Verb, route.FullPath.Raw(), status, time.Since(start))
		}
		return nil
	}
}

// serve runs the per request sequence and returns the status written
func (d *Dispatcher) serve(c RequestContext, route *CompiledRoute) (status int) {
	defer func() {
		if recovered := recover(); recovered != nil {
			d.logger.Errorf("panic in %s.%s (%s %s): %v\n%s", route.Info.ControllerName, route.Info.HandlerName,
				route.Verb, route.FullPath, recovered, debug.Stack())
			status = d.writeError(c, ErrInternalServerError(""))
		}
	}()

	var identity *Identity
	if !route.Access.IsPublic() {
		header := c.Request().Header("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) || strings.TrimSpace(header[len(bearerPrefix):]) == "" {
			return d.writeError(c, ErrUnauthorized(MsgTokenRequired))
		}
		identity = d.auth.Verify(header)
		if identity == nil {
			return d.writeError(c, ErrUnauthorized(MsgTokenInvalid))
		}
		attachIdentity(c, identity)
	}

	if decision := Decide(route.Access, identity); !decision.Allowed {
		if decision.Reason == Unauthenticated {
			return d.writeError(c, ErrUnauthorized(MsgTokenRequired))
		}
		return d.writeError(c, ErrForbidden(MsgForbidden))
	}

	args, err := route.resolver.Resolve(c)
	if err != nil {
		d.logger.Debugf("rejected %s %s: %v", route.Verb, c.Path(), err)
		return d.writeError(c, err)
	}

	if route.bodyShape != nil && carriesBody(route.Verb) {
		body, err := c.Request().Body()
		if err != nil {
			return d.writeError(c, err)
		}
		if len(bytes.TrimSpace(body)) > 0 {
			if _, errs := route.bodyShape.Validate(body); len(errs) > 0 {
				d.logger.Debugf("rejected %s %s body: %v", route.Verb, c.Path(), errs)
				return d.writeError(c, errs)
			}
		}
	}

	result, err := route.invoker.Call(c.Context(), args)
	if err != nil {
		httpErr := AsHttpError(err)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			d.logger.Errorf("unhandled error in %s.%s (%s %s): %+v", route.Info.ControllerName, route.Info.HandlerName,
				route.Verb, c.Path(), err)
		}
		return d.writeError(c, httpErr)
	}

	return d.writeResult(c, result)
}

func (d *Dispatcher) writeError(c RequestContext, err error) int {
	if c.Response().Written() {
		return c.Response().Status()
	}
	httpErr := AsHttpError(err)
	if werr := c.Response().JSON(httpErr.StatusCode, Envelope{Message: httpErr.Message}); werr != nil {
		d.logger.Warnf("failed to write error response: %v", werr)
	}
	return httpErr.StatusCode
}

func (d *Dispatcher) writeResult(c RequestContext, result any) int {
	if c.Response().Written() {
		return c.Response().Status()
	}

	var (
		code int
		body any
	)
	if structured, ok := result.(StructuredResponse); ok && !isNilPointer(result) {
		code = structured.StatusCode()
		if code == 0 {
			code = http.StatusOK
		}
		envelope := Envelope{Message: structured.ResponseMessage()}
		if envelope.Message == "" {
			envelope.Message = defaultMessage(code)
		}
		if data, has := structured.ResponseData(); has && code < http.StatusMultipleChoices {
			envelope.Data = data
		}
		body = envelope
	} else {
		if isNilPointer(result) {
			result = nil
		}
		code = http.StatusOK
		body = rawEnvelope{Success: true, Message: MsgOK, Data: result}
	}

	if err := c.Response().JSON(code, body); err != nil {
		d.logger.Errorf("failed to write response: %v", err)
		return d.writeError(c, ErrInternalServerError(""))
	}
	return code
}

func defaultMessage(code int) string {
	switch {
	case code == http.StatusCreated:
		return MsgCreated
	case code < http.StatusMultipleChoices:
		return MsgOK
	case code == http.StatusBadRequest:
		return MsgBadRequest
	case code == http.StatusUnauthorized:
		return MsgUnauthorized
	case code == http.StatusForbidden:
		return MsgForbidden
	case code == http.StatusNotFound:
		return MsgNotFound
	case code == http.StatusConflict:
		return MsgConflict
	case code >= http.StatusInternalServerError:
		return MsgInternalError
	}
	return http.StatusText(code)
}

func carriesBody(verb string) bool {
	return verb == http.MethodPost || verb == http.MethodPut || verb == http.MethodPatch
}

func isNilPointer(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func describeAccess(rule *AccessRule) string {
	if rule.IsPublic() {
		return "public"
	}
	if len(rule.Roles) == 0 {
		return "authenticated"
	}
	roles := make([]string, len(rule.Roles))
	for i, role := range rule.Roles {
		roles[i] = string(role)
	}
	return strings.Join(roles, ",")
}

func describeBindings(arity int, bindings []ParameterBinding) []string {
	described := make([]string, arity)
	for i := range described {
		described[i] = "request"
	}
	sorted := slices.Clone(bindings)
	slices.SortFunc(sorted, func(a, b ParameterBinding) int { return a.Index - b.Index })
	for _, b := range sorted {
		if b.Key != "" {
			described[b.Index] = b.Source.String() + ":" + b.Key
		} else {
			described[b.Index] = b.Source.String()
		}
	}
	return described
}
