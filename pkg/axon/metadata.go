package axon

import (
	"maps"
	"slices"
	"sync"

	"github.com/toyz/receitas/pkg/axon/validation"
)

// RouteDescriptor is the verb and path declared for one controller method
type RouteDescriptor struct {
	Controller string
	Method     string
	Verb       string
	Path       AxonPath
}

// DocHints holds documentation metadata such as a summary
type DocHints map[string]string

type methodMeta struct {
	route     *RouteDescriptor
	bindings  []ParameterBinding
	access    *AccessRule
	docs      DocHints
	handler   Invoker
	bodyShape validation.Validator
}

type controllerMeta struct {
	prefix  string
	methods []string
	meta    map[string]*methodMeta
}

// MetadataRegistry stores the route, binding and access metadata of every controller handler.
// It is written while controllers describe themselves and read by the Dispatcher.
// Getters return copies so callers cannot mutate stored metadata.
type MetadataRegistry struct {
	mu          sync.RWMutex
	controllers map[string]*controllerMeta
	order       []string
}

// NewMetadataRegistry creates an empty registry
func NewMetadataRegistry() *MetadataRegistry {
	return &MetadataRegistry{controllers: make(map[string]*controllerMeta)}
}

func (r *MetadataRegistry) controller(name string) *controllerMeta {
	c, ok := r.controllers[name]
	if !ok {
		c = &controllerMeta{meta: make(map[string]*methodMeta)}
		r.controllers[name] = c
		r.order = append(r.order, name)
	}
	return c
}

func (r *MetadataRegistry) method(controller, method string) *methodMeta {
	c := r.controller(controller)
	m, ok := c.meta[method]
	if !ok {
		m = &methodMeta{}
		c.meta[method] = m
		c.methods = append(c.methods, method)
	}
	return m
}

func (r *MetadataRegistry) lookup(controller, method string) (*methodMeta, bool) {
	c, ok := r.controllers[controller]
	if !ok {
		return nil, false
	}
	m, ok := c.meta[method]
	return m, ok
}

// SetPrefix sets the path prefix shared by a controller's routes
func (r *MetadataRegistry) SetPrefix(controller, prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controller(controller).prefix = prefix
}

// Prefix returns the controller path prefix, or "" when none was set
func (r *MetadataRegistry) Prefix(controller string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.controllers[controller]; ok {
		return c.prefix
	}
	return ""
}

// Controllers returns the controller names in the order they were first described
func (r *MetadataRegistry) Controllers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// SetRouteMetadata records the verb and path of controller.method
func (r *MetadataRegistry) SetRouteMetadata(controller, method, verb string, path AxonPath) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.method(controller, method).route = &RouteDescriptor{
		Controller: controller,
		Method:     method,
		Verb:       verb,
		Path:       path,
	}
}

// Routes returns the route descriptors of a controller in declaration order
func (r *MetadataRegistry) Routes(controller string) []RouteDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.controllers[controller]
	if !ok {
		return nil
	}
	var routes []RouteDescriptor
	for _, name := range c.methods {
		if route := c.meta[name].route; route != nil {
			routes = append(routes, *route)
		}
	}
	return routes
}

// SetParamBinding appends a parameter binding to controller.method.
// Duplicated indexes are kept so the Dispatcher can report them.
func (r *MetadataRegistry) SetParamBinding(controller, method string, binding ParameterBinding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.method(controller, method)
	m.bindings = append(m.bindings, binding)
}

// ParamBindings returns the bindings of controller.method in the order they were set
func (r *MetadataRegistry) ParamBindings(controller, method string) []ParameterBinding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.lookup(controller, method); ok {
		return slices.Clone(m.bindings)
	}
	return nil
}

// SetAccessRule sets the access rule of controller.method
func (r *MetadataRegistry) SetAccessRule(controller, method string, rule AccessRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule.Roles = slices.Clone(rule.Roles)
	r.method(controller, method).access = &rule
}

// AccessRule returns the access rule of controller.method, or nil when none was declared
func (r *MetadataRegistry) AccessRule(controller, method string) *AccessRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.lookup(controller, method)
	if !ok || m.access == nil {
		return nil
	}
	rule := *m.access
	rule.Roles = slices.Clone(rule.Roles)
	return &rule
}

// SetDoc records a documentation hint (summary, description) for controller.method
func (r *MetadataRegistry) SetDoc(controller, method, key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.method(controller, method)
	if m.docs == nil {
		m.docs = make(DocHints)
	}
	m.docs[key] = value
}

// Docs returns the documentation hints of controller.method
func (r *MetadataRegistry) Docs(controller, method string) DocHints {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.lookup(controller, method); ok && m.docs != nil {
		return maps.Clone(m.docs)
	}
	return DocHints{}
}

// SetHandler records the invoker of controller.method
func (r *MetadataRegistry) SetHandler(controller, method string, handler Invoker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.method(controller, method).handler = handler
}

// Handler returns the invoker of controller.method
func (r *MetadataRegistry) Handler(controller, method string) (Invoker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.lookup(controller, method)
	if !ok || m.handler.IsZero() {
		return Invoker{}, false
	}
	return m.handler, true
}

// SetBodyShape records a whole-body validator for controller.method
func (r *MetadataRegistry) SetBodyShape(controller, method string, shape validation.Validator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.method(controller, method).bodyShape = shape
}

// BodyShape returns the whole-body validator of controller.method, if any
func (r *MetadataRegistry) BodyShape(controller, method string) validation.Validator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.lookup(controller, method); ok {
		return m.bodyShape
	}
	return nil
}
