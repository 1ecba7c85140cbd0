package axon

import (
	"reflect"

	"github.com/toyz/receitas/internal/annotations"
	axonErrors "github.com/toyz/receitas/internal/errors"
	"github.com/toyz/receitas/pkg/axon/validation"
)

// Controller describes its own routes. Describe is called once at startup.
//
//	func (c *RecipesController) Describe(d *axon.Declarer) {
//		d.Prefix("/recipes")
//		d.Handle("Get", "GET /{id} -Roles=ADMIN,DEFAULT", axon.Handler2(c.Get),
//			axon.Param(0, "id", validation.Var("uuid", "ID da receita deve ser um UUID válido")),
//			axon.CurrentUserFull(1))
//	}
type Controller interface {
	Describe(d *Declarer)
}

// NamedController overrides the controller name derived from its type
type NamedController interface {
	ControllerName() string
}

// Declarer records a controller's declarations into a MetadataRegistry
type Declarer struct {
	registry   *MetadataRegistry
	controller string
	errs       *axonErrors.MultipleErrors
}

// RouteDecl allows optional metadata to be attached to a declared route
type RouteDecl struct {
	d      *Declarer
	method string
}

// Describe asks every controller to declare its routes into registry.
// Declaration errors of all controllers are collected and returned together.
func Describe(registry *MetadataRegistry, controllers ...Controller) error {
	errs := axonErrors.NewMultipleErrors()
	for _, controller := range controllers {
		d := &Declarer{registry: registry, controller: ControllerName(controller), errs: errs}
		controller.Describe(d)
	}
	return errs.ErrorOrNil()
}

// ControllerName returns the name used for a controller in the registry
func ControllerName(controller Controller) string {
	if named, ok := controller.(NamedController); ok {
		return named.ControllerName()
	}
	t := reflect.TypeOf(controller)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Name returns the controller being declared
func (d *Declarer) Name() string {
	return d.controller
}

// Prefix sets the path prefix shared by the controller's routes
func (d *Declarer) Prefix(prefix string) {
	d.registry.SetPrefix(d.controller, prefix)
}

// Handle declares a handler method with a route declaration such as
// `GET /{id} -Roles=ADMIN -Summary="..."` and its parameter bindings.
func (d *Declarer) Handle(method, declaration string, handler Invoker, bindings ...ParameterBinding) *RouteDecl {
	decl := &RouteDecl{d: d, method: method}
	origin := axonErrors.Origin{Controller: d.controller, Method: method}

	if _, exists := d.registry.Handler(d.controller, method); exists {
		d.errs.Add(axonErrors.NewRegistrationError(d.controller, method, "handler declared twice"))
		return decl
	}

	route, err := annotations.ParseRoute(declaration)
	if err != nil {
		if syntaxErr, ok := err.(*axonErrors.SyntaxError); ok {
			d.errs.Add(syntaxErr.WithOrigin(origin))
		} else {
			d.errs.Add(axonErrors.WrapParseError(declaration, err))
		}
		return decl
	}

	d.registry.SetRouteMetadata(d.controller, method, route.Verb, NewAxonPath(route.Path))
	d.registry.SetHandler(d.controller, method, handler)
	for _, binding := range bindings {
		d.registry.SetParamBinding(d.controller, method, binding)
	}

	switch {
	case route.Public:
		d.registry.SetAccessRule(d.controller, method, *PublicAccess())
	case len(route.Roles) > 0:
		roles := make([]Role, len(route.Roles))
		for i, role := range route.Roles {
			roles[i] = Role(role)
		}
		d.registry.SetAccessRule(d.controller, method, *RequireRoles(roles...))
	case route.Authenticated:
		d.registry.SetAccessRule(d.controller, method, *DefaultAccessRule())
	}

	if route.Summary != "" {
		d.registry.SetDoc(d.controller, method, "summary", route.Summary)
	}
	return decl
}

// WithBodyShape attaches a whole-body validator checked before the handler runs.
// It cannot be combined with a validated Body binding.
func (r *RouteDecl) WithBodyShape(shape validation.Validator) *RouteDecl {
	r.d.registry.SetBodyShape(r.d.controller, r.method, shape)
	return r
}

// Doc attaches a documentation hint
func (r *RouteDecl) Doc(key, value string) *RouteDecl {
	r.d.registry.SetDoc(r.d.controller, r.method, key, value)
	return r
}
