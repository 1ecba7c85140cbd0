package axon

import (
	"slices"
	"strings"
	"sync"

	axonErrors "github.com/toyz/receitas/internal/errors"
)

// RouteInfo contains metadata about a registered route
type RouteInfo struct {
	// Method is the HTTP method (GET, POST, PUT, PATCH, DELETE)
	Method string

	// Path is the full route path including server and controller prefixes (e.g., "/api/recipes/{id}")
	Path string

	// HandlerName is the name of the handler method
	HandlerName string

	// ControllerName is the name of the controller that owns this route
	ControllerName string

	// Access describes the access rule ("public", "authenticated" or the allowed roles)
	Access string

	// Summary is the documentation hint declared with the route
	Summary string

	// Bindings lists the parameter sources in argument order (e.g., "path:id", "identity")
	Bindings []string
}

// RouteRegistry provides access to all registered routes in the application
type RouteRegistry interface {
	// GetAllRoutes returns all registered routes in registration order
	GetAllRoutes() []RouteInfo

	// GetRoutesByController returns routes filtered by controller name
	GetRoutesByController(controllerName string) []RouteInfo

	// GetRoutesByMethod returns routes filtered by HTTP method
	GetRoutesByMethod(method string) []RouteInfo

	// RegisterRoute adds a route, failing when the same method and path are already taken
	RegisterRoute(route RouteInfo) error
}

// InMemoryRouteRegistry implements RouteRegistry using an in-memory slice
type InMemoryRouteRegistry struct {
	mu     sync.RWMutex
	routes []RouteInfo
	keys   map[string]int
}

// NewInMemoryRouteRegistry creates a new in-memory route registry
func NewInMemoryRouteRegistry() *InMemoryRouteRegistry {
	return &InMemoryRouteRegistry{
		routes: make([]RouteInfo, 0),
		keys:   make(map[string]int),
	}
}

// RouteKey returns the conflict key of a route. Parameter names are erased so
// `/recipes/:id` and `/recipes/{recipeId}` collide.
func RouteKey(method, path string) string {
	return strings.ToUpper(method) + " " + DefaultRouteConverter.Canonical(AxonPath(path))
}

// GetAllRoutes returns all registered routes
func (r *InMemoryRouteRegistry) GetAllRoutes() []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.routes)
}

// GetRoutesByController returns routes filtered by controller name
func (r *InMemoryRouteRegistry) GetRoutesByController(controllerName string) []RouteInfo {
	return r.filter(func(route RouteInfo) bool { return route.ControllerName == controllerName })
}

// GetRoutesByMethod returns routes filtered by HTTP method
func (r *InMemoryRouteRegistry) GetRoutesByMethod(method string) []RouteInfo {
	return r.filter(func(route RouteInfo) bool { return strings.EqualFold(route.Method, method) })
}

// RegisterRoute adds a route to the registry
func (r *InMemoryRouteRegistry) RegisterRoute(route RouteInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := RouteKey(route.Method, route.Path)
	if idx, exists := r.keys[key]; exists {
		existing := r.routes[idx]
		return axonErrors.NewRouteConflictError(route.Method, route.Path,
			axonErrors.Origin{Controller: existing.ControllerName, Method: existing.HandlerName},
			axonErrors.Origin{Controller: route.ControllerName, Method: route.HandlerName})
	}

	r.keys[key] = len(r.routes)
	r.routes = append(r.routes, route)
	return nil
}

func (r *InMemoryRouteRegistry) filter(keep func(RouteInfo) bool) []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []RouteInfo
	for _, route := range r.routes {
		if keep(route) {
			filtered = append(filtered, route)
		}
	}
	return filtered
}
