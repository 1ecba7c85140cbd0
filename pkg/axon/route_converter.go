package axon

import (
	"fmt"
	"strings"
)

// RouteConverter renders an AxonPath in the syntax each router understands
type RouteConverter struct{}

// NewRouteConverter creates a new route converter
func NewRouteConverter() *RouteConverter {
	return &RouteConverter{}
}

// ToColon converts to the `:param` syntax shared by gin, echo and fiber.
// Converts: /recipes/{id:uuid} -> /recipes/:id
// The wildcard segment is rendered with the router specific token ("*", "*path").
func (rc *RouteConverter) ToColon(path AxonPath, wildcard string) string {
	var b strings.Builder
	for _, part := range path.Parts() {
		switch part.Type {
		case ParameterPart:
			b.WriteString(":" + part.Value)
		case WildcardPart:
			b.WriteString(wildcard)
		default:
			b.WriteString(part.Value)
		}
	}
	return orRoot(b.String())
}

// ToBrace converts to the `{param}` syntax used by gorilla/mux.
// Converts: /recipes/:id -> /recipes/{id}
func (rc *RouteConverter) ToBrace(path AxonPath) string {
	var b strings.Builder
	for _, part := range path.Parts() {
		switch part.Type {
		case ParameterPart:
			b.WriteString("{" + part.Value + "}")
		case WildcardPart:
			b.WriteString("{path:.*}")
		default:
			b.WriteString(part.Value)
		}
	}
	return orRoot(b.String())
}

// Canonical returns a key where parameter names and syntax are erased, so
// `/recipes/:id` and `/recipes/{recipeId:uuid}` map to the same route.
func (rc *RouteConverter) Canonical(path AxonPath) string {
	var b strings.Builder
	for _, part := range path.Parts() {
		switch part.Type {
		case ParameterPart:
			b.WriteString("{}")
		case WildcardPart:
			b.WriteString("*")
		default:
			b.WriteString(part.Value)
		}
	}
	canonical := b.String()
	if len(canonical) > 1 {
		canonical = strings.TrimRight(canonical, "/")
	}
	return orRoot(canonical)
}

// ValidateAxonPath validates that a path has correct syntax
func (rc *RouteConverter) ValidateAxonPath(path AxonPath) error {
	raw := path.Raw()
	if raw == "" {
		return fmt.Errorf("empty route path")
	}
	if !strings.HasPrefix(raw, "/") {
		return fmt.Errorf("route path must start with '/': %s", raw)
	}

	openBraces := strings.Count(raw, "{")
	closeBraces := strings.Count(raw, "}")
	if openBraces != closeBraces {
		return fmt.Errorf("mismatched braces in path: %s", raw)
	}

	seen := make(map[string]bool)
	for _, part := range path.Params() {
		if part.Value == "" {
			return fmt.Errorf("unnamed parameter in path: %s", raw)
		}
		if seen[part.Value] {
			return fmt.Errorf("duplicate parameter '%s' in path: %s", part.Value, raw)
		}
		seen[part.Value] = true
		if part.ParamType != "" && !IsBuiltinType(part.ParamType) {
			return fmt.Errorf("unknown parameter type '%s' for '%s' in path: %s", part.ParamType, part.Value, raw)
		}
	}

	return nil
}

// DefaultRouteConverter is the shared converter instance
var DefaultRouteConverter = NewRouteConverter()

func orRoot(path string) string {
	if path == "" {
		return "/"
	}
	return path
}
