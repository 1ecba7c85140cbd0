package axon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAxonPath_Parts(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected []AxonPathPart
	}{
		{
			name:     "static",
			path:     "/recipes",
			expected: []AxonPathPart{{Type: StaticPart, Value: "/recipes"}},
		},
		{
			name: "typed brace parameter",
			path: "/recipes/{id:uuid}",
			expected: []AxonPathPart{
				{Type: StaticPart, Value: "/recipes/"},
				{Type: ParameterPart, Value: "id", ParamType: "uuid"},
			},
		},
		{
			name: "colon parameter followed by static",
			path: "/users/:id/recipes",
			expected: []AxonPathPart{
				{Type: StaticPart, Value: "/users/"},
				{Type: ParameterPart, Value: "id"},
				{Type: StaticPart, Value: "/recipes"},
			},
		},
		{
			name: "wildcard",
			path: "/files/*",
			expected: []AxonPathPart{
				{Type: StaticPart, Value: "/files/"},
				{Type: WildcardPart, Value: "*"},
			},
		},
		{
			name:     "colon inside a segment stays static",
			path:     "/time/10:30",
			expected: []AxonPathPart{{Type: StaticPart, Value: "/time/10:30"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewAxonPath(tt.path).Parts())
		})
	}
}

func TestAxonPath_Param(t *testing.T) {
	path := NewAxonPath("/users/{userId}/recipes/:id")

	part, ok := path.Param("id")
	assert.True(t, ok)
	assert.Equal(t, "id", part.Value)

	_, ok = path.Param("missing")
	assert.False(t, ok)
	assert.Len(t, path.Params(), 2)
}

func TestAxonPath_Join(t *testing.T) {
	assert.Equal(t, AxonPath("/api/recipes/{id}"), NewAxonPath("/api").Join("/recipes").Join("/{id}"))
	assert.Equal(t, AxonPath("/api/recipes"), NewAxonPath("/api/").Join("recipes/"))
	assert.Equal(t, AxonPath("/api"), NewAxonPath("/api").Join("/"))
	assert.Equal(t, AxonPath("/health"), NewAxonPath("").Join("").Join("/health"))
	assert.Equal(t, AxonPath("/"), NewAxonPath("").Join(""))
}

func TestRouteConverter_ToColon(t *testing.T) {
	tests := []struct {
		path     string
		wildcard string
		expected string
	}{
		{"/recipes/{id:uuid}", "*", "/recipes/:id"},
		{"/recipes/:id", "*", "/recipes/:id"},
		{"/files/*", "*path", "/files/*path"},
		{"/", "*", "/"},
		{"", "*", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, DefaultRouteConverter.ToColon(NewAxonPath(tt.path), tt.wildcard))
		})
	}
}

func TestRouteConverter_ToBrace(t *testing.T) {
	assert.Equal(t, "/recipes/{id}", DefaultRouteConverter.ToBrace(NewAxonPath("/recipes/:id")))
	assert.Equal(t, "/recipes/{id}", DefaultRouteConverter.ToBrace(NewAxonPath("/recipes/{id:uuid}")))
	assert.Equal(t, "/files/{path:.*}", DefaultRouteConverter.ToBrace(NewAxonPath("/files/*")))
}

func TestRouteConverter_Canonical(t *testing.T) {
	assert.Equal(t, "/recipes/{}", DefaultRouteConverter.Canonical(NewAxonPath("/recipes/:id")))
	assert.Equal(t, "/recipes/{}", DefaultRouteConverter.Canonical(NewAxonPath("/recipes/{recipeId:uuid}/")))
	assert.Equal(t, "/files/*", DefaultRouteConverter.Canonical(NewAxonPath("/files/*")))
	assert.Equal(t, "/", DefaultRouteConverter.Canonical(NewAxonPath("/")))
}

func TestRouteConverter_ValidateAxonPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "valid", path: "/recipes/{id:int}"},
		{name: "valid colon", path: "/recipes/:id"},
		{name: "empty", path: "", wantErr: "empty route path"},
		{name: "relative", path: "recipes", wantErr: "must start with '/'"},
		{name: "mismatched braces", path: "/recipes/{id", wantErr: "mismatched braces"},
		{name: "duplicate parameter", path: "/a/{id}/b/{id}", wantErr: "duplicate parameter 'id'"},
		{name: "unknown type", path: "/a/{id:decimal}", wantErr: "unknown parameter type 'decimal'"},
		{name: "unnamed", path: "/a/{}", wantErr: "unnamed parameter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DefaultRouteConverter.ValidateAxonPath(NewAxonPath(tt.path))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
