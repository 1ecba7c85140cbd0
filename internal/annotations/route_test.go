package annotations

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	axonErrors "github.com/toyz/receitas/internal/errors"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Route
	}{
		{
			name:     "verb and path only",
			input:    "GET /",
			expected: Route{Verb: "GET", Path: "/"},
		},
		{
			name:     "lower case verb",
			input:    "delete /:id",
			expected: Route{Verb: "DELETE", Path: "/:id"},
		},
		{
			name:     "public flag",
			input:    "POST /login -Public",
			expected: Route{Verb: "POST", Path: "/login", Public: true},
		},
		{
			name:     "roles list",
			input:    "GET /{id:uuid} -Roles=ADMIN,default",
			expected: Route{Verb: "GET", Path: "/{id:uuid}", Roles: []string{"ADMIN", "DEFAULT"}},
		},
		{
			name:     "summary with spaces",
			input:    `PUT /{id} -Roles=ADMIN -Summary="Atualiza uma receita"`,
			expected: Route{Verb: "PUT", Path: "/{id}", Roles: []string{"ADMIN"}, Summary: "Atualiza uma receita"},
		},
		{
			name:     "explicit authenticated",
			input:    "POST /logout -Authenticated",
			expected: Route{Verb: "POST", Path: "/logout", Authenticated: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, err := ParseRoute(tt.input)
			require.NoError(t, err)

			tt.expected.Raw = tt.input
			assert.Equal(t, &tt.expected, route)
		})
	}
}

func TestParseRoute_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "missing path", input: "GET"},
		{name: "relative path", input: "GET recipes"},
		{name: "unknown verb", input: "FETCH /recipes"},
		{name: "unknown flag", input: "GET / -Cached"},
		{name: "public with roles", input: "GET / -Public -Roles=ADMIN"},
		{name: "roles without value", input: "GET / -Roles"},
		{name: "public with value", input: "GET / -Public=yes"},
		{name: "unquoted summary", input: "GET / -Summary=Lista"},
		{name: "duplicate flag", input: "GET / -Roles=ADMIN -roles=DEFAULT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRoute(tt.input)
			require.Error(t, err)

			var syntaxErr *axonErrors.SyntaxError
			require.True(t, errors.As(err, &syntaxErr))
			assert.Equal(t, tt.input, syntaxErr.Declaration)
		})
	}
}

func TestRoute_HasAccessFlag(t *testing.T) {
	assert.False(t, MustParseRoute("GET /").HasAccessFlag())
	assert.True(t, MustParseRoute("GET / -Public").HasAccessFlag())
	assert.True(t, MustParseRoute("GET / -Roles=ADMIN").HasAccessFlag())
	assert.Panics(t, func() { MustParseRoute("GET / -Nope") })
}
