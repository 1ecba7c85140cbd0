package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *BaseError
		expected string
	}{
		{
			name:     "message only",
			err:      New(ValidationErrorCode, "bad value"),
			expected: "bad value",
		},
		{
			name:     "with controller origin",
			err:      New(RegistrationErrorCode, "bad binding").WithOrigin(Origin{Controller: "RecipesController", Method: "Get"}),
			expected: "RecipesController.Get: bad binding",
		},
		{
			name:     "with cause",
			err:      Wrap(StorageErrorCode, "failed to ping", stderrors.New("connection refused")),
			expected: "failed to ping: connection refused",
		},
		{
			name:     "with source origin",
			err:      New(ConfigurationErrorCode, "bad yaml").WithOrigin(Origin{Source: "config.yaml"}),
			expected: "config.yaml: bad yaml",
		},
		{
			name:     "formatted registration error",
			err:      NewRegistrationError("UsersController", "Get", "duplicate binding").BaseError,
			expected: "UsersController.Get: failed to register handler: duplicate binding",
		},
		{
			name:     "formatted configuration error",
			err:      NewConfigurationError("JWT_SECRET", "must not be empty").BaseError,
			expected: "invalid configuration JWT_SECRET: must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "ConflictError", ConflictErrorCode.String())
	assert.Equal(t, "RegistrationError", RegistrationErrorCode.String())
	assert.Equal(t, "UnknownError", ErrorCode(99).String())
}

func TestNewRouteConflictError(t *testing.T) {
	err := NewRouteConflictError("GET", "/api/recipes/{}",
		Origin{Controller: "RecipesController", Method: "Get"},
		Origin{Controller: "LegacyController", Method: "Find"})

	assert.Equal(t, ConflictErrorCode, err.ErrorCode())
	assert.Contains(t, err.Error(), "LegacyController.Find")
	assert.Contains(t, err.Error(), "already registered by RecipesController.Get")
	assert.NotEmpty(t, err.Suggestions())

	var axonErr AxonError = err
	assert.Equal(t, "LegacyController", axonErr.Origin().Controller)
}

func TestMultipleErrors(t *testing.T) {
	collected := NewMultipleErrors()
	require.NoError(t, collected.ErrorOrNil())

	first := NewRegistrationError("UsersController", "Get", "duplicate binding index 0")
	collected.Add(first)
	assert.Equal(t, first.Error(), collected.Error())

	collected.Add(NewConfigurationError("JWT_SECRET", "must not be empty"))
	assert.Contains(t, collected.Error(), "multiple errors (2 total)")
	assert.True(t, collected.HasCode(ConfigurationErrorCode))
	assert.False(t, collected.HasCode(SyntaxErrorCode))

	var regErr *RegistrationError
	require.True(t, stderrors.As(collected.ErrorOrNil(), &regErr))
	assert.Equal(t, "duplicate binding index 0", regErr.Reason)
}
