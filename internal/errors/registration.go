package errors

import "fmt"

// SyntaxError is raised when a route declaration cannot be parsed
type SyntaxError struct {
	*BaseError
	Declaration string
	Position    int
}

// NewSyntaxError creates a new syntax error for a route declaration
func NewSyntaxError(declaration, message string, position int) *SyntaxError {
	return &SyntaxError{
		BaseError:   Newf(SyntaxErrorCode, "invalid route declaration %q: %s", declaration, message),
		Declaration: declaration,
		Position:    position,
	}
}

// WithOrigin adds origin information to the error
func (e *SyntaxError) WithOrigin(origin Origin) *SyntaxError {
	e.BaseError.WithOrigin(origin)
	return e
}

// RegistrationError is raised when a handler's metadata is inconsistent
type RegistrationError struct {
	*BaseError
	Verb   string
	Path   string
	Reason string
}

// NewRegistrationError creates a new registration error for controller.method
func NewRegistrationError(controller, method, reason string) *RegistrationError {
	return &RegistrationError{
		BaseError: Newf(RegistrationErrorCode, "failed to register handler: %s", reason).
			WithOrigin(Origin{Controller: controller, Method: method}),
		Reason: reason,
	}
}

// WithRoute records the route being registered
func (e *RegistrationError) WithRoute(verb, path string) *RegistrationError {
	e.Verb = verb
	e.Path = path
	e.BaseError.WithContext("route", verb+" "+path)
	return e
}

// WithSuggestions adds helpful suggestions
func (e *RegistrationError) WithSuggestions(suggestions ...string) *RegistrationError {
	e.BaseError.WithSuggestions(suggestions...)
	return e
}

// WithCause adds an underlying error cause
func (e *RegistrationError) WithCause(cause error) *RegistrationError {
	e.BaseError.WithCause(cause)
	return e
}

// ConflictError is raised when two handlers claim the same verb and path
type ConflictError struct {
	*BaseError
	Verb     string
	Path     string
	Existing Origin
}

// NewRouteConflictError creates a conflict error for a duplicate (verb, path)
func NewRouteConflictError(verb, path string, existing, incoming Origin) *ConflictError {
	message := fmt.Sprintf("route %s %s is already registered by %s", verb, path, existing.String())
	return &ConflictError{
		BaseError: New(ConflictErrorCode, message).
			WithOrigin(incoming).
			WithSuggestions(
				"Change the path or verb of one of the handlers",
				"Check the controller prefixes for overlapping paths",
			),
		Verb:     verb,
		Path:     path,
		Existing: existing,
	}
}

// ConfigurationError is raised for invalid or missing configuration
type ConfigurationError struct {
	*BaseError
	Key string
}

// NewConfigurationError creates a configuration error for the given key
func NewConfigurationError(key, message string) *ConfigurationError {
	return &ConfigurationError{
		BaseError: Newf(ConfigurationErrorCode, "invalid configuration %s: %s", key, message),
		Key:       key,
	}
}

// WithSuggestions adds helpful suggestions
func (e *ConfigurationError) WithSuggestions(suggestions ...string) *ConfigurationError {
	e.BaseError.WithSuggestions(suggestions...)
	return e
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(source, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration", operation)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithOrigin(Origin{Source: source}).
		WithContext("operation", operation)
}

// WrapStorageError wraps database connectivity and migration errors
func WrapStorageError(operation string, cause error) *BaseError {
	return Wrap(StorageErrorCode, fmt.Sprintf("failed to %s", operation), cause).
		WithContext("operation", operation)
}

// WrapParseError wraps an error with a "failed to parse" message
func WrapParseError(item string, cause error) *SyntaxError {
	return &SyntaxError{
		BaseError:   Wrap(SyntaxErrorCode, fmt.Sprintf("failed to parse %s", item), cause),
		Declaration: item,
	}
}
