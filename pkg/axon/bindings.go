package axon

import (
	"reflect"

	"github.com/toyz/receitas/pkg/axon/validation"
)

// BindingSource is where a handler parameter takes its value from
type BindingSource int

const (
	PathSegment BindingSource = iota
	QueryBag
	RequestBody
	AuthenticatedIdentity
	AuthenticatedIdentityFull
)

// String returns the source name
func (s BindingSource) String() string {
	switch s {
	case PathSegment:
		return "path"
	case QueryBag:
		return "query"
	case RequestBody:
		return "body"
	case AuthenticatedIdentity:
		return "identity"
	case AuthenticatedIdentityFull:
		return "identity-full"
	default:
		return "unknown"
	}
}

// ParameterBinding associates a handler parameter position with a request source
type ParameterBinding struct {
	Index     int
	Source    BindingSource
	Key       string
	Validator validation.Validator
}

// Param binds a named path segment
func Param(index int, key string, validator ...validation.Validator) ParameterBinding {
	return ParameterBinding{Index: index, Source: PathSegment, Key: key, Validator: first(validator)}
}

// Query binds the query string, decoded by the optional schema
func Query(index int, validator ...validation.Validator) ParameterBinding {
	return ParameterBinding{Index: index, Source: QueryBag, Validator: first(validator)}
}

// Body binds the JSON request body, decoded by the optional schema
func Body(index int, validator ...validation.Validator) ParameterBinding {
	return ParameterBinding{Index: index, Source: RequestBody, Validator: first(validator)}
}

// CurrentUser binds the subject id of the authenticated identity
func CurrentUser(index int) ParameterBinding {
	return ParameterBinding{Index: index, Source: AuthenticatedIdentity}
}

// CurrentUserFull binds the whole authenticated identity
func CurrentUserFull(index int) ParameterBinding {
	return ParameterBinding{Index: index, Source: AuthenticatedIdentityFull}
}

var (
	stringType         = reflect.TypeFor[string]()
	queryMapType       = reflect.TypeFor[QueryMap]()
	bodyMapType        = reflect.TypeFor[map[string]any]()
	identityType       = reflect.TypeFor[Identity]()
	requestContextType = reflect.TypeFor[RequestContext]()
)

// Produces returns the Go type the binding resolves to on the given route path
func (b ParameterBinding) Produces(path AxonPath) reflect.Type {
	switch b.Source {
	case PathSegment:
		if part, ok := path.Param(b.Key); ok && part.ParamType != "" {
			if parser, ok := GetBuiltinParser(part.ParamType); ok {
				return parser.Type
			}
		}
		return stringType
	case QueryBag:
		if b.Validator != nil {
			return b.Validator.Type()
		}
		return queryMapType
	case RequestBody:
		if b.Validator != nil {
			return b.Validator.Type()
		}
		return bodyMapType
	case AuthenticatedIdentity:
		return stringType
	case AuthenticatedIdentityFull:
		return identityType
	}
	return nil
}

// needsIdentity reports whether the binding reads the authenticated identity
func (b ParameterBinding) needsIdentity() bool {
	return b.Source == AuthenticatedIdentity || b.Source == AuthenticatedIdentityFull
}

func first(validators []validation.Validator) validation.Validator {
	if len(validators) == 0 {
		return nil
	}
	return validators[0]
}
