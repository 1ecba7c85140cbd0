package axon

import (
	"bytes"
	"encoding/json"
	"reflect"
	"slices"

	"github.com/toyz/receitas/pkg/axon/validation"
)

// Resolver builds the argument list of one handler from a request.
// It is built once per route and holds no request state.
type Resolver struct {
	arity    int
	bindings []ParameterBinding
	parsers  map[int]SegmentParser
}

// NewResolver creates a resolver for a handler with arity parameters served on path
func NewResolver(path AxonPath, arity int, bindings []ParameterBinding) *Resolver {
	r := &Resolver{
		arity:    arity,
		bindings: append([]ParameterBinding(nil), bindings...),
		parsers:  make(map[int]SegmentParser),
	}
	slices.SortStableFunc(r.bindings, func(a, b ParameterBinding) int { return a.Index - b.Index })
	for _, b := range bindings {
		if b.Source != PathSegment {
			continue
		}
		if part, ok := path.Param(b.Key); ok && part.ParamType != "" {
			if parser, ok := GetBuiltinParser(part.ParamType); ok {
				r.parsers[b.Index] = parser
			}
		}
	}
	return r
}

// Resolve returns the ordered handler arguments. Slots without a binding receive the
// RequestContext itself. The first failing binding stops resolution with validation.Errors.
func (r *Resolver) Resolve(c RequestContext) ([]any, error) {
	args := make([]any, r.arity)
	bound := make([]bool, r.arity)

	for _, b := range r.bindings {
		value, err := r.extract(c, b)
		if err != nil {
			return nil, err
		}
		args[b.Index] = value
		bound[b.Index] = true
	}

	for i := range args {
		if !bound[i] {
			args[i] = c
		}
	}
	return args, nil
}

func (r *Resolver) extract(c RequestContext, b ParameterBinding) (any, error) {
	switch b.Source {
	case PathSegment:
		return r.pathValue(c, b)

	case QueryBag:
		if b.Validator == nil {
			return NewQueryMap(c.QueryParams()), nil
		}
		value, errs := b.Validator.Validate(c.QueryParams())
		if len(errs) > 0 {
			return nil, errs
		}
		return value, nil

	case RequestBody:
		body, err := c.Request().Body()
		if err != nil {
			return nil, err
		}
		if b.Validator != nil {
			value, errs := b.Validator.Validate(body)
			if len(errs) > 0 {
				return nil, errs
			}
			return value, nil
		}
		return decodeBodyMap(body)

	case AuthenticatedIdentity, AuthenticatedIdentityFull:
		identity := CurrentIdentity(c)
		if identity == nil {
			return nil, ErrUnauthorized(MsgTokenRequired)
		}
		if b.Source == AuthenticatedIdentity {
			return identity.SubjectID, nil
		}
		return *identity, nil
	}
	return nil, ErrInternalServerError("")
}

func (r *Resolver) pathValue(c RequestContext, b ParameterBinding) (any, error) {
	raw := c.Param(b.Key)
	var value any = raw

	if b.Validator != nil {
		validated, errs := b.Validator.Validate(raw)
		if len(errs) > 0 {
			for i := range errs {
				if errs[i].Field == "" {
					errs[i].Field = b.Key
				}
			}
			return nil, errs
		}
		value = validated
	}

	parser, typed := r.parsers[b.Index]
	if !typed {
		return value, nil
	}
	text, _ := value.(string)
	parsed, err := parser.Parse(text)
	if err != nil {
		return nil, validation.Errors{{
			Field:   b.Key,
			Tag:     "type",
			Message: validation.DefaultMessage(b.Key, "type", "", reflect.String),
			Value:   raw,
		}}
	}
	return parsed, nil
}

func decodeBodyMap(body []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return nil, validation.Errors{{Tag: "type", Message: validation.MsgInvalidBody}}
	}
	return payload, nil
}
