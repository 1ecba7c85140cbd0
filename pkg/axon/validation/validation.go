// Package validation turns raw request values into typed, validated values.
//
// Rules are declared with go-playground/validator struct tags. Per rule messages
// come from the `msg` tag:
//
//	type LoginRequest struct {
//		Login string `json:"login" validate:"required,email" msg:"*=Login deve ser um email válido"`
//		Senha string `json:"senha" validate:"required,min=6" msg:"required=Senha é obrigatória|min=Senha deve ter pelo menos 6 caracteres"`
//	}
//
// Numeric and boolean fields accept their string forms (query strings, form posts);
// the conversion happens before the rules run and error values always carry the raw input.
package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// MsgInvalidBody is reported when the payload is not a JSON object
const MsgInvalidBody = "Corpo da requisição inválido"

// FieldError describes a single failed rule
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Errors is the ordered list of rule failures for one value
type Errors []FieldError

// Error returns the first message, the one shown to clients
func (e Errors) Error() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Message
}

// First returns the first failure
func (e Errors) First() FieldError {
	if len(e) == 0 {
		return FieldError{}
	}
	return e[0]
}

// Validator validates a raw request value and returns the converted value
type Validator interface {
	Validate(raw any) (any, Errors)
	// Type is the Go type of the value returned on success
	Type() reflect.Type
}

var (
	engineOnce sync.Once
	engine     *validator.Validate
)

// Engine returns the shared go-playground validator, configured to report json field names
func Engine() *validator.Validate {
	engineOnce.Do(func() {
		engine = validator.New(validator.WithRequiredStructEnabled())
		engine.RegisterTagNameFunc(jsonName)
	})
	return engine
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return name
}
