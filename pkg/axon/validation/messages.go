package validation

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// DefaultMessage renders the fallback message for a failed rule when no `msg` tag covers it
func DefaultMessage(field, tag, param string, kind reflect.Kind) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s é obrigatório", field)
	case "type":
		return fmt.Sprintf("%s possui um tipo inválido", field)
	case "email":
		return fmt.Sprintf("%s deve ser um email válido", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("%s deve ser um UUID válido", field)
	case "min":
		if kind == reflect.String || kind == reflect.Slice {
			return fmt.Sprintf("%s deve ter pelo menos %s caracteres", field, param)
		}
		return fmt.Sprintf("%s deve ser no mínimo %s", field, param)
	case "max":
		if kind == reflect.String || kind == reflect.Slice {
			return fmt.Sprintf("%s deve ter no máximo %s caracteres", field, param)
		}
		return fmt.Sprintf("%s deve ser no máximo %s", field, param)
	case "gt":
		return fmt.Sprintf("%s deve ser maior que %s", field, param)
	case "gte":
		return fmt.Sprintf("%s deve ser maior ou igual a %s", field, param)
	case "lt":
		return fmt.Sprintf("%s deve ser menor que %s", field, param)
	case "lte":
		return fmt.Sprintf("%s deve ser menor ou igual a %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s deve ser um dos valores: %s", field, param)
	case "numeric", "number":
		return fmt.Sprintf("%s deve ser um número", field)
	}
	return fmt.Sprintf("%s é inválido", field)
}

// Rule validates a single string value, such as a path segment
type Rule struct {
	tag     string
	message string
}

// Var creates a Rule from a go-playground tag ("required,uuid"). An empty message
// selects the default message of the failing rule.
func Var(tag, message string) *Rule {
	return &Rule{tag: tag, message: message}
}

// Tag returns the validator tag of the rule
func (r *Rule) Tag() string {
	return r.tag
}

// Type implements Validator
func (r *Rule) Type() reflect.Type {
	return reflect.TypeFor[string]()
}

// Validate implements Validator. Raw must be a string.
func (r *Rule) Validate(raw any) (any, Errors) {
	value, ok := raw.(string)
	if !ok {
		return nil, Errors{r.fail("type", "", raw)}
	}

	if err := Engine().Var(value, r.tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, Errors{r.fail(verrs[0].Tag(), verrs[0].Param(), raw)}
		}
		return nil, Errors{r.fail("type", "", raw)}
	}
	return value, nil
}

func (r *Rule) fail(tag, param string, raw any) FieldError {
	message := r.message
	if message == "" {
		message = DefaultMessage("valor", tag, param, reflect.String)
	}
	return FieldError{Tag: tag, Message: message, Value: raw}
}
