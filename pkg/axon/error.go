package axon

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/toyz/receitas/pkg/axon/validation"
)

// Default client-facing messages for each status in the error taxonomy.
const (
	MsgBadRequest     = "Dados inválidos"
	MsgUnauthorized   = "Acesso não autorizado"
	MsgTokenRequired  = "Token de acesso requerido"
	MsgTokenInvalid   = "Token inválido"
	MsgForbidden      = "Acesso negado"
	MsgNotFound       = "Recurso não encontrado"
	MsgConflict       = "Conflito de dados"
	MsgTooManyRequest = "Muitas requisições"
	MsgBodyTooLarge   = "Corpo da requisição excede o tamanho máximo permitido"
	MsgInternalError  = "Erro interno do servidor"
)

// HttpError represents an HTTP error with a specific status code and message.
// Message is sent to the client; Cause never is.
type HttpError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Cause      error  `json:"-"`
}

// Error implements the error interface
func (e *HttpError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("HTTP %d: %s: %v", e.StatusCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap returns the underlying cause
func (e *HttpError) Unwrap() error {
	return e.Cause
}

// NewHttpError creates a new HttpError with the given status code and message
func NewHttpError(statusCode int, message string) *HttpError {
	return &HttpError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// WithCause attaches an internal cause that is logged but never serialized
func (e *HttpError) WithCause(err error) *HttpError {
	e.Cause = err
	return e
}

// ErrBadRequest creates a 400 Bad Request error
func ErrBadRequest(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, orDefault(message, MsgBadRequest))
}

// ErrUnauthorized creates a 401 Unauthorized error
func ErrUnauthorized(message string) *HttpError {
	return NewHttpError(http.StatusUnauthorized, orDefault(message, MsgUnauthorized))
}

// ErrForbidden creates a 403 Forbidden error
func ErrForbidden(message string) *HttpError {
	return NewHttpError(http.StatusForbidden, orDefault(message, MsgForbidden))
}

// ErrNotFound creates a 404 Not Found error
func ErrNotFound(message string) *HttpError {
	return NewHttpError(http.StatusNotFound, orDefault(message, MsgNotFound))
}

// ErrConflict creates a 409 Conflict error
func ErrConflict(message string) *HttpError {
	return NewHttpError(http.StatusConflict, orDefault(message, MsgConflict))
}

// ErrTooManyRequests creates a 429 Too Many Requests error
func ErrTooManyRequests(message string) *HttpError {
	return NewHttpError(http.StatusTooManyRequests, orDefault(message, MsgTooManyRequest))
}

// ErrPayloadTooLarge creates a 413 Payload Too Large error
func ErrPayloadTooLarge(message string) *HttpError {
	return NewHttpError(http.StatusRequestEntityTooLarge, orDefault(message, MsgBodyTooLarge))
}

// ErrInternalServerError creates a 500 Internal Server Error
func ErrInternalServerError(message string) *HttpError {
	return NewHttpError(http.StatusInternalServerError, orDefault(message, MsgInternalError))
}

// AsHttpError returns err as an *HttpError when one is in its chain.
// validation.Errors become a 400 carrying the first message. Anything else
// collapses into a generic 500 so internal text never reaches a client.
func AsHttpError(err error) *HttpError {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		return ErrBadRequest(validationErrs.Error()).WithCause(err)
	}
	return ErrInternalServerError("").WithCause(err)
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
