// Package axon provides the route registration and request dispatch runtime used by the receitas API.
package axon

import "net/http"

// Default success messages.
const (
	MsgOK      = "Operação realizada com sucesso"
	MsgCreated = "Recurso criado com sucesso"
)

// StructuredResponse is implemented by handler results that choose their own status code and message.
// Anything else returned by a handler is treated as a raw value and wrapped.
type StructuredResponse interface {
	StatusCode() int
	ResponseMessage() string
	ResponseData() (any, bool)
}

// Response represents an HTTP response with custom status code, message and optional payload.
//
// Example usage:
//
//	func (c *RecipesController) Create(ctx context.Context, req CreateRecipeRequest, userID string) (any, error) {
//		recipe, err := c.service.Create(ctx, req, userID)
//		if err != nil {
//			return nil, err
//		}
//		return axon.Created(recipe, "Receita criada com sucesso"), nil
//	}
type Response struct {
	Code    int
	Message string
	Data    any
	HasData bool
}

// StatusCode implements StructuredResponse
func (r *Response) StatusCode() int { return r.Code }

// ResponseMessage implements StructuredResponse
func (r *Response) ResponseMessage() string { return r.Message }

// ResponseData implements StructuredResponse
func (r *Response) ResponseData() (any, bool) { return r.Data, r.HasData }

// NewResponse creates a new Response with the specified status code, message and payload
func NewResponse(statusCode int, message string, data any) *Response {
	return &Response{
		Code:    statusCode,
		Message: message,
		Data:    data,
		HasData: data != nil,
	}
}

// OK creates a 200 OK response with the given payload
func OK(data any, message ...string) *Response {
	return NewResponse(http.StatusOK, pick(message, MsgOK), data)
}

// Created creates a 201 Created response with the given payload
func Created(data any, message ...string) *Response {
	return NewResponse(http.StatusCreated, pick(message, MsgCreated), data)
}

// Message creates a 200 response that carries only a message
func Message(message string) *Response {
	return NewResponse(http.StatusOK, message, nil)
}

// Envelope is the wire shape of every response: {"message": ..., "data"?: ...}
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// rawEnvelope wraps handler results that are not a StructuredResponse
type rawEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PageMeta describes the position of a page inside a result set
type PageMeta struct {
	CurrentPage     int  `json:"currentPage"`
	ItemsPerPage    int  `json:"itemsPerPage"`
	TotalItems      int  `json:"totalItems"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// Page is the paginated payload returned by list endpoints
type Page[T any] struct {
	Items      []T      `json:"items"`
	Pagination PageMeta `json:"pagination"`
}

// PageRequest is the page/limit pair accepted by list endpoints. Bind it with
// axon.Query(i, validation.For[axon.PageRequest]()) or embed it in a larger query struct.
type PageRequest struct {
	Page  int `json:"page" default:"1" validate:"gte=1" msg:"type=Página deve ser um número inteiro|gte=Página deve ser maior que 0"`
	Limit int `json:"limit" default:"10" validate:"gte=1,lte=100" msg:"type=Limite deve ser um número inteiro|gte=Limite deve ser maior que 0|lte=Limite máximo é 100 itens por página"`
}

// Offset returns the number of rows skipped before the page
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewPage builds a Page; a nil items slice is serialized as an empty list
func NewPage[T any](items []T, page, limit, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Page[T]{
		Items: items,
		Pagination: PageMeta{
			CurrentPage:     page,
			ItemsPerPage:    limit,
			TotalItems:      total,
			TotalPages:      totalPages,
			HasNextPage:     page < totalPages,
			HasPreviousPage: page > 1,
		},
	}
}

func pick(values []string, fallback string) string {
	if len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return fallback
}
