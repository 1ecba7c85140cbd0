package middleware

import (
	"net/http"
	"strings"

	"github.com/toyz/receitas/pkg/axon"
)

var (
	corsMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}, ", ")
	corsHeaders = strings.Join([]string{"Content-Type", "Authorization", RequestIDHeader}, ", ")
)

// CORS sets the cross origin headers and answers preflight requests before routing
type CORS struct {
	origin      string
	credentials bool
}

// NewCORS creates the middleware. An empty origin allows any origin.
func NewCORS(origin string, credentials bool) *CORS {
	if origin == "" {
		origin = "*"
	}
	return &CORS{origin: origin, credentials: credentials}
}

// Handle implements axon.MiddlewareFunc
func (m *CORS) Handle(next axon.HandlerFunc) axon.HandlerFunc {
	return func(c axon.RequestContext) error {
		res := c.Response()
		origin := m.origin
		// browsers reject a wildcard together with credentials
		if origin == "*" && m.credentials {
			if requested := c.Request().Header("Origin"); requested != "" {
				origin = requested
				res.SetHeader("Vary", "Origin")
			}
		}
		res.SetHeader("Access-Control-Allow-Origin", origin)
		res.SetHeader("Access-Control-Allow-Methods", corsMethods)
		res.SetHeader("Access-Control-Allow-Headers", corsHeaders)
		res.SetHeader("Access-Control-Expose-Headers", RequestIDHeader)
		if m.credentials {
			res.SetHeader("Access-Control-Allow-Credentials", "true")
		}

		if c.Method() == http.MethodOptions {
			return res.NoContent(http.StatusNoContent)
		}
		return next(c)
	}
}
