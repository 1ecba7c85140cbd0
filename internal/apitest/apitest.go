// Package apitest runs controllers behind a real dispatcher for HTTP-level tests
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/toyz/receitas/pkg/axon"
	"github.com/toyz/receitas/pkg/axon/adapters"
	"github.com/toyz/receitas/pkg/axon/auth"
)

// Secret signs the tokens of every harness
const Secret = "apitest-secret"

// Harness is a gin server with the given controllers registered under /api
type Harness struct {
	t       testing.TB
	Handler http.Handler
	Auth    *auth.Authenticator
}

// Result is a decoded response
type Result struct {
	Code    int
	Header  http.Header
	Message string
	Data    any
	Body    map[string]any
}

// New describes and registers controllers and fails the test on any startup error
func New(t testing.TB, controllers ...axon.Controller) *Harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authenticator, err := auth.New(auth.Config{Secret: Secret})
	require.NoError(t, err)

	registry := axon.NewMetadataRegistry()
	require.NoError(t, axon.Describe(registry, controllers...))

	server := adapters.NewDefaultGinAdapter()
	require.NoError(t, axon.NewDispatcher(registry, server, authenticator, axon.WithPrefix("/api")).RegisterAll())

	return &Harness{t: t, Handler: server, Auth: authenticator}
}

// Token issues an access token for the subject
func (h *Harness) Token(subject string, role axon.Role) string {
	h.t.Helper()
	token, err := h.Auth.Issue(axon.Identity{SubjectID: subject, Email: subject + "@example.com", Role: role})
	require.NoError(h.t, err)
	return token
}

// Do performs a request; an empty token sends no Authorization header
func (h *Harness) Do(method, target, token, body string) Result {
	h.t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.Handler.ServeHTTP(rec, req)

	result := Result{Code: rec.Code, Header: rec.Header()}
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &result.Body), rec.Body.String())
	result.Message, _ = result.Body["message"].(string)
	result.Data = result.Body["data"]
	return result
}

// Object returns Data as a JSON object and fails the test otherwise
func (r Result) Object(t testing.TB) map[string]any {
	t.Helper()
	obj, ok := r.Data.(map[string]any)
	require.True(t, ok, "data is %T", r.Data)
	return obj
}
