package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/receitas/pkg/axon"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer interface {
	axon.WebServerInterface
	http.Handler
}

var allAdapters = map[string]func() testServer{
	"gin":   func() testServer { return NewDefaultGinAdapter() },
	"echo":  func() testServer { return NewDefaultEchoAdapter() },
	"fiber": func() testServer { return NewDefaultFiberAdapter() },
	"mux":   func() testServer { return NewDefaultMuxAdapter() },
}

type ctxKey struct{}

func serve(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	decoded := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

func TestAdapters_PathParameters(t *testing.T) {
	for name, build := range allAdapters {
		t.Run(name, func(t *testing.T) {
			server := build()
			server.RegisterRoute(http.MethodGet, axon.NewAxonPath("/items/{id}"), func(c axon.RequestContext) error {
				return c.Response().JSON(http.StatusOK, map[string]any{"id": c.Param("id"), "names": c.ParamNames()})
			})
			server.RegisterRoute(http.MethodGet, axon.NewAxonPath("/files/*"), func(c axon.RequestContext) error {
				return c.Response().JSON(http.StatusOK, map[string]any{"path": c.Param("*")})
			})

			rec, body := serve(t, server, http.MethodGet, "/items/42", "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "42", body["id"])
			assert.Equal(t, []any{"id"}, body["names"])

			rec, body = serve(t, server, http.MethodGet, "/files/a/b.txt", "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "a/b.txt", body["path"])
		})
	}
}

func TestAdapters_QueryParameters(t *testing.T) {
	for name, build := range allAdapters {
		t.Run(name, func(t *testing.T) {
			server := build()
			server.RegisterRoute(http.MethodGet, axon.NewAxonPath("/search"), func(c axon.RequestContext) error {
				return c.Response().JSON(http.StatusOK, map[string]any{
					"q":    c.QueryParam("q"),
					"tags": c.QueryParams()["tag"],
				})
			})

			_, body := serve(t, server, http.MethodGet, "/search?q=bolo&tag=doce&tag=festa", "")
			assert.Equal(t, "bolo", body["q"])
			assert.Equal(t, []any{"doce", "festa"}, body["tags"])
		})
	}
}

func TestAdapters_MiddlewareSharesValuesAndContext(t *testing.T) {
	for name, build := range allAdapters {
		t.Run(name, func(t *testing.T) {
			server := build()

			var order []string
			server.Use(func(next axon.HandlerFunc) axon.HandlerFunc {
				return func(c axon.RequestContext) error {
					order = append(order, "global")
					c.SetContext(context.WithValue(c.Context(), ctxKey{}, "from-context"))
					return next(c)
				}
			})
			routeMiddleware := func(next axon.HandlerFunc) axon.HandlerFunc {
				return func(c axon.RequestContext) error {
					order = append(order, "route")
					c.Set("value", "from-middleware")
					return next(c)
				}
			}

			server.RegisterRoute(http.MethodGet, axon.NewAxonPath("/values"), func(c axon.RequestContext) error {
				order = append(order, "handler")
				return c.Response().JSON(http.StatusOK, map[string]any{
					"value":   c.Get("value"),
					"context": c.Context().Value(ctxKey{}),
				})
			}, routeMiddleware)

			rec, body := serve(t, server, http.MethodGet, "/values", "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "from-middleware", body["value"])
			assert.Equal(t, "from-context", body["context"])
			assert.Equal(t, []string{"global", "route", "handler"}, order)
		})
	}
}

func TestAdapters_MiddlewareErrorStopsChain(t *testing.T) {
	for name, build := range allAdapters {
		t.Run(name, func(t *testing.T) {
			server := build()

			called := false
			deny := func(next axon.HandlerFunc) axon.HandlerFunc {
				return func(c axon.RequestContext) error {
					return axon.ErrForbidden("")
				}
			}
			server.RegisterRoute(http.MethodGet, axon.NewAxonPath("/denied"), func(c axon.RequestContext) error {
				called = true
				return nil
			}, deny)

			rec, body := serve(t, server, http.MethodGet, "/denied", "")
			assert.False(t, called)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, map[string]any{"message": axon.MsgForbidden}, body)
		})
	}
}

func TestAdapters_HandlerErrorUsesEnvelope(t *testing.T) {
	for name, build := range allAdapters {
		t.Run(name, func(t *testing.T) {
			server := build()
			server.RegisterRoute(http.MethodGet, axon.NewAxonPath("/fail"), func(c axon.RequestContext) error {
				return assert.AnError
			})

			rec, body := serve(t, server, http.MethodGet, "/fail", "")
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, map[string]any{"message": axon.MsgInternalError}, body)
			assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
		})
	}
}

func TestAdapters_UnknownRouteUsesEnvelope(t *testing.T) {
	for name, build := range allAdapters {
		t.Run(name, func(t *testing.T) {
			server := build()
			server.RegisterRoute(http.MethodGet, axon.NewAxonPath("/known"), func(c axon.RequestContext) error {
				return c.Response().NoContent(http.StatusNoContent)
			})

			rec, body := serve(t, server, http.MethodGet, "/unknown", "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, map[string]any{"message": axon.MsgNotFound}, body)

			rec, _ = serve(t, server, http.MethodGet, "/known", "")
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Empty(t, rec.Body.String())
		})
	}
}

func TestAdapters_GlobalMiddlewareRunsForUnmatchedRequests(t *testing.T) {
	for name, build := range allAdapters {
		t.Run(name, func(t *testing.T) {
			server := build()
			server.Use(func(next axon.HandlerFunc) axon.HandlerFunc {
				return func(c axon.RequestContext) error {
					c.Response().SetHeader("Access-Control-Allow-Origin", "*")
					if c.Method() == http.MethodOptions {
						return c.Response().NoContent(http.StatusNoContent)
					}
					return next(c)
				}
			})
			server.RegisterRoute(http.MethodGet, axon.NewAxonPath("/known"), func(c axon.RequestContext) error {
				return c.Response().JSON(http.StatusOK, map[string]any{"message": "ok"})
			})

			for _, target := range []string{"/known", "/unknown"} {
				rec, _ := serve(t, server, http.MethodOptions, target, "")
				assert.Equal(t, http.StatusNoContent, rec.Code, target)
				assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), target)
			}

			rec, body := serve(t, server, http.MethodGet, "/unknown", "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, axon.MsgNotFound, body["message"])
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestAdapters_BodyIsBuffered(t *testing.T) {
	for name, build := range allAdapters {
		t.Run(name, func(t *testing.T) {
			server := build()
			server.RegisterRoute(http.MethodPost, axon.NewAxonPath("/echo"), func(c axon.RequestContext) error {
				first, err := c.Request().Body()
				if err != nil {
					return err
				}
				second, _ := c.Request().Body()
				return c.Response().JSON(http.StatusCreated, map[string]any{
					"first":       string(first),
					"second":      string(second),
					"contentType": c.Request().ContentType(),
				})
			})

			rec, body := serve(t, server, http.MethodPost, "/echo", `{"nome":"Bolo"}`)
			assert.Equal(t, http.StatusCreated, rec.Code)
			assert.Equal(t, `{"nome":"Bolo"}`, body["first"])
			assert.Equal(t, body["first"], body["second"])
			assert.Contains(t, body["contentType"], "application/json")
		})
	}
}

func TestAdapters_BodyLimit(t *testing.T) {
	for name, build := range allAdapters {
		t.Run(name, func(t *testing.T) {
			server := build()
			server.SetBodyLimit(16)
			server.RegisterRoute(http.MethodPost, axon.NewAxonPath("/echo"), func(c axon.RequestContext) error {
				body, err := c.Request().Body()
				if err != nil {
					return err
				}
				return c.Response().JSON(http.StatusOK, map[string]any{"size": len(body)})
			})

			rec, body := serve(t, server, http.MethodPost, "/echo", `{"nome":"Bolo"}`)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, float64(15), body["size"])

			rec, body = serve(t, server, http.MethodPost, "/echo", `{"nome":"Bolo de cenoura"}`)
			assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
			assert.Equal(t, map[string]any{"message": axon.MsgBodyTooLarge}, body)
		})
	}
}

func TestAdapters_BodyReadFailureIsBadRequest(t *testing.T) {
	// fiber reads the whole body before routing, so only the net/http based adapters see the reader fail
	for _, name := range []string{"gin", "echo", "mux"} {
		t.Run(name, func(t *testing.T) {
			server := allAdapters[name]()
			server.RegisterRoute(http.MethodPost, axon.NewAxonPath("/echo"), func(c axon.RequestContext) error {
				if _, err := c.Request().Body(); err != nil {
					return err
				}
				return c.Response().NoContent(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodPost, "/echo", iotest.ErrReader(errors.New("connection reset")))
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"message":"Corpo da requisição inválido"}`, rec.Body.String())
		})
	}
}

func TestAdapters_ResponseState(t *testing.T) {
	for name, build := range allAdapters {
		t.Run(name, func(t *testing.T) {
			server := build()

			var before, after bool
			var status int
			server.RegisterRoute(http.MethodGet, axon.NewAxonPath("/state"), func(c axon.RequestContext) error {
				before = c.Response().Written()
				c.Response().SetHeader("X-Test", "yes")
				err := c.Response().JSON(http.StatusAccepted, map[string]string{"ok": "true"})
				after = c.Response().Written()
				status = c.Response().Status()
				return err
			})

			rec, _ := serve(t, server, http.MethodGet, "/state", "")
			assert.Equal(t, http.StatusAccepted, rec.Code)
			assert.Equal(t, "yes", rec.Header().Get("X-Test"))
			assert.False(t, before)
			assert.True(t, after)
			assert.Equal(t, http.StatusAccepted, status)
		})
	}
}

func TestAdapters_Mount(t *testing.T) {
	for name, build := range allAdapters {
		t.Run(name, func(t *testing.T) {
			server := build()
			server.Mount(http.MethodGet, "/metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				_, _ = w.Write([]byte("up 1\n"))
			}))

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "up 1\n", rec.Body.String())
		})
	}
}

func TestAdapters_Names(t *testing.T) {
	assert.Equal(t, "Gin", NewDefaultGinAdapter().Name())
	assert.Equal(t, "Echo", NewDefaultEchoAdapter().Name())
	assert.Equal(t, "Fiber", NewDefaultFiberAdapter().Name())
	assert.Equal(t, "Mux", NewDefaultMuxAdapter().Name())
}

func TestAdapters_StopBeforeStart(t *testing.T) {
	assert.NoError(t, NewDefaultGinAdapter().Stop(context.Background()))
	assert.NoError(t, NewDefaultMuxAdapter().Stop(context.Background()))
}
