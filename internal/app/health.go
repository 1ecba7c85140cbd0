package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/toyz/receitas/internal/middleware"
	"github.com/toyz/receitas/pkg/axon"
)

const pingTimeout = 2 * time.Second

// HealthController answers GET /health
type HealthController struct {
	db      *sql.DB
	adapter string
}

// NewHealthController creates the health controller
func NewHealthController(db *sql.DB, adapter string) *HealthController {
	return &HealthController{db: db, adapter: adapter}
}

// Describe implements axon.Controller
func (h *HealthController) Describe(d *axon.Declarer) {
	d.Handle("Health", `GET /health -Public -Summary="Verifica o estado da API"`, axon.Handler1(h.Health))
}

// Health receives the raw request context since it declares no bindings
func (h *HealthController) Health(ctx context.Context, c axon.RequestContext) (any, error) {
	status := map[string]string{"status": "ok", "adapter": h.adapter}
	if id, ok := c.Get(middleware.RequestIDKey).(string); ok {
		status["requestId"] = id
	}

	if h.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := h.db.PingContext(pingCtx); err != nil {
			return nil, axon.ErrInternalServerError("Banco de dados indisponível").WithCause(err)
		}
		status["database"] = "up"
	}
	return status, nil
}
