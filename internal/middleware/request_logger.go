// Package middleware holds the global axon middleware installed on every adapter
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toyz/receitas/internal/logging"
	"github.com/toyz/receitas/pkg/axon"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestIDKey is the RequestContext key holding the request id
const RequestIDKey = "requestId"

type requestIDCtxKey struct{}

// RequestID returns the id assigned to the request carried by ctx
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}

// RequestLogger assigns a request id, stores a request scoped logger and writes one access log line per request
type RequestLogger struct {
	logger *zap.SugaredLogger
}

// NewRequestLogger creates the request logging middleware
func NewRequestLogger(logger *zap.SugaredLogger) *RequestLogger {
	return &RequestLogger{logger: logger}
}

// Handle implements axon.MiddlewareFunc
func (m *RequestLogger) Handle(next axon.HandlerFunc) axon.HandlerFunc {
	return func(c axon.RequestContext) error {
		start := time.Now()

		// a client supplied id is kept only when it is a UUID
		requestID := c.Request().Header(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Response().SetHeader(RequestIDHeader, requestID)
		c.Set(RequestIDKey, requestID)

		logger := m.logger.With("requestId", requestID)
		ctx := context.WithValue(c.Context(), requestIDCtxKey{}, requestID)
		c.SetContext(logging.WithLogger(ctx, logger))

		err := next(c)

		status := c.Response().Status()
		if err != nil {
			status = axon.AsHttpError(err).StatusCode
		}
		fields := []interface{}{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
			"ip", c.RealIP(),
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Errorw("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warnw("request", fields...)
		default:
			logger.Infow("request", fields...)
		}
		return err
	}
}
