// Package logging builds the zap logger shared by the runtime and the application
package logging

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logTimeFormat = "2006-01-02 15:04:05.000"

type options struct {
	level       string
	encoding    string
	filename    string
	serviceName string
	caller      bool
	output      io.Writer
}

// Option configures New
type Option func(*options)

// WithLevel sets the minimum level (debug, info, warn, error)
func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

// WithEncoding selects "json" or "console" output
func WithEncoding(encoding string) Option {
	return func(o *options) { o.encoding = encoding }
}

// WithFilename also writes JSON logs to a rotating file
func WithFilename(filename string) Option {
	return func(o *options) { o.filename = filename }
}

// WithServiceName adds a service field to every entry
func WithServiceName(name string) Option {
	return func(o *options) { o.serviceName = name }
}

// WithCaller records the calling file and line
func WithCaller(enabled bool) Option {
	return func(o *options) { o.caller = enabled }
}

// WithOutput replaces stdout, used by tests
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// New builds a sugared logger and the function that flushes it
func New(opts ...Option) (*zap.SugaredLogger, func(), error) {
	o := options{level: "info", encoding: "json", output: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(o.level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", o.level, err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(logTimeFormat)
	encoderConfig.StacktraceKey = ""

	var cores []zapcore.Core
	if o.filename != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   o.filename,
				MaxSize:    10, // MB
				MaxBackups: 7,
				MaxAge:     30, // days
				Compress:   true,
			}),
			level,
		))
	}

	var encoder zapcore.Encoder
	switch o.encoding {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return nil, nil, fmt.Errorf("invalid log encoding %q", o.encoding)
	}
	cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(o.output), level))

	logger := zap.New(zapcore.NewTee(cores...))
	if o.caller {
		logger = logger.WithOptions(zap.AddCaller())
	}
	if o.serviceName != "" {
		logger = logger.With(zap.String("service", o.serviceName))
	}

	sugar := logger.Sugar()
	return sugar, func() { _ = sugar.Sync() }, nil
}

// Nop returns a logger that discards everything
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

type ctxKey struct{}

// WithLogger stores a request scoped logger in ctx
func WithLogger(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request scoped logger, or a no-op logger when none was stored
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if logger, ok := ctx.Value(ctxKey{}).(*zap.SugaredLogger); ok {
		return logger
	}
	return Nop()
}
