package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/logrelay/pkg/environment"
	"github.com/dmitrymomot/logrelay/pkg/logger"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Run("creates JSON logger", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		require.NotNil(t, log)
		log.Info("hello")
		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("text formatter option", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithTextFormatter(),
		)
		log.Info("hello")
		assert.Contains(t, buf.String(), "level=INFO")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("includes default attributes", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithAttr(slog.String("svc", "test")),
		)
		log.Info("msg")
		assert.Equal(t, "test", decode(t, buf)["svc"])
	})

	t.Run("extracts from context", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextExtractors(environment.LoggerExtractor()),
		)
		ctx := environment.WithContext(context.Background(), environment.Staging)
		log.InfoContext(ctx, "context msg")
		assert.Equal(t, "staging", decode(t, buf)["env"])
	})

	t.Run("level name", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithLevelName("warn"))
		log.Info("dropped")
		assert.Empty(t, buf.String())
		log.Warn("kept")
		assert.Equal(t, "kept", decode(t, buf)["msg"])
	})
}

func TestWithEnvironment(t *testing.T) {
	t.Run("development", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithDevelopment("svc"),
			logger.WithOutput(buf),
		)
		log.Debug("msg")
		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "service=svc")
		assert.Contains(t, buf.String(), "env=development")
	})

	t.Run("production", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithProduction("svc"),
			logger.WithOutput(buf),
		)
		log.Debug("hidden")
		log.Info("msg")
		entry := decode(t, buf)
		assert.Equal(t, "svc", entry["service"])
		assert.Equal(t, "production", entry["env"])
	})

	t.Run("unknown falls back to development", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithEnvironment(environment.Environment("qa"), ""),
			logger.WithOutput(buf),
		)
		log.Debug("msg")
		assert.Contains(t, buf.String(), "env=development")
		assert.NotContains(t, buf.String(), "service=")
	})
}

func TestNewFromConfig(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.NewFromConfig(
		logger.Config{Level: "error", Format: "json"},
		environment.Development,
		"relayd",
		logger.WithOutput(buf),
	)

	log.Warn("dropped")
	assert.Empty(t, buf.String())

	log.Error("kept")
	entry := decode(t, buf)
	assert.Equal(t, "relayd", entry["service"])
	assert.Equal(t, "kept", entry["msg"])
}

func TestWithHandlers(t *testing.T) {
	console := &bytes.Buffer{}
	tee := &bytes.Buffer{}

	log := logger.New(
		logger.WithOutput(console),
		logger.WithAttr(slog.String("svc", "test")),
		logger.WithHandlers(nil, slog.NewJSONHandler(tee, nil)),
	)
	log.Info("both")

	assert.Equal(t, "both", decode(t, console)["msg"])
	teed := decode(t, tee)
	assert.Equal(t, "both", teed["msg"])
	assert.Equal(t, "test", teed["svc"])
}

func TestSetAsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	buf := &bytes.Buffer{}
	logger.SetAsDefault(logger.New(logger.WithOutput(buf)))
	slog.Info("default")
	assert.Equal(t, "default", decode(t, buf)["msg"])
}

func TestInvalidOptionsPanic(t *testing.T) {
	assert.Panics(t, func() {
		logger.New(logger.WithFormat(logger.Format("xml")))
	})
	assert.Panics(t, func() {
		logger.New(logger.WithLevelName("loud"))
	})
	assert.NotPanics(t, func() {
		logger.New(logger.WithFormat(""), logger.WithLevelName(""))
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    logger.Config
		target error
	}{
		{name: "empty", cfg: logger.Config{}},
		{name: "known values", cfg: logger.Config{Level: "WARN", Format: "Text"}},
		{name: "level offset", cfg: logger.Config{Level: "info+2"}},
		{name: "unknown level", cfg: logger.Config{Level: "loud"}, target: logger.ErrInvalidLevel},
		{name: "unknown format", cfg: logger.Config{Format: "xml"}, target: logger.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.target == nil {
				require.NoError(t, err)
				assert.NotPanics(t, func() {
					logger.NewFromConfig(tt.cfg, environment.Production, "relayd", logger.WithOutput(&bytes.Buffer{}))
				})
				return
			}
			assert.ErrorIs(t, err, tt.target)
			assert.Panics(t, func() {
				logger.NewFromConfig(tt.cfg, environment.Production, "relayd")
			})
		})
	}
}

type failingHandler struct {
	slog.Handler
}

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("sink down")
}

func TestFanoutHandler(t *testing.T) {
	t.Run("level filtering per handler", func(t *testing.T) {
		debug := &bytes.Buffer{}
		errs := &bytes.Buffer{}

		h := logger.NewFanoutHandler(
			slog.NewJSONHandler(debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
			slog.NewJSONHandler(errs, &slog.HandlerOptions{Level: slog.LevelError}),
		)
		log := slog.New(h)

		assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))
		log.Debug("debug only")
		assert.NotEmpty(t, debug.String())
		assert.Empty(t, errs.String())
	})

	t.Run("groups and attrs reach every handler", func(t *testing.T) {
		a := &bytes.Buffer{}
		b := &bytes.Buffer{}

		log := slog.New(logger.NewFanoutHandler(
			slog.NewJSONHandler(a, nil),
			slog.NewJSONHandler(b, nil),
		)).With("k", "v").WithGroup("g")
		log.Info("msg", "n", 1)

		for _, buf := range []*bytes.Buffer{a, b} {
			entry := decode(t, buf)
			assert.Equal(t, "v", entry["k"])
			assert.Equal(t, map[string]any{"n": float64(1)}, entry["g"])
		}
	})

	t.Run("joins handler errors", func(t *testing.T) {
		buf := &bytes.Buffer{}
		h := logger.NewFanoutHandler(
			slog.NewJSONHandler(buf, nil),
			failingHandler{slog.NewJSONHandler(&bytes.Buffer{}, nil)},
		)

		err := h.Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "msg", 0))
		assert.EqualError(t, err, "sink down")
		assert.NotEmpty(t, buf.String())
	})

	t.Run("single handler is returned as is", func(t *testing.T) {
		inner := slog.NewJSONHandler(&bytes.Buffer{}, nil)
		assert.Same(t, inner, logger.NewFanoutHandler(nil, inner))
	})
}
