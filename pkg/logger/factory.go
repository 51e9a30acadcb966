package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dmitrymomot/logrelay/pkg/environment"
)

// Format represents logger output format.
type Format string

const (
	// FormatJSON outputs structured logs for log aggregation systems.
	FormatJSON Format = "json"
	// FormatText outputs human-readable logs for terminals.
	FormatText Format = "text"
)

// Config holds logger settings loadable with pkg/config.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:""`  // Level overrides the environment preset: debug, info, warn or error.
	Format string `env:"LOG_FORMAT" envDefault:""` // Format overrides the environment preset: json or text.
}

// Validate reports an unknown level or format, which NewFromConfig would panic on.
func (c Config) Validate() error {
	if _, err := parseLevel(c.Level); err != nil {
		return err
	}
	if _, err := parseFormat(Format(c.Format)); err != nil {
		return err
	}
	return nil
}

// parseLevel accepts an empty name as the zero level.
func parseLevel(name string) (slog.Level, error) {
	var l slog.Level
	if name == "" {
		return l, nil
	}
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return l, fmt.Errorf("%w %q: %w", ErrInvalidLevel, name, err)
	}
	return l, nil
}

func parseFormat(f Format) (Format, error) {
	switch Format(strings.ToLower(string(f))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	case "":
		return "", nil
	}
	return "", fmt.Errorf("%w %q: must be %q or %q", ErrInvalidFormat, f, FormatJSON, FormatText)
}

// Option configures logger creation.
type Option func(*config)

func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

// WithLevelName sets the level from its name, as accepted by slog.Level.UnmarshalText.
// Unknown names panic.
func WithLevelName(name string) Option {
	return func(c *config) {
		if name == "" {
			return
		}
		l, err := parseLevel(name)
		if err != nil {
			panic(err)
		}
		c.level = l
	}
}

// WithFormat sets output format. Panics for invalid formats.
func WithFormat(f Format) Option {
	return func(c *config) {
		format, err := parseFormat(f)
		if err != nil {
			panic(err)
		}
		if format != "" {
			c.format = format
		}
	}
}

func WithTextFormatter() Option {
	return func(c *config) {
		c.format = FormatText
	}
}

func WithJSONFormatter() Option {
	return func(c *config) {
		c.format = FormatJSON
	}
}

// WithOutput sets custom output destination, ignoring nil writers.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithHandlerOptions allows fine-grained control over slog behavior.
func WithHandlerOptions(opts *slog.HandlerOptions) Option {
	return func(c *config) {
		if opts != nil {
			c.handlerOptions = opts
		}
	}
}

// WithAttr adds static attributes to every log record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) {
		if len(attrs) > 0 {
			c.attrs = append(c.attrs, attrs...)
		}
	}
}

// WithContextExtractors registers functions that inject dynamic attributes from context.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) {
		for _, ex := range extractors {
			if ex != nil {
				c.extractors = append(c.extractors, ex)
			}
		}
	}
}

// WithHandlers tees every record into extra handlers next to the console
// output, for example a slogrelay.Handler. Static attributes and context
// extractors apply to all of them.
func WithHandlers(handlers ...slog.Handler) Option {
	return func(c *config) {
		for _, h := range handlers {
			if h != nil {
				c.handlers = append(c.handlers, h)
			}
		}
	}
}

// WithEnvironment applies the preset for env: text at debug level for
// development, JSON at info level otherwise. The service and env names are
// added to every record.
func WithEnvironment(env environment.Environment, service string) Option {
	return func(c *config) {
		switch env {
		case environment.Production, environment.Staging:
			c.level = slog.LevelInfo
			c.format = FormatJSON
		default:
			env = environment.Development
			c.level = slog.LevelDebug
			c.format = FormatText
		}
		if service != "" {
			c.attrs = append(c.attrs, slog.String("service", service))
		}
		c.attrs = append(c.attrs, slog.String("env", string(env)))
	}
}

// WithDevelopment is WithEnvironment(environment.Development, service).
func WithDevelopment(service string) Option {
	return WithEnvironment(environment.Development, service)
}

// WithProduction is WithEnvironment(environment.Production, service).
func WithProduction(service string) Option {
	return WithEnvironment(environment.Production, service)
}

func SetAsDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

type config struct {
	level          slog.Level
	format         Format
	output         io.Writer
	attrs          []slog.Attr
	handlerOptions *slog.HandlerOptions
	extractors     []ContextExtractor
	handlers       []slog.Handler
}

// defaultConfig provides JSON output at info level on stdout.
func defaultConfig() *config {
	return &config{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
}

// New creates a configured slog.Logger with context injection capabilities.
func New(opts ...Option) *slog.Logger {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := cfg.handlerOptions
	if handlerOpts == nil {
		handlerOpts = &slog.HandlerOptions{Level: cfg.level}
	}

	var handler slog.Handler
	if cfg.format == FormatText {
		handler = slog.NewTextHandler(cfg.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	}

	if len(cfg.handlers) > 0 {
		handler = NewFanoutHandler(append([]slog.Handler{handler}, cfg.handlers...)...)
	}

	if len(cfg.attrs) > 0 {
		handler = handler.WithAttrs(cfg.attrs)
	}

	decorated := NewLogHandlerDecorator(handler, cfg.extractors...)
	return slog.New(decorated)
}

// NewFromConfig creates a logger using the environment preset and applies
// the overrides from cfg on top of it. Extra options are applied last.
func NewFromConfig(cfg Config, env environment.Environment, service string, opts ...Option) *slog.Logger {
	base := []Option{
		WithEnvironment(env, service),
		WithLevelName(cfg.Level),
		WithFormat(Format(cfg.Format)),
	}
	return New(append(base, opts...)...)
}
