package environment

import (
	"context"
	"strings"
)

// Environment represents the deployment environment of the process.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Staging     Environment = "staging"
)

// Parse normalises a configured environment name. Short aliases
// (dev, stage, prod) are accepted; anything unknown is returned lower-cased.
func Parse(name string) Environment {
	switch s := strings.ToLower(strings.TrimSpace(name)); s {
	case "dev", string(Development):
		return Development
	case "stage", string(Staging):
		return Staging
	case "prod", string(Production):
		return Production
	default:
		return Environment(s)
	}
}

// UnmarshalText lets Environment be used directly in env tagged config structs.
func (e *Environment) UnmarshalText(text []byte) error {
	*e = Parse(string(text))
	return nil
}

type contextKey struct{}

// WithContext adds environment to context
func WithContext(ctx context.Context, env Environment) context.Context {
	return context.WithValue(ctx, contextKey{}, env)
}

// FromContext retrieves environment from context
func FromContext(ctx context.Context) Environment {
	if ctx == nil {
		return ""
	}
	env, _ := ctx.Value(contextKey{}).(Environment)
	return env
}

func IsProduction(ctx context.Context) bool {
	return Parse(string(FromContext(ctx))) == Production
}

func IsDevelopment(ctx context.Context) bool {
	return Parse(string(FromContext(ctx))) == Development
}

func IsStaging(ctx context.Context) bool {
	return Parse(string(FromContext(ctx))) == Staging
}
