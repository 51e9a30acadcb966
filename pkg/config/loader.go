package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type entry struct {
	once  sync.Once
	value any
	err   error
}

var (
	mu      sync.Mutex
	entries = map[reflect.Type]*entry{}

	defaultEnvLoaded sync.Once
)

// Load parses environment variables into v based on its `env` field tags.
// Each configuration type is parsed once; later calls for the same type get
// a copy of the cached value, or the cached error.
//
// The default .env file in the working directory is loaded before the first
// parse if it exists. Variables already set in the process take precedence.
//
// Example:
//
//	type RelayConfig struct {
//		Interval time.Duration `env:"RELAY_SUBMISSION_INTERVAL" envDefault:"2s"`
//		Sink     string        `env:"RELAYD_SINK,required"`
//	}
//
//	var cfg RelayConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	defaultEnvLoaded.Do(func() {
		_ = godotenv.Load()
	})

	e := lookup(reflect.TypeFor[T]())
	e.once.Do(func() {
		var parsed T
		if err := env.Parse(&parsed); err != nil {
			e.err = errors.Join(ErrParsingConfig, err)
			return
		}
		e.value = parsed
	})

	if e.err != nil {
		return e.err
	}
	*v = e.value.(T)
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// Parse parses T with every variable name prefixed by prefix, bypassing the
// cache. It lets one config type be loaded several times, for example one
// relay.Config per sink.
func Parse[T any](prefix string) (T, error) {
	defaultEnvLoaded.Do(func() {
		_ = godotenv.Load()
	})

	v, err := env.ParseAsWithOptions[T](env.Options{Prefix: prefix})
	if err != nil {
		return v, errors.Join(ErrParsingConfig, err)
	}
	return v, nil
}

// LoadEnv loads the given .env files into the process environment without
// overriding variables that are already set.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// ResetCache forgets every loaded configuration. Intended for tests.
func ResetCache() {
	mu.Lock()
	defer mu.Unlock()

	entries = map[reflect.Type]*entry{}
}

func lookup(t reflect.Type) *entry {
	mu.Lock()
	defer mu.Unlock()

	e, ok := entries[t]
	if !ok {
		e = &entry{}
		entries[t] = e
	}
	return e
}
