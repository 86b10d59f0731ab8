// Package config reads optional settings from the environment. A value that
// fails to parse or validate is replaced by its default and reported, so a
// bad variable degrades a process instead of stopping it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of reading one variable.
type Result[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// Env reads key, parses it and validates it. An unset or blank variable
// yields def without a warning.
func Env[T any](key string, def T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return Result[T]{Value: def}
	}
	v, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(v)
	}
	if err != nil {
		return Result[T]{
			Value:           def,
			Warning:         fmt.Sprintf("invalid %s=%q: %v; using default %v", key, raw, err, def),
			FallbackApplied: true,
		}
	}
	return Result[T]{Value: v}
}

func EnvString(key, def string, validate func(string) error) Result[string] {
	return Env(key, def, func(s string) (string, error) { return s, nil }, validate)
}

func EnvDuration(key string, def time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	return Env(key, def, time.ParseDuration, validate)
}

func EnvInt(key string, def int, validate func(int) error) Result[int] {
	return Env(key, def, strconv.Atoi, validate)
}
