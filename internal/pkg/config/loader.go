package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Result is a loaded value. When the variable was set but failed parsing or
// validation, Value holds the default and Warning says why.
type Result[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// Load reads envKey, parses it and validates it. Unset or empty variables
// yield defaultValue without a warning. validate may be nil.
func Load[T any](envKey string, defaultValue T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return Result[T]{Value: defaultValue}
	}

	value, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(value)
	}
	if err != nil {
		return Result[T]{
			Value:           defaultValue,
			Warning:         fmt.Sprintf("invalid %s=%q: %v, falling back to default %v", envKey, raw, err, defaultValue),
			FallbackApplied: true,
		}
	}
	return Result[T]{Value: value}
}

// LoadString loads a validated string.
func LoadString(envKey, defaultValue string, validate func(string) error) Result[string] {
	return Load(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validate)
}

// LoadDuration loads a time.ParseDuration value.
func LoadDuration(envKey string, defaultValue time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	return Load(envKey, defaultValue, time.ParseDuration, validate)
}

// LoadInt loads a base 10 integer.
func LoadInt(envKey string, defaultValue int, validate func(int) error) Result[int] {
	return Load(envKey, defaultValue, strconv.Atoi, validate)
}
