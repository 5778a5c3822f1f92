package core

import "fmt"

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Key string
	msg string
}

func (e ConfigError) Error() string {
	if e.Key == "" {
		return e.msg
	}
	return fmt.Sprintf("invalid %s: %s", e.Key, e.msg)
}

// ErrInvalidConfig creates a new configuration error
func ErrInvalidConfig(key, msg string) error {
	return ConfigError{Key: key, msg: msg}
}

// ErrInvalidConfigf creates a new formatted configuration error
func ErrInvalidConfigf(key, format string, args ...interface{}) error {
	return ConfigError{Key: key, msg: fmt.Sprintf(format, args...)}
}
