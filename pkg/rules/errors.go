package rules

import "fmt"

// ConfigError reports an invalid rule table configuration. Loading fails
// fast on the first one encountered; a table is never built from a config
// that carries one.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("rules config: %s: %s", e.Field, e.Message)
}

func newConfigError(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}
