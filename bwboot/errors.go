package bwboot

import (
	"github.com/cockroachdb/errors"
)

// ConfigurationError reports startup configuration that cannot be used: a malformed
// settings file, an unresolvable region, an unsupported exporter and the like.
// It is never recovered inside this package.
type ConfigurationError struct {
	// Source names the setting or file that was rejected.
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return "configuration error (" + e.Source + "): " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErrorf(source, format string, args ...any) error {
	return &ConfigurationError{Source: source, Err: errors.Newf(format, args...)}
}

func configErrorWrap(source string, err error, msg string) error {
	return &ConfigurationError{Source: source, Err: errors.Wrap(err, msg)}
}
