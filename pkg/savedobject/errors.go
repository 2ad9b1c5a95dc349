package savedobject

import "github.com/cockroachdb/errors"

// ErrInvalidConfig marks configuration errors: malformed builder input,
// duplicate ids, unresolved references. These are reported before any output
// is written.
var ErrInvalidConfig = errors.New("invalid configuration")

// Invalidf returns a new error marked with ErrInvalidConfig.
func Invalidf(format string, args ...interface{}) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrInvalidConfig)
}

// IsInvalidConfig reports whether err, or any error it wraps, is a
// configuration error.
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
